package bimrsid

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/carbocation/genomisc"
	"github.com/jmoiron/sqlx"
)

// IndexExtension is appended to a VCF path to name its default index.
const IndexExtension = ".rsi"

const (
	schemaVariant = `CREATE TABLE Variant (
	chromosome TEXT NOT NULL,
	position INTEGER NOT NULL,
	rsid TEXT,
	alleles TEXT NOT NULL,
	symbolic INTEGER NOT NULL
)`
	schemaVariantLocus = `CREATE INDEX variant_locus ON Variant (chromosome, position)`
	schemaMetadata     = `CREATE TABLE Metadata (
	filename TEXT NOT NULL,
	file_size INTEGER NOT NULL,
	last_write_time INTEGER NOT NULL,
	index_creation_time INTEGER NOT NULL,
	number_of_variants INTEGER NOT NULL
)`

	// Rows are inserted in VCF order, so rowid breaks position ties in
	// source-file order. This is a tie-break policy only: several variants
	// may legitimately share one position.
	queryFetch = `SELECT chromosome, position, rsid, alleles, symbolic
FROM Variant
WHERE chromosome = ? AND position >= ? AND position <= ?
ORDER BY position ASC, rowid ASC`
)

// VariantIndex answers range queries against a SQLite index built from a
// reference VCF by BuildVariantIndex. It is never written after opening, and
// Fetch may be called from many goroutines at once.
type VariantIndex struct {
	DB       *sqlx.DB
	Path     string
	Metadata *IndexMetadata

	fetch *sqlx.Stmt
}

// IndexMetadata conforms to the single row of the "Metadata" table.
type IndexMetadata struct {
	Filename          string `db:"filename"`
	FileSize          int64  `db:"file_size"`
	LastWriteTime     Time   `db:"last_write_time"`
	IndexCreationTime Time   `db:"index_creation_time"`
	NVariants         int64  `db:"number_of_variants"`
}

// variantRow conforms to the rows of the "Variant" table.
type variantRow struct {
	Chromosome string         `db:"chromosome"`
	Position   int            `db:"position"`
	RSID       sql.NullString `db:"rsid"`
	Alleles    string         `db:"alleles"`
	Symbolic   bool           `db:"symbolic"`
}

func (r variantRow) record() VariantRecord {
	v := VariantRecord{
		Chromosome: r.Chromosome,
		ID:         r.RSID.String,
		Position:   r.Position,
		Symbolic:   r.Symbolic,
	}
	if r.Alleles != "" {
		v.Alleles = strings.Split(r.Alleles, ",")
	}

	return v
}

// IndexPath returns the default index location for a VCF.
func IndexPath(vcfPath string) string {
	return vcfPath + IndexExtension
}

func sqliteDSN(path string) string {
	// URI filenames have to begin with 'file:'; see
	// https://www.sqlite.org/c3ref/open.html . It seems that sqlite3 permitted
	// URI filenames without the file: prefix, but that is not standard.
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	return path
}

// OpenVariantIndex opens an existing index. A missing file, or a database
// without the Variant table, is reported as ErrIndexLookup rather than
// silently creating an empty database.
func OpenVariantIndex(path string) (*VariantIndex, error) {
	path = genomisc.ExpandHome(path)

	info, err := os.Stat(path)
	if err != nil {
		return nil, &IndexError{Path: path, Op: "open", Err: err}
	}
	if info.IsDir() {
		return nil, &IndexError{Path: path, Op: "open", Err: fmt.Errorf("is a directory")}
	}

	db, err := connectSQLite(path)
	if err != nil {
		return nil, &IndexError{Path: path, Op: "open", Err: err}
	}

	idx := &VariantIndex{
		DB:       db,
		Path:     path,
		Metadata: &IndexMetadata{},
	}

	var tables int
	if err := db.Get(&tables, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'Variant'`); err != nil {
		db.Close()
		return nil, &IndexError{Path: path, Op: "open", Err: err}
	}
	if tables != 1 {
		db.Close()
		return nil, &IndexError{Path: path, Op: "open", Err: fmt.Errorf("no Variant table")}
	}

	idx.fetch, err = db.Preparex(queryFetch)
	if err != nil {
		db.Close()
		return nil, &IndexError{Path: path, Op: "prepare", Err: err}
	}

	// Indexes built by older tools may lack metadata; ignore any error
	_ = db.Get(idx.Metadata, "SELECT * FROM Metadata LIMIT 1")

	return idx, nil
}

// Fetch returns the variants on chromosome whose 0-based position lies in
// the half-open interval [start, end), ordered by position and then by
// their order in the source VCF. Use LocusRange to build the interval for a
// 1-based marker position.
func (v *VariantIndex) Fetch(ctx context.Context, chromosome string, start, end int) ([]VariantRecord, error) {
	lo, hi := oneBasedBounds(start, end)
	if hi < lo {
		return nil, nil
	}

	var rows []variantRow
	if err := v.fetch.SelectContext(ctx, &rows, chromosome, lo, hi); err != nil {
		return nil, &IndexError{Path: v.Path, Op: fmt.Sprintf("fetch %s:%d-%d", chromosome, start, end), Err: err}
	}

	out := make([]VariantRecord, len(rows))
	for i, row := range rows {
		out[i] = row.record()
	}

	return out, nil
}

func (v *VariantIndex) Close() error {
	if v.fetch != nil {
		v.fetch.Close()
	}

	return v.DB.Close()
}
