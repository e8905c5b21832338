package bimrsid

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/carbocation/genomisc"
	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
	log "github.com/sirupsen/logrus"
)

// VCF columns used by the index.
const (
	vcfChrom = iota
	vcfPos
	vcfID
	vcfRef
	vcfAlt
	vcfRest
)

const (
	defaultIndexBatch = 100000

	queryInsertVariant  = `INSERT INTO Variant (chromosome, position, rsid, alleles, symbolic) VALUES (?, ?, ?, ?, ?)`
	queryInsertMetadata = `INSERT INTO Metadata (filename, file_size, last_write_time, index_creation_time, number_of_variants) VALUES (?, ?, ?, ?, ?)`
)

// IndexOptions tunes BuildVariantIndex. The zero value is usable.
type IndexOptions struct {
	// Rows inserted per transaction.
	BatchSize int

	// Tap, if set, sees the raw VCF bytes as they are read.
	Tap Tap
}

// BuildVariantIndex streams a VCF (plain, gzip, BGZF or Zstd; local or
// gs://) into a SQLite index at indexPath. The index is assembled next to
// indexPath and only renamed into place once complete, so an interrupted
// build never leaves a usable-looking index behind.
func BuildVariantIndex(ctx context.Context, vcfPath, indexPath string, opts IndexOptions) (*IndexMetadata, error) {
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultIndexBatch
	}
	indexPath = genomisc.ExpandHome(indexPath)

	in, err := openInput(ctx, vcfPath, opts.Tap)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	partial := indexPath + ".partial"
	if err := os.Remove(partial); err != nil && !os.IsNotExist(err) {
		return nil, pfx.Err(err)
	}

	db, err := connectSQLite(partial)
	if err != nil {
		return nil, pfx.Err(err)
	}
	committed := false
	defer func() {
		if !committed {
			db.Close()
			os.Remove(partial)
		}
	}()

	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	// See https://www.rockyourcode.com/til-sqlite-foreign-key-support-with-go/
	// and https://twitter.com/frioux/status/1483235674228596739
	if _, err := db.Exec(`
	PRAGMA journal_mode = OFF;
	PRAGMA synchronous = OFF;
	PRAGMA auto_vacuum = NONE;
	`); err != nil {
		return nil, fmt.Errorf("unable to set pragmas: %w", err)
	}

	for _, ddl := range []string{schemaVariant, schemaMetadata} {
		if _, err := db.Exec(ddl); err != nil {
			return nil, pfx.Err(err)
		}
	}

	n, err := loadVariants(ctx, db, in, opts.BatchSize)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"vcf": vcfPath, "variants": n}).Debug("Building locus index")
	if _, err := db.Exec(schemaVariantLocus); err != nil {
		return nil, pfx.Err(err)
	}

	meta := &IndexMetadata{
		Filename:          filepath.Base(vcfPath),
		FileSize:          in.Size,
		LastWriteTime:     Time(in.ModTime),
		IndexCreationTime: Time(time.Now()),
		NVariants:         n,
	}
	if _, err := db.Exec(queryInsertMetadata, meta.Filename, meta.FileSize, meta.LastWriteTime, meta.IndexCreationTime, meta.NVariants); err != nil {
		return nil, pfx.Err(err)
	}

	if err := db.Close(); err != nil {
		return nil, pfx.Err(err)
	}
	committed = true

	if err := os.Rename(partial, indexPath); err != nil {
		os.Remove(partial)
		return nil, pfx.Err(err)
	}

	return meta, nil
}

func loadVariants(ctx context.Context, db *sqlx.DB, r io.Reader, batchSize int) (int64, error) {
	tx, stmt, err := beginVariantBatch(db)
	if err != nil {
		return 0, err
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	reader := bufio.NewReaderSize(r, 1<<20)
	var (
		n      int64
		lineNo int
	)
	for {
		line, readErr := reader.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return n, pfx.Err(readErr)
		}
		if line != "" {
			lineNo++
		}

		line = strings.TrimRight(line, "\r\n")
		if line != "" && line[0] != '#' {
			v, err := parseVCFLine(line)
			if err != nil {
				return n, fmt.Errorf("%w: line %d: %v", ErrMalformedVariantFile, lineNo, err)
			}

			var rsid interface{}
			if v.ID != "" {
				rsid = v.ID
			}
			if _, err := stmt.Exec(v.Chromosome, v.Position, rsid, strings.Join(v.Alleles, ","), v.Symbolic); err != nil {
				return n, pfx.Err(err)
			}
			n++

			if n%int64(batchSize) == 0 {
				if err := ctx.Err(); err != nil {
					return n, err
				}
				if err := tx.Commit(); err != nil {
					tx = nil
					return n, pfx.Err(err)
				}
				if tx, stmt, err = beginVariantBatch(db); err != nil {
					return n, err
				}
			}
		}

		if readErr == io.EOF {
			break
		}
	}

	err = tx.Commit()
	tx = nil
	if err != nil {
		return n, pfx.Err(err)
	}

	return n, nil
}

func beginVariantBatch(db *sqlx.DB) (*sqlx.Tx, *sqlx.Stmt, error) {
	tx, err := db.Beginx()
	if err != nil {
		return nil, nil, pfx.Err(err)
	}

	stmt, err := tx.Preparex(queryInsertVariant)
	if err != nil {
		tx.Rollback()
		return nil, nil, pfx.Err(err)
	}

	return tx, stmt, nil
}

// parseVCFLine reads the first five columns of a VCF data line. An ID of "."
// becomes the empty string and an ALT of "." contributes no allele.
func parseVCFLine(line string) (VariantRecord, error) {
	cols := strings.SplitN(line, "\t", vcfRest+1)
	if len(cols) < vcfAlt+1 {
		return VariantRecord{}, fmt.Errorf("%d columns, expected at least %d", len(cols), vcfAlt+1)
	}

	pos, err := strconv.Atoi(cols[vcfPos])
	if err != nil || pos < 1 {
		return VariantRecord{}, fmt.Errorf("position %q is not a positive integer", cols[vcfPos])
	}

	id := cols[vcfID]
	if id == "." {
		id = ""
	}

	alleles := []string{cols[vcfRef]}
	if alt := cols[vcfAlt]; alt != "." && alt != "" {
		alleles = append(alleles, strings.Split(alt, ",")...)
	}

	return NewVariantRecord(cols[vcfChrom], id, pos, alleles), nil
}
