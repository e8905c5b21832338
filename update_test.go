package bimrsid

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const updateVCF = `##fileformat=VCFv4.2
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO
1	100	rs100	G	A	.	PASS	.
1	150	rs150	A	<DEL>	.	PASS	.
1	150	rs151	A	G	.	PASS	.
1	200	rs200	A	T	.	PASS	.
X	300	rs300	A	G	.	PASS	.
`

const updateBIM = "1\tkgp1\t0\t100\tC\tT\n" +
	"1\tGSA-rs555-dup\t0\t999\tA\tG\n" +
	"1\tkgp2\t0\t150\tA\tG\n" +
	"1\tbad\t0\tnope\tA\tG\n" +
	"1\tkgp3\t0\t200\tT\tA\n" +
	"X\tkgp4\t0\t300\tA\tG\n"

const updatedBIM = "1\trs100\t0\t100\tC\tT\n" +
	"1\trs555\t0\t999\tA\tG\n" +
	"1\trs151\t0\t150\tA\tG\n" +
	"1\tbad\t0\tnope\tA\tG\n" +
	"1\trs200\t0\t200\tT\tA\n" +
	"X\trs300\t0\t300\tA\tG\n"

const updateFAM = "F1 S1 0 0 1 -9\nF1 S2 0 0 2 -9\nF2 S3 0 0 1 -9\n"

// writeTrio lays out a .bed/.bim/.fam trio and the reference VCF in dir and
// returns a config that reads them and writes into dir/out.
func writeTrio(t *testing.T, dir, bim string, nMarkers int) Config {
	t.Helper()

	// 3 samples fit in one byte per marker
	bed := append([]byte{}, BEDMagicNumber...)
	for i := 0; i < nMarkers; i++ {
		bed = append(bed, byte(i))
	}

	cfg := DefaultConfig()
	cfg.BedIn = filepath.Join(dir, "in.bed")
	cfg.BimIn = filepath.Join(dir, "in.bim")
	cfg.FamIn = filepath.Join(dir, "in.fam")
	cfg.VCF = writeVCF(t, dir, updateVCF, bgzfVCF)

	require.NoError(t, os.WriteFile(cfg.BedIn, bed, 0o644))
	require.NoError(t, os.WriteFile(cfg.BimIn, []byte(bim), 0o644))
	require.NoError(t, os.WriteFile(cfg.FamIn, []byte(updateFAM), 0o644))

	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0o755))
	cfg.BedOut = filepath.Join(outDir, "out.bed")
	cfg.BimOut = filepath.Join(outDir, "out.bim")
	cfg.FamOut = filepath.Join(outDir, "out.fam")

	return cfg
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names
}

func TestUpdate(t *testing.T) {
	for _, workers := range []int{1, 3} {
		dir := t.TempDir()
		cfg := writeTrio(t, dir, updateBIM, 6)
		cfg.BuildIndex = true
		cfg.CheckTrio = true
		cfg.Workers = workers
		cfg.BatchSize = 2
		cfg.ReportPath = filepath.Join(dir, "out", "report.arrow")

		stats, err := Update(context.Background(), cfg)
		require.NoError(t, err)

		got, err := os.ReadFile(cfg.BimOut)
		require.NoError(t, err)
		assert.Equal(t, updatedBIM, string(got))

		assert.Equal(t, Stats{Records: 6, Problems: 1, Extracted: 1, Matched: 3, ComplementMatched: 1, Palindromic: 1}, stats)

		// Companions are copied byte for byte
		for in, out := range map[string]string{cfg.BedIn: cfg.BedOut, cfg.FamIn: cfg.FamOut} {
			want, err := os.ReadFile(in)
			require.NoError(t, err)
			got, err := os.ReadFile(out)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		assert.Equal(t, []string{"out.bed", "out.bim", "out.fam", "report.arrow"}, dirNames(t, filepath.Join(dir, "out")))
		assert.FileExists(t, IndexPath(cfg.VCF))

		runID, rows := readReport(t, cfg.ReportPath)
		assert.Len(t, runID, 36)
		require.Len(t, rows, 6)
		assert.Equal(t, "GSA-rs555-dup", rows[1].OriginalID)
		assert.Equal(t, "rs555", rows[1].FinalID)
		assert.Equal(t, "extracted", rows[1].Outcome)
		assert.True(t, rows[4].Palindromic)
	}
}

func TestUpdateFatalParseLeavesNoOutputs(t *testing.T) {
	dir := t.TempDir()
	bim := "1\tkgp1\t0\t100\tC\tT\n1\tkgp2\t0\t150\tA\n"
	cfg := writeTrio(t, dir, bim, 2)
	cfg.BuildIndex = true
	cfg.ReportPath = filepath.Join(dir, "out", "report.arrow")

	_, err := Update(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrMalformedMarkerFile)

	assert.Empty(t, dirNames(t, filepath.Join(dir, "out")))
}

func TestUpdateMissingIndex(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTrio(t, dir, updateBIM, 6)

	_, err := Update(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrIndexLookup)

	assert.Empty(t, dirNames(t, filepath.Join(dir, "out")))
}

func TestUpdateTrioMismatch(t *testing.T) {
	dir := t.TempDir()

	// The .bed holds one marker fewer than the .bim
	cfg := writeTrio(t, dir, updateBIM, 5)
	cfg.BuildIndex = true
	cfg.CheckTrio = true

	_, err := Update(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrTrioMismatch)

	assert.Empty(t, dirNames(t, filepath.Join(dir, "out")))
}

func TestUpdateMissingCompanion(t *testing.T) {
	dir := t.TempDir()
	cfg := writeTrio(t, dir, updateBIM, 6)
	cfg.BuildIndex = true
	require.NoError(t, os.Remove(cfg.FamIn))

	_, err := Update(context.Background(), cfg)
	assert.Error(t, err)

	// The .bed may already have been copied, but the .bim must not remain
	assert.NotContains(t, dirNames(t, filepath.Join(dir, "out")), "out.bim")
}

func TestUpdateInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()

	_, err := Update(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
