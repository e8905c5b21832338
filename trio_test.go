package bimrsid

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExpectedBEDSize(t *testing.T) {
	for _, tc := range []struct {
		markers, samples int
		want             int64
	}{
		{0, 0, 3},
		{1, 1, 4},
		{10, 4, 13},
		{10, 5, 23},
		{2, 8, 7},
	} {
		if got := ExpectedBEDSize(tc.markers, tc.samples); got != tc.want {
			t.Errorf("%d markers x %d samples: Got %d, expected %d", tc.markers, tc.samples, got, tc.want)
		}
	}
}

func TestCheckTrio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.bed")

	bed := append(append([]byte{}, BEDMagicNumber...), 0, 0, 0, 0)
	if err := os.WriteFile(path, bed, 0o644); err != nil {
		t.Fatal(err)
	}

	// 4 markers of 3 samples: one byte each
	if err := CheckTrio(path, 4, 3); err != nil {
		t.Errorf("Got %v, expected no error", err)
	}

	if err := CheckTrio(path, 3, 3); !errors.Is(err, ErrTrioMismatch) {
		t.Errorf("Got %v, expected ErrTrioMismatch", err)
	}

	individualMajor := []byte{0x6c, 0x1b, 0x00, 0, 0, 0, 0}
	if err := os.WriteFile(path, individualMajor, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckTrio(path, 4, 3); !errors.Is(err, ErrTrioMismatch) {
		t.Errorf("Got %v, expected ErrTrioMismatch", err)
	}

	if err := os.WriteFile(path, []byte{0x6c}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckTrio(path, 0, 0); !errors.Is(err, ErrTrioMismatch) {
		t.Errorf("Got %v, expected ErrTrioMismatch", err)
	}
}

func TestReadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.fam")
	if err := os.WriteFile(path, []byte("F1 S1 0 0 1 -9\nF1\tS2\t0\t0\t2\t-9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	samples, err := ReadSamples(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}

	if len(samples) != 2 {
		t.Fatalf("Got %d samples, expected 2", len(samples))
	}
	if samples[1] != (Sample{FamilyID: "F1", SampleID: "S2"}) {
		t.Errorf("Got %+v, expected F1/S2", samples[1])
	}

	if err := os.WriteFile(path, []byte("F1 S1 0 0 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadSamples(context.Background(), path); !errors.Is(err, ErrTrioMismatch) {
		t.Errorf("Got %v, expected ErrTrioMismatch", err)
	}
}
