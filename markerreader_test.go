package bimrsid

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func readAll(t *testing.T, mr *MarkerReader) []*MarkerRecord {
	t.Helper()

	var out []*MarkerRecord
	for m := mr.Read(); m != nil; m = mr.Read() {
		out = append(out, m)
	}

	return out
}

func TestMarkerReaderLayouts(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		layout Layout
	}{
		{"tab", "1\trs1\t0\t100\tA\tG\n2\tkgp2\t0\t200\tC\tT\n", LayoutTab},
		{"space", "1 rs1 0 100 A G\n2 kgp2 0 200 C T\n", LayoutSpace},
		{"runs of spaces", "1  rs1 0   100 A G\n2 kgp2 0 200 C  T\n", LayoutSpace},
		{"crlf", "1\trs1\t0\t100\tA\tG\r\n2\tkgp2\t0\t200\tC\tT\r\n", LayoutTab},
		{"no trailing newline", "1\trs1\t0\t100\tA\tG\n2\tkgp2\t0\t200\tC\tT", LayoutTab},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mr, err := NewMarkerReader(strings.NewReader(tc.input), tc.name)
			if err != nil {
				t.Fatal(err)
			}

			if mr.Layout() != tc.layout {
				t.Errorf("Got layout %s, expected %s", mr.Layout(), tc.layout)
			}

			records := readAll(t, mr)
			if err := mr.Error(); err != nil {
				t.Fatal(err)
			}
			if len(records) != 2 {
				t.Fatalf("Got %d records, expected 2", len(records))
			}

			if records[1].ID != "kgp2" || records[1].Position != 200 || records[1].Allele2 != "T" {
				t.Errorf("Got %+v, expected kgp2 at 200 with T", records[1])
			}
			if records[1].Line() != 2 {
				t.Errorf("Got line %d, expected 2", records[1].Line())
			}
			if mr.RecordsSeen != 2 {
				t.Errorf("Got %d records seen, expected 2", mr.RecordsSeen)
			}
		})
	}
}

func TestMarkerReaderMalformed(t *testing.T) {
	for _, tc := range []struct {
		name   string
		input  string
		line   int
		fields int
		before int
	}{
		{"five fields", "1\trs1\t0\t100\tA\tG\n1\trs2\t0\t200\tA\n", 2, 5, 1},
		{"seven fields", "1 rs1 0 100 A G extra\n", 1, 7, 0},
		{"blank line", "1\trs1\t0\t100\tA\tG\n\n1\trs3\t0\t300\tA\tG\n", 2, 1, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			mr, err := NewMarkerReader(strings.NewReader(tc.input), "markers.bim")
			if err != nil {
				t.Fatal(err)
			}

			records := readAll(t, mr)
			err = mr.Error()
			if !errors.Is(err, ErrMalformedMarkerFile) {
				t.Fatalf("Got %v, expected ErrMalformedMarkerFile", err)
			}

			var mfe *MarkerFileError
			if !errors.As(err, &mfe) {
				t.Fatalf("Got %T, expected *MarkerFileError", err)
			}
			if mfe.Line != tc.line || mfe.Fields != tc.fields || mfe.Path != "markers.bim" {
				t.Errorf("Got %+v, expected line %d with %d fields", mfe, tc.line, tc.fields)
			}
			if len(records) != tc.before {
				t.Errorf("Got %d records before the error, expected %d", len(records), tc.before)
			}

			// The reader stays failed
			if m := mr.Read(); m != nil {
				t.Errorf("Got %+v after an error, expected nil", m)
			}
		})
	}
}

func TestMarkerReaderSpaceInTabFile(t *testing.T) {
	// A space is not a delimiter once the file is known to be tab delimited
	mr, err := NewMarkerReader(strings.NewReader("1\trs1\t0\t100\tA\tG\n1\trs 2\t0\t200\tA\tG\n"), "in.bim")
	if err != nil {
		t.Fatal(err)
	}

	records := readAll(t, mr)
	if err := mr.Error(); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].ID != "rs 2" {
		t.Errorf("Got %+v, expected the second id to be %q", records, "rs 2")
	}
}

func TestMarkerReaderEmpty(t *testing.T) {
	mr, err := NewMarkerReader(strings.NewReader(""), "empty.bim")
	if err != nil {
		t.Fatal(err)
	}

	if m := mr.Read(); m != nil {
		t.Errorf("Got %+v, expected nil", m)
	}
	if err := mr.Error(); err != nil {
		t.Errorf("Got %v, expected no error", err)
	}
}

func TestMarkerRoundTrip(t *testing.T) {
	for _, input := range []string{
		"1\tGSA-rs1\t0\t100\ta\tG\n01\tkgp2\t0.0012\t000200\t0\t0\nX\trs3\t-1\t300\tC\tT\n",
		"1 GSA-rs1 0 100 a G\n01 kgp2 0.0012 000200 0 0\nchrUn_x 1:5:A:C 0 bad A C\n",
	} {
		mr, err := NewMarkerReader(strings.NewReader(input), "in.bim")
		if err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		mw := NewMarkerWriter(&buf, mr.Layout())
		for m := mr.Read(); m != nil; m = mr.Read() {
			if err := mw.Write(m); err != nil {
				t.Fatal(err)
			}
		}
		if err := mr.Error(); err != nil {
			t.Fatal(err)
		}
		if err := mw.Flush(); err != nil {
			t.Fatal(err)
		}

		if buf.String() != input {
			t.Errorf("Got %q, expected %q", buf.String(), input)
		}
		if mw.RecordsWritten != 3 {
			t.Errorf("Got %d records written, expected 3", mw.RecordsWritten)
		}
	}
}

func TestDetectLayout(t *testing.T) {
	if got := DetectLayout("1\trs1\t0\t1\tA\tG"); got != LayoutTab {
		t.Errorf("Got %s, expected tab", got)
	}
	if got := DetectLayout("1 rs1 0 1 A G"); got != LayoutSpace {
		t.Errorf("Got %s, expected space", got)
	}
	if got := DetectLayout(""); got != LayoutSpace {
		t.Errorf("Got %s, expected space", got)
	}
}
