package bimrsid

import "strings"

// Layout is the column delimiter convention of a marker file. PLINK writes
// tabs, but space-delimited files are common after hand editing.
type Layout uint32

const (
	LayoutTab Layout = iota
	LayoutSpace
)

func (l Layout) String() string {
	switch l {
	case LayoutTab:
		return "tab"
	case LayoutSpace:
		return "space"

	default:
		return "Illegal selection"
	}
}

func (l Layout) Delimiter() byte {
	if l == LayoutSpace {
		return ' '
	}

	return '\t'
}

// DetectLayout picks the layout from the first line of a file.
func DetectLayout(line string) Layout {
	if strings.IndexByte(line, '\t') >= 0 {
		return LayoutTab
	}

	return LayoutSpace
}

// Split tokenizes a line. A tab layout must have exactly one tab between
// columns; a space layout tolerates runs of spaces, which is what PLINK
// itself accepts.
func (l Layout) Split(line string) []string {
	if l == LayoutSpace {
		return strings.Fields(line)
	}

	return strings.Split(line, "\t")
}
