package bimrsid

// Marker files and VCF POS are 1-based. Index queries use 0-based half-open
// intervals, the same convention as tabix and BED. All conversions between
// the two go through this file.

// LocusRange returns the 0-based half-open interval [start, end) that covers
// exactly the 1-based position pos.
func LocusRange(pos int) (start, end int) {
	return pos - 1, pos
}

// oneBasedBounds converts a 0-based half-open interval into inclusive 1-based
// bounds: a variant at POS p lies in [start, end) iff lo <= p <= hi.
func oneBasedBounds(start, end int) (lo, hi int) {
	return start + 1, end
}
