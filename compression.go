package bimrsid

// Compression indicates how (and whether) an input stream is compressed
type Compression uint32

const (
	CompressionDisabled Compression = iota
	CompressionGzip
	CompressionBGZF
	CompressionZStandard
)

func (c Compression) String() string {
	switch c {
	case CompressionDisabled:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionBGZF:
		return "bgzf"
	case CompressionZStandard:
		return "zstd"

	default:
		return "Illegal selection"
	}
}
