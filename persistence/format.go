package persistence

import "errors"

const (
	// MagicNumber identifies snapshot files (ASCII: "GIPS").
	MagicNumber = 0x47495053
	// Version is the current file format version (v1.0.0).
	Version = 0x00010000

	headerSize = 64
)

var (
	ErrInvalidMagic    = errors.New("invalid magic number")
	ErrInvalidVersion  = errors.New("unsupported version")
	ErrInvalidChecksum = errors.New("checksum mismatch")
	ErrTruncated       = errors.New("truncated snapshot")
)

// Header flags.
const (
	// FlagHasArgs is set when the snapshot carries an argument-index section.
	FlagHasArgs = 1 << 0
)

// FileHeader is the 64-byte header at the start of every snapshot file.
type FileHeader struct {
	Magic        uint32 // 0x47495053 ("GIPS")
	Version      uint32 // File format version
	Flags        uint8  // FlagHasArgs etc.
	Compression  uint8  // CompressionType of the section payloads
	Padding1     [2]byte
	RowCount     uint64 // Number of (vector, arg, id) rows
	Dimension    uint32 // Vector dimensionality
	ArgDimension uint32 // Argument-index width (<= Dimension, 0 when absent)
	Checksum     uint32 // CRC32 (IEEE) of all section payloads
	Padding2     [4]byte
	Reserved     [28]byte
}
