// Package persistence reads and writes the binary snapshot format that
// carries corpus and query embeddings: a checksummed header followed by a
// vector section, an optional argument-index section, and a doc-id
// section. Sections are stored as independently compressed blocks.
package persistence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"math"
)

// Snapshot is the decoded content of a snapshot file: parallel arrays of
// vectors, optional argument indices, and identifiers.
type Snapshot struct {
	Dimension int
	// ArgDimension is the stored width of argument-index rows. It may be
	// smaller than Dimension when the embedding carries an appended
	// semantic block with no argument ids; the vector store pads the
	// difference with the sentinel id. Zero when Args is nil.
	ArgDimension int
	Vectors      []float32 // RowCount * Dimension
	Args         []int32   // RowCount * ArgDimension, nil when absent
	IDs          []string  // RowCount
}

// Rows returns the number of rows in the snapshot.
func (s *Snapshot) Rows() int {
	if s.Dimension == 0 {
		return 0
	}
	return len(s.Vectors) / s.Dimension
}

// Write encodes the snapshot to w using the given section compression.
func Write(w io.Writer, snap *Snapshot, ct CompressionType) error {
	if snap.Dimension <= 0 {
		return fmt.Errorf("persistence: invalid dimension %d", snap.Dimension)
	}
	rows := snap.Rows()
	if len(snap.Vectors) != rows*snap.Dimension {
		return fmt.Errorf("persistence: vector section has %d values, want %d", len(snap.Vectors), rows*snap.Dimension)
	}
	if len(snap.IDs) != rows {
		return fmt.Errorf("persistence: got %d ids for %d rows", len(snap.IDs), rows)
	}
	if snap.Args != nil && len(snap.Args) != rows*snap.ArgDimension {
		return fmt.Errorf("persistence: arg section has %d values, want %d", len(snap.Args), rows*snap.ArgDimension)
	}

	var payload bytes.Buffer

	block, err := compressBlock(float32Bytes(snap.Vectors), ct)
	if err != nil {
		return err
	}
	payload.Write(block)

	if snap.Args != nil {
		block, err = compressBlock(int32Bytes(snap.Args), ct)
		if err != nil {
			return err
		}
		payload.Write(block)
	}

	block, err = compressBlock(encodeIDs(snap.IDs), ct)
	if err != nil {
		return err
	}
	payload.Write(block)

	header := FileHeader{
		Magic:        MagicNumber,
		Version:      Version,
		Compression:  uint8(ct),
		RowCount:     uint64(rows),
		Dimension:    uint32(snap.Dimension),
		ArgDimension: uint32(snap.ArgDimension),
		Checksum:     crc32.ChecksumIEEE(payload.Bytes()),
	}
	if snap.Args != nil {
		header.Flags |= FlagHasArgs
	}

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	_, err = w.Write(payload.Bytes())
	return err
}

// Read decodes a snapshot from r, validating magic, version and checksum.
// A malformed snapshot is a fatal configuration error for the caller;
// nothing here is retried.
func Read(r io.Reader) (*Snapshot, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("persistence: read header: %w", err)
	}
	if header.Magic != MagicNumber {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, header.Magic)
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, header.Version)
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("persistence: read payload: %w", err)
	}
	if sum := crc32.ChecksumIEEE(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: stored 0x%08x, computed 0x%08x", ErrInvalidChecksum, header.Checksum, sum)
	}

	ct := CompressionType(header.Compression)
	rows := int(header.RowCount)
	dim := int(header.Dimension)

	raw, rest, err := decompressBlock(payload, ct)
	if err != nil {
		return nil, fmt.Errorf("persistence: vector section: %w", err)
	}
	vectors, err := bytesFloat32(raw, rows*dim)
	if err != nil {
		return nil, fmt.Errorf("persistence: vector section: %w", err)
	}

	var args []int32
	argDim := 0
	if header.Flags&FlagHasArgs != 0 {
		argDim = int(header.ArgDimension)
		raw, rest, err = decompressBlock(rest, ct)
		if err != nil {
			return nil, fmt.Errorf("persistence: arg section: %w", err)
		}
		args, err = bytesInt32(raw, rows*argDim)
		if err != nil {
			return nil, fmt.Errorf("persistence: arg section: %w", err)
		}
	}

	raw, _, err = decompressBlock(rest, ct)
	if err != nil {
		return nil, fmt.Errorf("persistence: id section: %w", err)
	}
	ids, err := decodeIDs(raw, rows)
	if err != nil {
		return nil, fmt.Errorf("persistence: id section: %w", err)
	}

	return &Snapshot{
		Dimension:    dim,
		ArgDimension: argDim,
		Vectors:      vectors,
		Args:         args,
		IDs:          ids,
	}, nil
}

func float32Bytes(vals []float32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func bytesFloat32(buf []byte, count int) ([]float32, error) {
	if len(buf) != count*4 {
		return nil, ErrTruncated
	}
	vals := make([]float32, count)
	for i := range vals {
		vals[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals, nil
}

func int32Bytes(vals []int32) []byte {
	buf := make([]byte, len(vals)*4)
	for i, v := range vals {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

func bytesInt32(buf []byte, count int) ([]int32, error) {
	if len(buf) != count*4 {
		return nil, ErrTruncated
	}
	vals := make([]int32, count)
	for i := range vals {
		vals[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vals, nil
}

// encodeIDs packs ids as uvarint length-prefixed strings.
func encodeIDs(ids []string) []byte {
	var buf bytes.Buffer
	var scratch [binary.MaxVarintLen64]byte
	for _, id := range ids {
		n := binary.PutUvarint(scratch[:], uint64(len(id)))
		buf.Write(scratch[:n])
		buf.WriteString(id)
	}
	return buf.Bytes()
}

func decodeIDs(buf []byte, count int) ([]string, error) {
	ids := make([]string, 0, count)
	for len(ids) < count {
		n, read := binary.Uvarint(buf)
		if read <= 0 {
			return nil, ErrTruncated
		}
		buf = buf[read:]
		if uint64(len(buf)) < n {
			return nil, ErrTruncated
		}
		ids = append(ids, string(buf[:n]))
		buf = buf[n:]
	}
	return ids, nil
}
