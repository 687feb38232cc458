package persistence

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType defines the compression algorithm applied to snapshot
// section payloads.
type CompressionType uint8

const (
	// CompressionNone stores sections uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast decode).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses ZSTD block compression (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// compressBlock compresses raw into a self-describing block:
// [uncompressedSize uint32][compressedSize uint32][payload].
// A compressedSize of 0 means the payload is stored raw (compression
// did not help, or CompressionNone was requested).
func compressBlock(raw []byte, ct CompressionType) ([]byte, error) {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint32(header[0:4], uint32(len(raw)))

	var compressed []byte
	switch ct {
	case CompressionNone:
		// stored raw
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(raw)))
		n, err := lz4.CompressBlock(raw, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if n > 0 && n < len(raw) {
			compressed = buf[:n]
		}
	case CompressionZSTD:
		enc := getZstdEncoder()
		buf := enc.EncodeAll(raw, nil)
		zstdEncoderPool.Put(enc)
		if len(buf) < len(raw) {
			compressed = buf
		}
	default:
		return nil, fmt.Errorf("unknown compression type: %d", ct)
	}

	if compressed == nil {
		binary.LittleEndian.PutUint32(header[4:8], 0)
		return append(header, raw...), nil
	}
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(compressed)))
	return append(header, compressed...), nil
}

// decompressBlock consumes one block from data, returning the raw payload
// and the remaining bytes.
func decompressBlock(data []byte, ct CompressionType) (raw, rest []byte, err error) {
	if len(data) < 8 {
		return nil, nil, ErrTruncated
	}
	uncompressedSize := binary.LittleEndian.Uint32(data[0:4])
	compressedSize := binary.LittleEndian.Uint32(data[4:8])
	data = data[8:]

	if compressedSize == 0 {
		if uint32(len(data)) < uncompressedSize {
			return nil, nil, ErrTruncated
		}
		return data[:uncompressedSize], data[uncompressedSize:], nil
	}
	if uint32(len(data)) < compressedSize {
		return nil, nil, ErrTruncated
	}
	payload := data[:compressedSize]
	rest = data[compressedSize:]

	switch ct {
	case CompressionLZ4:
		raw = make([]byte, uncompressedSize)
		n, err := lz4.UncompressBlock(payload, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		if uint32(n) != uncompressedSize {
			return nil, nil, ErrTruncated
		}
		return raw, rest, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		raw, err = dec.DecodeAll(payload, make([]byte, 0, uncompressedSize))
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd decompress: %w", err)
		}
		if uint32(len(raw)) != uncompressedSize {
			return nil, nil, ErrTruncated
		}
		return raw, rest, nil
	default:
		return nil, nil, fmt.Errorf("unknown compression type: %d", ct)
	}
}
