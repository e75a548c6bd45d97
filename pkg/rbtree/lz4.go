package rbtree

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

const uint32ByteSize = 4

// Block flags prefixed to every compressed column.
const (
	blockRaw byte = 0
	blockLZ4 byte = 1
)

var (
	errColumnSize = errors.New("decompressed column has unexpected size")
	errColumnFlag = errors.New("unknown column block flag")
)

// compressColumn packs a uint32 column little-endian and compresses it as a
// single LZ4 block. An empty column compresses to nil.
func compressColumn(column []uint32) ([]byte, error) {
	if len(column) == 0 {
		return nil, nil
	}

	raw := make([]byte, 0, len(column)*uint32ByteSize)
	for _, item := range column {
		raw = binary.LittleEndian.AppendUint32(raw, item)
	}

	packed := make([]byte, lz4.CompressBlockBound(len(raw)))

	written, err := lz4.CompressBlock(raw, packed, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// Incompressible input: CompressBlock reports 0 and the block is stored raw.
	if written == 0 {
		return append([]byte{blockRaw}, raw...), nil
	}

	return append([]byte{blockLZ4}, packed[:written]...), nil
}

// decompressColumn restores a column of rows items produced by compressColumn.
func decompressColumn(data []byte, rows int) ([]uint32, error) {
	column := make([]uint32, rows)
	if rows == 0 {
		return column, nil
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty block for %d rows", errColumnSize, rows)
	}

	var raw []byte

	switch data[0] {
	case blockRaw:
		raw = data[1:]
	case blockLZ4:
		raw = make([]byte, rows*uint32ByteSize)

		read, err := lz4.UncompressBlock(data[1:], raw)
		if err != nil {
			return nil, fmt.Errorf("lz4 uncompress: %w", err)
		}

		raw = raw[:read]
	default:
		return nil, fmt.Errorf("%w: %d", errColumnFlag, data[0])
	}

	if len(raw) != rows*uint32ByteSize {
		return nil, fmt.Errorf("%w: %d bytes for %d rows", errColumnSize, len(raw), rows)
	}

	for idx := range column {
		column[idx] = binary.LittleEndian.Uint32(raw[idx*uint32ByteSize:])
	}

	return column, nil
}
