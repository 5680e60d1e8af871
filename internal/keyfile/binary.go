package keyfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// Binary key files start with this magic, followed by a little-endian
// uint32 count and count little-endian uint32 keys.
var magic = []byte("LZK1")

const headerSize = 8

// IsBinary reports whether data starts with the binary key file magic.
func IsBinary(data []byte) bool {
	return bytes.HasPrefix(data, magic)
}

// ParseBinary decodes a binary key file.
func ParseBinary(data []byte) ([]uint32, error) {
	if len(data) < headerSize || !IsBinary(data) {
		return nil, fmt.Errorf("%w: missing binary header", ErrBadKey)
	}
	count := binary.LittleEndian.Uint32(data[4:headerSize])
	end, err := listEnd(len(data), headerSize, int(count), 4)
	if err != nil {
		return nil, fmt.Errorf("%w: %d keys: %v", ErrBadKey, count, err)
	}
	if end != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrBadKey, len(data)-end)
	}

	keys := make([]uint32, count)
	for i := range keys {
		off := headerSize + 4*i
		keys[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}
	return keys, nil
}

// FormatBinary encodes keys as a binary key file.
func FormatBinary(keys []uint32) ([]byte, error) {
	if uint64(len(keys)) > math.MaxUint32 {
		return nil, fmt.Errorf("keyfile: %d keys exceed the binary format", len(keys))
	}
	buf := make([]byte, headerSize, headerSize+4*len(keys))
	copy(buf, magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(keys)))
	for _, k := range keys {
		buf = binary.LittleEndian.AppendUint32(buf, k)
	}
	return buf, nil
}

// listEnd returns the offset after count elements of size bytes starting at
// offset, or an error when they overflow int or do not fit in bufLen.
func listEnd(bufLen, offset, count, size int) (int, error) {
	if count < 0 || size <= 0 {
		return 0, fmt.Errorf("bad list shape: count=%d size=%d", count, size)
	}
	if count > (math.MaxInt-offset)/size {
		return 0, fmt.Errorf("overflow: offset=%d + %d*%d", offset, count, size)
	}
	end := offset + count*size
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}
