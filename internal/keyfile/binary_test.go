package keyfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinary_RoundTrip(t *testing.T) {
	keys := []uint32{5, 3, 0xffffffff, 0, 8}
	data, err := FormatBinary(keys)
	require.NoError(t, err)
	assert.True(t, IsBinary(data))
	assert.Len(t, data, headerSize+4*len(keys))

	got, err := ParseBinary(data)
	require.NoError(t, err)
	assert.Equal(t, keys, got)

	empty, err := FormatBinary(nil)
	require.NoError(t, err)
	got, err = ParseBinary(empty)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseBinary_Errors(t *testing.T) {
	good, err := FormatBinary([]uint32{1, 2, 3})
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", good[:6]},
		{"no magic", append([]byte("LZK2"), good[4:]...)},
		{"truncated", good[:len(good)-1]},
		{"trailing", append(append([]byte{}, good...), 0)},
		{"huge count", append([]byte("LZK1"), 0xff, 0xff, 0xff, 0xff)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseBinary(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrBadKey))
		})
	}
}

func TestListEnd(t *testing.T) {
	end, err := listEnd(20, 8, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, 20, end)

	_, err = listEnd(20, 8, 4, 4)
	assert.ErrorContains(t, err, "bounds")

	_, err = listEnd(20, 8, int(^uint(0)>>2), 4)
	assert.ErrorContains(t, err, "overflow")

	_, err = listEnd(20, 8, -1, 4)
	assert.Error(t, err)
}

func TestLoad_Binary(t *testing.T) {
	data, err := FormatBinary([]uint32{9, 7, 8})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "keys.lzk")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	keys, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []uint32{9, 7, 8}, keys)
}
