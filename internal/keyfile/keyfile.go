// Package keyfile reads sort keys from text files.
//
// A text key file holds unsigned 32-bit decimal keys separated by whitespace
// or commas. A '#' starts a comment that runs to the end of the line. Binary
// key files are recognized by their magic; see ParseBinary.
package keyfile

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/joshuapare/lozenge/internal/mmfile"
)

// ErrBadKey reports a token that is not a uint32.
var ErrBadKey = errors.New("keyfile: bad key")

// Load maps the file at path and parses it as a binary or text key file.
func Load(path string) ([]uint32, error) {
	data, release, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	var keys []uint32
	if IsBinary(data) {
		keys, err = ParseBinary(data)
	} else {
		keys, err = Parse(data)
	}
	if rerr := release(); err == nil && rerr != nil {
		return nil, rerr
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keys, nil
}

// Parse returns the keys in data in file order.
func Parse(data []byte) ([]uint32, error) {
	keys := make([]uint32, 0, len(data)/4)
	line := 1
	for len(data) > 0 {
		nl := bytes.IndexByte(data, '\n')
		var text []byte
		if nl < 0 {
			text, data = data, nil
		} else {
			text, data = data[:nl], data[nl+1:]
		}
		if c := bytes.IndexByte(text, '#'); c >= 0 {
			text = text[:c]
		}
		for _, tok := range bytes.FieldsFunc(text, isSeparator) {
			k, err := strconv.ParseUint(string(tok), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w %q on line %d", ErrBadKey, tok, line)
			}
			keys = append(keys, uint32(k))
		}
		line++
	}
	return keys, nil
}

func isSeparator(r rune) bool {
	switch r {
	case ' ', '\t', '\r', ',', '\v', '\f':
		return true
	}
	return false
}

// Format renders keys one per line, the inverse of Parse.
func Format(keys []uint32) []byte {
	buf := make([]byte, 0, len(keys)*6)
	for _, k := range keys {
		buf = strconv.AppendUint(buf, uint64(k), 10)
		buf = append(buf, '\n')
	}
	return buf
}
