package prj

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
)

// decodeCString decodes a Windows-1252 string whose only NUL is the last byte.
func decodeCString(b []byte) (string, error) {
	n := bytes.IndexByte(b, 0)
	if len(b) == 0 || n != len(b)-1 {
		return "", fmt.Errorf("%w: expected single trailing NUL in %d bytes", ErrInvalidString, len(b))
	}

	return decodeWindows1252(b[:n])
}

// decodeCStringPrefix decodes the first NUL-terminated run of b.
func decodeCStringPrefix(b []byte) (string, error) {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return "", fmt.Errorf("%w: missing NUL in %d bytes", ErrInvalidString, len(b))
	}

	return decodeWindows1252(b[:n])
}

func decodeWindows1252(b []byte) (string, error) {
	s, err := charmap.Windows1252.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidString, err)
	}

	return string(s), nil
}

// encodeCString encodes s as Windows-1252 with a trailing NUL.
func encodeCString(s string) ([]byte, error) {
	if bytes.IndexByte([]byte(s), 0) >= 0 {
		return nil, fmt.Errorf("%w: %q contains NUL", ErrInvalidString, s)
	}

	b, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidString, s, err)
	}

	return append(b, 0), nil
}

// encodeFixedCString encodes s into a NUL-padded field of exactly size bytes.
func encodeFixedCString(s string, size int) ([]byte, error) {
	b, err := encodeCString(s)
	if err != nil {
		return nil, err
	}
	if len(b) > size {
		return nil, fmt.Errorf("%w: %q needs %d bytes, field has %d", ErrStringTooLong, s, len(b), size)
	}

	out := make([]byte, size)
	copy(out, b)
	return out, nil
}
