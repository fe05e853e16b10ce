package prj

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

// blockScanner walks the container blocks in order. The offset of a block is
// only known once the previous one is fully consumed.
type blockScanner struct {
	r *bufio.Reader
}

func newBlockScanner(r io.Reader) *blockScanner {
	if br, ok := r.(*bufio.Reader); ok {
		return &blockScanner{r: br}
	}

	return &blockScanner{r: bufio.NewReader(r)}
}

// readSignature checks the fixed signature at offset 0.
func (s *blockScanner) readSignature() error {
	buf := make([]byte, signatureSize)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return fmt.Errorf("%w: %w", ErrReadHeader, err)
	}
	if string(buf) != Signature {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, strings.ToValidUTF8(string(buf), "�"))
	}

	return nil
}

// expectTag reads a 4-byte tag and checks it.
func (s *blockScanner) expectTag(tag string) error {
	buf := make([]byte, tagSize)
	if _, err := io.ReadFull(s.r, buf); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrReadBlockHeader, tag, err)
	}
	if string(buf) != tag {
		return fmt.Errorf("%w: expected %s, got %q", ErrInvalidBlockFormat, tag, strings.ToValidUTF8(string(buf), "�"))
	}

	return nil
}

// readU32 reads one little-endian header field.
func (s *blockScanner) readU32(tag string) (uint32, error) {
	var v uint32
	if err := binary.Read(s.r, binary.LittleEndian, &v); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrReadBlockHeader, tag, err)
	}

	return v, nil
}

// readBlockHeader reads a tag followed by its declared size.
func (s *blockScanner) readBlockHeader(tag string) (uint32, error) {
	if err := s.expectTag(tag); err != nil {
		return 0, err
	}

	return s.readU32(tag)
}

// readBytes reads exactly n payload bytes. The buffer grows with the bytes
// actually read, not with the declared size.
func (s *blockScanner) readBytes(tag string, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %s: negative size %d", ErrInvalid, tag, n)
	}

	var buf bytes.Buffer
	buf.Grow(min(n, readChunkSize))
	if _, err := io.CopyN(&buf, s.r, int64(n)); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("%w: %s: %d of %d bytes: %w", ErrReadBlock, tag, buf.Len(), n, err)
	}

	return buf.Bytes(), nil
}

// readBlock reads a block with a declared size that is exact.
func (s *blockScanner) readBlock(tag string) ([]byte, error) {
	size, err := s.readBlockHeader(tag)
	if err != nil {
		return nil, err
	}

	return s.readBytes(tag, int(size))
}

// readUntilTag reads bytes until the last four read equal next. The returned
// payload excludes the marker, which is consumed.
func (s *blockScanner) readUntilTag(tag, next string) ([]byte, error) {
	marker := []byte(next)
	var window [tagSize]byte
	var buf bytes.Buffer
	seen := 0

	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, fmt.Errorf("%w: %s before %s: %w", ErrMarkerNotFound, tag, next, err)
		}

		buf.WriteByte(b)
		copy(window[:], window[1:])
		window[tagSize-1] = b
		seen++

		if seen >= tagSize && bytes.Equal(window[:], marker) {
			return buf.Bytes()[:buf.Len()-tagSize], nil
		}
	}
}

// readToEnd reads the final block.
func (s *blockScanner) readToEnd(tag string) ([]byte, error) {
	data, err := io.ReadAll(s.r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadBlock, tag, err)
	}

	return data, nil
}

// blockWriter appends blocks to an in-memory buffer so that an encode error
// never leaves a partial stream behind.
type blockWriter struct {
	buf bytes.Buffer
}

func (w *blockWriter) writeTag(tag string) {
	w.buf.WriteString(tag)
}

func (w *blockWriter) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *blockWriter) writeI32(v int32) {
	w.writeU32(uint32(v))
}

func (w *blockWriter) writeBlockHeader(tag string, size uint32) {
	w.writeTag(tag)
	w.writeU32(size)
}

func (w *blockWriter) write(b []byte) {
	w.buf.Write(b)
}

// writeStruct writes a fixed-layout record.
func (w *blockWriter) writeStruct(v any) error {
	return binary.Write(&w.buf, binary.LittleEndian, v)
}
