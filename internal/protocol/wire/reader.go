package wire

import (
	"encoding/binary"
	"unicode/utf8"
)

// Reader consumes encoded values from the front of a byte slice.
//
// Every Read call is atomic: when it fails the read position is restored to
// where that call began. A Reader is owned by one goroutine.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps b. The Reader never modifies b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns a copy of the unread bytes without consuming them.
func (r *Reader) Remaining() []byte {
	out := make([]byte, r.Len())
	copy(out, r.buf[r.off:])
	return out
}

// next consumes n bytes and returns them without copying.
func (r *Reader) next(typ string, n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, ShortBufferError{Type: typ, Expected: n, Available: r.Len()}
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Extract removes exactly n bytes from the front and returns a copy.
func (r *Reader) Extract(n int) ([]byte, error) {
	b, err := r.next("bytes", n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.next("u8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.next("u16", 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next("u32", 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.next("u64", 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

// ReadString reads a VarUint byte length followed by that many UTF-8 bytes.
func (r *Reader) ReadString() (string, error) {
	start := r.off
	s, err := r.readString()
	if err != nil {
		r.off = start
		return "", err
	}
	return s, nil
}

func (r *Reader) readString() (string, error) {
	n, err := r.ReadVarUint()
	if err != nil {
		return "", withContext(err, "reading string length")
	}
	if n > uint64(r.Len()) {
		return "", ShortBufferError{Type: "String", Expected: clampInt(n), Available: r.Len()}
	}
	b, err := r.next("String", int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", InvalidStringError{Offset: invalidUTF8Offset(b)}
	}
	return string(b), nil
}

// ReadBytes reads a VarUint length followed by that many raw bytes.
func (r *Reader) ReadBytes() ([]byte, error) {
	start := r.off
	n, err := r.ReadVarUint()
	if err != nil {
		return nil, withContext(err, "reading bytes length")
	}
	if n > uint64(r.Len()) {
		err := ShortBufferError{Type: "bytes", Expected: clampInt(n), Available: r.Len()}
		r.off = start
		return nil, err
	}
	return r.Extract(int(n))
}

// ReadSequenceFunc reads a VarUint count followed by that many elements, each
// decoded by read. The first element failure aborts the whole sequence.
func ReadSequenceFunc[T any](r *Reader, read func(*Reader) (T, error)) ([]T, error) {
	start := r.off
	out, err := readSequence(r, read)
	if err != nil {
		r.off = start
		return nil, err
	}
	return out, nil
}

func readSequence[T any](r *Reader, read func(*Reader) (T, error)) ([]T, error) {
	n, err := r.ReadVarUint()
	if err != nil {
		return nil, withContext(err, "reading sequence length")
	}
	// Every supported element takes at least one byte.
	capacity := n
	if capacity > uint64(r.Len()) {
		capacity = uint64(r.Len())
	}
	out := make([]T, 0, int(capacity))
	for i := uint64(0); i < n; i++ {
		v, err := read(r)
		if err != nil {
			return nil, withContext(err, "reading sequence item %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

func clampInt(n uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if n > uint64(maxInt) {
		return maxInt
	}
	return int(n)
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		c, size := utf8.DecodeRune(b[i:])
		if c == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(b)
}
