package wire

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the byte length of a Hash on the wire.
const HashSize = 32

// Hash is a 32-byte digest.
type Hash [HashSize]byte

// HashFromBytes copies b into a Hash. b must be exactly HashSize bytes.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("wire: invalid hash length: %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// ParseHash decodes a 64-character hex string.
func ParseHash(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("wire: parse hash: %w", err)
	}
	return HashFromBytes(b)
}

// String renders h as lowercase hex.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) IsZero() bool {
	return h == Hash{}
}

func (r *Reader) ReadHash() (Hash, error) {
	var h Hash
	b, err := r.next("Hash", HashSize)
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func (w *Writer) WriteHash(h Hash) {
	w.buf = append(w.buf, h[:]...)
}

func (h Hash) EncodeTo(w *Writer) {
	w.WriteHash(h)
}

func (h *Hash) DecodeFrom(r *Reader) error {
	v, err := r.ReadHash()
	if err != nil {
		return err
	}
	*h = v
	return nil
}
