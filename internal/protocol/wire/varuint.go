package wire

import "encoding/binary"

// VarUint prefix bytes.
const (
	prefixUint16 byte = 0xFD
	prefixUint32 byte = 0xFE
	prefixUint64 byte = 0xFF
)

// MaxVarUintSize is the widest VarUint encoding.
const MaxVarUintSize = 9

// VarUint is an unsigned integer encoded in 1, 3, 5 or 9 bytes.
type VarUint uint64

// VarUintSize returns the encoded size of v.
func VarUintSize(v uint64) int {
	switch {
	case v < uint64(prefixUint16):
		return 1
	case v <= 0xFFFF:
		return 3
	case v <= 0xFFFFFFFF:
		return 5
	default:
		return 9
	}
}

// AppendVarUint appends the minimal encoding of v to dst.
func AppendVarUint(dst []byte, v uint64) []byte {
	switch VarUintSize(v) {
	case 1:
		return append(dst, byte(v))
	case 3:
		dst = append(dst, prefixUint16)
		return binary.BigEndian.AppendUint16(dst, uint16(v))
	case 5:
		dst = append(dst, prefixUint32)
		return binary.BigEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, prefixUint64)
		return binary.BigEndian.AppendUint64(dst, v)
	}
}

// ReadVarUint decodes one VarUint. Short-buffer failures are reported as
// type VarUint whichever byte ran out.
func (r *Reader) ReadVarUint() (uint64, error) {
	start := r.off
	v, err := r.readVarUint()
	if err != nil {
		r.off = start
		return 0, withType(err, "VarUint")
	}
	return v, nil
}

func (r *Reader) readVarUint() (uint64, error) {
	first, err := r.ReadUint8()
	if err != nil {
		return 0, err
	}
	switch first {
	case prefixUint16:
		v, err := r.ReadUint16()
		return uint64(v), err
	case prefixUint32:
		v, err := r.ReadUint32()
		return uint64(v), err
	case prefixUint64:
		return r.ReadUint64()
	default:
		return uint64(first), nil
	}
}

// WriteVarUint appends the minimal encoding of v.
func (w *Writer) WriteVarUint(v uint64) {
	w.buf = AppendVarUint(w.buf, v)
}

func (v VarUint) EncodeTo(w *Writer) {
	w.WriteVarUint(uint64(v))
}

func (v *VarUint) DecodeFrom(r *Reader) error {
	n, err := r.ReadVarUint()
	if err != nil {
		return err
	}
	*v = VarUint(n)
	return nil
}
