package wire

import "encoding/binary"

// Writer accumulates encoded values. Writes never fail.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated encoding. The slice aliases the Writer's
// buffer until the next write.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset drops the accumulated bytes and keeps the allocation.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// WriteRaw appends b with no length prefix.
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteString appends a VarUint byte length followed by the bytes of s.
func (w *Writer) WriteString(s string) {
	w.WriteVarUint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes appends a VarUint length followed by b.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteVarUint(uint64(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteSequenceFunc appends a VarUint count followed by each element encoded
// by write, in order.
func WriteSequenceFunc[T any](w *Writer, vs []T, write func(*Writer, T)) {
	w.WriteVarUint(uint64(len(vs)))
	for _, v := range vs {
		write(w, v)
	}
}

// WriteSequence appends a VarUint count followed by each element's encoding.
func WriteSequence[T Encoder](w *Writer, vs []T) {
	w.WriteVarUint(uint64(len(vs)))
	for _, v := range vs {
		v.EncodeTo(w)
	}
}
