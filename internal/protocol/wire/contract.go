package wire

// Encoder appends its wire representation to a Writer.
type Encoder interface {
	EncodeTo(w *Writer)
}

// Decoder replaces its value with one decoded from the front of a Reader.
type Decoder interface {
	DecodeFrom(r *Reader) error
}

// Value is a type that can be both encoded and decoded in place. Pointers to
// the contract types satisfy it.
type Value interface {
	Encoder
	Decoder
}

// Contract constrains PT to *T implementing both halves of the contract.
type Contract[T any] interface {
	*T
	Encoder
	Decoder
}

// Encode returns the wire representation of v.
func Encode(v Encoder) []byte {
	w := NewWriter()
	v.EncodeTo(w)
	return w.Bytes()
}

// Decode decodes one T from b. Trailing bytes are ignored.
func Decode[T any, PT Contract[T]](b []byte) (T, error) {
	return DecodeFrom[T, PT](NewReader(b))
}

// DecodeFrom decodes one T from the front of r.
func DecodeFrom[T any, PT Contract[T]](r *Reader) (T, error) {
	var v T
	if err := PT(&v).DecodeFrom(r); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// ReadSequence reads a sequence of contract values.
func ReadSequence[T any, PT Contract[T]](r *Reader) ([]T, error) {
	return ReadSequenceFunc(r, DecodeFrom[T, PT])
}

type (
	Uint8  uint8
	Uint16 uint16
	Uint32 uint32
	Uint64 uint64
	String string
)

func (v Uint8) EncodeTo(w *Writer)  { w.WriteUint8(uint8(v)) }
func (v Uint16) EncodeTo(w *Writer) { w.WriteUint16(uint16(v)) }
func (v Uint32) EncodeTo(w *Writer) { w.WriteUint32(uint32(v)) }
func (v Uint64) EncodeTo(w *Writer) { w.WriteUint64(uint64(v)) }
func (v String) EncodeTo(w *Writer) { w.WriteString(string(v)) }

func (v *Uint8) DecodeFrom(r *Reader) error {
	n, err := r.ReadUint8()
	if err != nil {
		return err
	}
	*v = Uint8(n)
	return nil
}

func (v *Uint16) DecodeFrom(r *Reader) error {
	n, err := r.ReadUint16()
	if err != nil {
		return err
	}
	*v = Uint16(n)
	return nil
}

func (v *Uint32) DecodeFrom(r *Reader) error {
	n, err := r.ReadUint32()
	if err != nil {
		return err
	}
	*v = Uint32(n)
	return nil
}

func (v *Uint64) DecodeFrom(r *Reader) error {
	n, err := r.ReadUint64()
	if err != nil {
		return err
	}
	*v = Uint64(n)
	return nil
}

func (v *String) DecodeFrom(r *Reader) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	*v = String(s)
	return nil
}

// Sequence is a VarUint-counted list of contract values. Nest it to build
// sequences of sequences:
//
//	Sequence[Sequence[Uint8, *Uint8], *Sequence[Uint8, *Uint8]]
type Sequence[T any, PT Contract[T]] []T

func (s Sequence[T, PT]) EncodeTo(w *Writer) {
	w.WriteVarUint(uint64(len(s)))
	for i := range s {
		PT(&s[i]).EncodeTo(w)
	}
}

func (s *Sequence[T, PT]) DecodeFrom(r *Reader) error {
	vs, err := ReadSequence[T, PT](r)
	if err != nil {
		return err
	}
	*s = vs
	return nil
}
