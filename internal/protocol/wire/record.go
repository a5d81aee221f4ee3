package wire

import "reflect"

// RecordField is one named field of a record, in declaration order.
type RecordField struct {
	Name  string
	Value Value
}

// Field pairs a field name with a pointer to its contract value.
func Field(name string, v Value) RecordField {
	return RecordField{Name: name, Value: v}
}

// DecodeStep is one named field decode. Generated record decoders use it to
// decode into a scratch value.
type DecodeStep struct {
	Name   string
	Decode func(r *Reader) error
}

// EncodeRecord encodes each field in the order given.
func EncodeRecord(w *Writer, fields ...RecordField) {
	for _, f := range fields {
		f.Value.EncodeTo(w)
	}
}

// DecodeRecord decodes each field in the order given. The first failure
// aborts the record and names the field that failed. Field values must be
// pointers; on failure every field is restored to its value before the call.
func DecodeRecord(r *Reader, record string, fields ...RecordField) error {
	saved := make([]reflect.Value, len(fields))
	steps := make([]DecodeStep, len(fields))
	for i, f := range fields {
		if p := reflect.ValueOf(f.Value); p.Kind() == reflect.Pointer && !p.IsNil() {
			saved[i] = reflect.New(p.Elem().Type()).Elem()
			saved[i].Set(p.Elem())
		}
		steps[i] = DecodeStep{Name: f.Name, Decode: f.Value.DecodeFrom}
	}
	err := DecodeSteps(r, record, steps...)
	if err != nil {
		for i, f := range fields {
			if saved[i].IsValid() {
				reflect.ValueOf(f.Value).Elem().Set(saved[i])
			}
		}
	}
	return err
}

// DecodeSteps runs each step in order. On failure the Reader is rewound to
// where the record began.
func DecodeSteps(r *Reader, record string, steps ...DecodeStep) error {
	start := r.off
	for _, s := range steps {
		if err := s.Decode(r); err != nil {
			r.off = start
			return withContext(err, "reading %s.%s", record, s.Name)
		}
	}
	return nil
}
