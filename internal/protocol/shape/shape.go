package shape

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danmuck/ensiwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

// Shape is a parsed type expression.
type Shape interface {
	String() string
	Decode(r *wire.Reader) (any, error)
	Encode(w *wire.Writer, v any) error
}

// ValueError reports a value that does not fit its shape.
type ValueError struct {
	Shape  string
	Reason string
}

func (e ValueError) Error() string {
	return fmt.Sprintf("shape: %s: %s", e.Shape, e.Reason)
}

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Expr   string
	Offset int
	Reason string
}

func (e SyntaxError) Error() string {
	return fmt.Sprintf("shape: invalid expression %q at %d: %s", e.Expr, e.Offset, e.Reason)
}

// Parse parses a type expression.
func Parse(expr string) (Shape, error) {
	p := parser{src: expr}
	s, err := p.parse()
	if err != nil {
		log.Debug().Err(err).Str("expr", expr).Msg("shape.Parse failed")
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, SyntaxError{Expr: expr, Offset: p.pos, Reason: "trailing input"}
	}
	return s, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(expr string) Shape {
	s, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return s
}

// DecodeAll decodes one value and fails if bytes remain.
func DecodeAll(s Shape, b []byte) (any, error) {
	r := wire.NewReader(b)
	v, err := s.Decode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, ValueError{Shape: s.String(), Reason: fmt.Sprintf("%d trailing bytes", r.Len())}
	}
	return v, nil
}

// EncodeValue returns the encoding of v under s.
func EncodeValue(s Shape, v any) ([]byte, error) {
	w := wire.NewWriter()
	if err := s.Encode(w, v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return SyntaxError{Expr: p.src, Offset: p.pos, Reason: fmt.Sprintf("expected %q", c)}
	}
	p.pos++
	return nil
}

func (p *parser) parse() (Shape, error) {
	start := p.pos
	name := p.ident()
	switch name {
	case "u8":
		return uintShape{name: name, max: math.MaxUint8}, nil
	case "u16":
		return uintShape{name: name, max: math.MaxUint16}, nil
	case "u32":
		return uintShape{name: name, max: math.MaxUint32}, nil
	case "u64":
		return uintShape{name: name, max: math.MaxUint64}, nil
	case "varuint":
		return uintShape{name: name, max: math.MaxUint64}, nil
	case "string":
		return stringShape{}, nil
	case "hash":
		return hashShape{}, nil
	case "addr":
		return addrShape{}, nil
	case "bytes":
		return bytesShape{}, nil
	case "seq":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return seqShape{elem: elem}, nil
	case "":
		return nil, SyntaxError{Expr: p.src, Offset: start, Reason: "expected type name"}
	default:
		return nil, SyntaxError{Expr: p.src, Offset: start, Reason: fmt.Sprintf("unknown type %q", name)}
	}
}

type uintShape struct {
	name string
	max  uint64
}

func (s uintShape) String() string { return s.name }

func (s uintShape) Decode(r *wire.Reader) (any, error) {
	switch s.name {
	case "u8":
		v, err := r.ReadUint8()
		return uint64(v), err
	case "u16":
		v, err := r.ReadUint16()
		return uint64(v), err
	case "u32":
		v, err := r.ReadUint32()
		return uint64(v), err
	case "u64":
		return r.ReadUint64()
	default:
		return r.ReadVarUint()
	}
}

func (s uintShape) Encode(w *wire.Writer, v any) error {
	n, err := toUint(v)
	if err != nil {
		return ValueError{Shape: s.name, Reason: err.Error()}
	}
	if n > s.max {
		return ValueError{Shape: s.name, Reason: fmt.Sprintf("%d out of range", n)}
	}
	switch s.name {
	case "u8":
		w.WriteUint8(uint8(n))
	case "u16":
		w.WriteUint16(uint16(n))
	case "u32":
		w.WriteUint32(uint32(n))
	case "u64":
		w.WriteUint64(n)
	default:
		w.WriteVarUint(n)
	}
	return nil
}

func toUint(v any) (uint64, error) {
	switch n := v.(type) {
	case uint64:
		return n, nil
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d", n)
		}
		return uint64(n), nil
	case float64:
		if n < 0 || n != math.Trunc(n) || n >= 1<<64 {
			return 0, fmt.Errorf("not an unsigned integer: %v", n)
		}
		return uint64(n), nil
	case json.Number:
		return strconv.ParseUint(n.String(), 10, 64)
	case string:
		return strconv.ParseUint(strings.TrimSpace(n), 0, 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

type stringShape struct{}

func (stringShape) String() string { return "string" }

func (stringShape) Decode(r *wire.Reader) (any, error) {
	return r.ReadString()
}

func (stringShape) Encode(w *wire.Writer, v any) error {
	s, ok := v.(string)
	if !ok {
		return ValueError{Shape: "string", Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
	w.WriteString(s)
	return nil
}

type hashShape struct{}

func (hashShape) String() string { return "hash" }

func (hashShape) Decode(r *wire.Reader) (any, error) {
	h, err := r.ReadHash()
	if err != nil {
		return nil, err
	}
	return h.String(), nil
}

func (hashShape) Encode(w *wire.Writer, v any) error {
	switch h := v.(type) {
	case wire.Hash:
		w.WriteHash(h)
		return nil
	case string:
		parsed, err := wire.ParseHash(h)
		if err != nil {
			return ValueError{Shape: "hash", Reason: err.Error()}
		}
		w.WriteHash(parsed)
		return nil
	default:
		return ValueError{Shape: "hash", Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

type addrShape struct{}

func (addrShape) String() string { return "addr" }

func (addrShape) Decode(r *wire.Reader) (any, error) {
	a, err := r.ReadAddress()
	if err != nil {
		return nil, err
	}
	return a.String(), nil
}

func (addrShape) Encode(w *wire.Writer, v any) error {
	switch a := v.(type) {
	case wire.Address:
		w.WriteAddress(a)
		return nil
	case string:
		parsed, err := wire.ParseAddress(strings.TrimSpace(a))
		if err != nil {
			return ValueError{Shape: "addr", Reason: err.Error()}
		}
		w.WriteAddress(parsed)
		return nil
	default:
		return ValueError{Shape: "addr", Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

type bytesShape struct{}

func (bytesShape) String() string { return "bytes" }

func (bytesShape) Decode(r *wire.Reader) (any, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return hex.EncodeToString(b), nil
}

func (bytesShape) Encode(w *wire.Writer, v any) error {
	switch b := v.(type) {
	case []byte:
		w.WriteBytes(b)
		return nil
	case string:
		raw, err := hex.DecodeString(strings.TrimSpace(b))
		if err != nil {
			return ValueError{Shape: "bytes", Reason: err.Error()}
		}
		w.WriteBytes(raw)
		return nil
	default:
		return ValueError{Shape: "bytes", Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
}

type seqShape struct {
	elem Shape
}

func (s seqShape) String() string { return "seq<" + s.elem.String() + ">" }

func (s seqShape) Decode(r *wire.Reader) (any, error) {
	out, err := wire.ReadSequenceFunc(r, s.elem.Decode)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s seqShape) Encode(w *wire.Writer, v any) error {
	items, ok := v.([]any)
	if !ok {
		return ValueError{Shape: s.String(), Reason: fmt.Sprintf("unsupported value type %T", v)}
	}
	// Validate into a scratch writer so w only ever sees whole values.
	scratch := wire.NewWriter()
	scratch.WriteVarUint(uint64(len(items)))
	for i, item := range items {
		if err := s.elem.Encode(scratch, item); err != nil {
			return fmt.Errorf("shape: %s item %d: %w", s.String(), i, err)
		}
	}
	w.WriteRaw(scratch.Bytes())
	return nil
}
