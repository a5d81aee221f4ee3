package wire

import (
	"errors"
	"net/netip"
	"reflect"
	"strings"
	"testing"
)

type version struct {
	Version  Uint32
	Services Uint64
	Nonce    VarUint
	Agent    String
	Tip      Hash
	From     Address
	Known    Sequence[Hash, *Hash]
}

func (m version) EncodeTo(w *Writer) {
	EncodeRecord(w, m.fields()...)
}

func (m *version) DecodeFrom(r *Reader) error {
	return DecodeRecord(r, "version", m.fields()...)
}

func (m *version) fields() []RecordField {
	return []RecordField{
		Field("version", &m.Version),
		Field("services", &m.Services),
		Field("nonce", &m.Nonce),
		Field("agent", &m.Agent),
		Field("tip", &m.Tip),
		Field("from", &m.From),
		Field("known", &m.Known),
	}
}

func testHash(seed byte) Hash {
	var h Hash
	for i := range h {
		h[i] = seed + byte(i)
	}
	return h
}

func TestPrimitiveContractRoundTrip(t *testing.T) {
	check := func(name string, in Encoder, decode func([]byte) (any, error)) {
		t.Helper()
		out, err := decode(Encode(in))
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if !reflect.DeepEqual(out, in) {
			t.Fatalf("%s: got %v want %v", name, out, in)
		}
	}
	check("u8", Uint8(200), func(b []byte) (any, error) { return Decode[Uint8](b) })
	check("u16", Uint16(65000), func(b []byte) (any, error) { return Decode[Uint16](b) })
	check("u32", Uint32(4000000000), func(b []byte) (any, error) { return Decode[Uint32](b) })
	check("u64", Uint64(1<<63+5), func(b []byte) (any, error) { return Decode[Uint64](b) })
	check("varuint", VarUint(1<<40), func(b []byte) (any, error) { return Decode[VarUint](b) })
	check("string", String("ensicoin"), func(b []byte) (any, error) { return Decode[String](b) })
	check("hash", testHash(3), func(b []byte) (any, error) { return Decode[Hash](b) })
	check("address", NewAddress(netip.MustParseAddrPort("10.0.0.1:4224")), func(b []byte) (any, error) {
		return Decode[Address](b)
	})
}

func TestAddressRoundTripIsAlwaysEighteenBytes(t *testing.T) {
	for _, raw := range []string{"127.0.0.1:1", "[::1]:65535", "[fe80::1%eth0]:80"} {
		in := NewAddress(netip.MustParseAddrPort(raw))
		b := Encode(in)
		if len(b) != AddressSize {
			t.Fatalf("%s: encoded %d bytes", raw, len(b))
		}
		out, err := Decode[Address](b)
		if err != nil {
			t.Fatalf("%s: decode: %v", raw, err)
		}
		if out != in {
			t.Fatalf("%s: got %v want %v", raw, out, in)
		}
	}
}

func TestAddressRoundTripAnyValue(t *testing.T) {
	var raw [16]byte
	for i := range raw {
		raw[i] = byte(0xF0 + i)
	}
	cases := map[string]Address{
		"zero":       {},
		"zero addr":  NewAddress(netip.AddrPort{}),
		"plain ipv4": NewAddress(netip.AddrPortFrom(netip.MustParseAddr("1.2.3.4"), 1)),
		"zoned ipv6": NewAddress(netip.MustParseAddrPort("[fe80::1%eth0]:2")),
		"literal":    {IP: raw, Port: 0xFFFF},
		"port only":  {Port: 8333},
	}
	for name, in := range cases {
		out, err := Decode[Address](Encode(in))
		if err != nil {
			t.Fatalf("%s: decode: %v", name, err)
		}
		if out != in {
			t.Fatalf("%s: got %+v want %+v", name, out, in)
		}
	}
	if (Address{}) != NewAddress(netip.AddrPort{}) {
		t.Fatalf("zero AddrPort should map to the zero Address")
	}
	plain := NewAddress(netip.AddrPortFrom(netip.MustParseAddr("1.2.3.4"), 1))
	if plain != NewAddress(netip.MustParseAddrPort("[::ffff:1.2.3.4]:1")) {
		t.Fatalf("ipv4 and mapped ipv4 should share one wire form")
	}
	if plain.String() != "1.2.3.4:1" {
		t.Fatalf("unexpected string %q", plain.String())
	}
}

func TestSequenceLaw(t *testing.T) {
	in := Sequence[String, *String]{"a", "", "ñandú", "zzz"}
	out, err := Decode[Sequence[String, *String]](Encode(in))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d elements, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("element %d: got %q want %q", i, out[i], in[i])
		}
	}
}

func TestNestedSequenceContract(t *testing.T) {
	type bytesSeq = Sequence[Uint8, *Uint8]
	var out Sequence[bytesSeq, *bytesSeq]
	if err := out.DecodeFrom(NewReader([]byte{2, 2, 42, 43, 1, 44})); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Sequence[bytesSeq, *bytesSeq]{{42, 43}, {44}}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v want %v", out, want)
	}
	if got := Encode(out); !reflect.DeepEqual(got, []byte{2, 2, 42, 43, 1, 44}) {
		t.Fatalf("re-encode mismatch: %v", got)
	}
}

func TestRecordRoundTripInFieldOrder(t *testing.T) {
	in := version{
		Version:  1,
		Services: 3,
		Nonce:    999,
		Agent:    "ensicoin-go/0.1",
		Tip:      testHash(7),
		From:     NewAddress(netip.MustParseAddrPort("1.2.3.4:4224")),
		Known:    Sequence[Hash, *Hash]{testHash(1), testHash(2)},
	}
	b := Encode(in)
	if b[3] != 1 || b[11] != 3 {
		t.Fatalf("fields not encoded in declaration order: %x", b[:12])
	}
	out, err := Decode[version](b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %+v want %+v", out, in)
	}
}

func TestRecordDecodeNamesFailingField(t *testing.T) {
	in := version{Agent: "x", Known: Sequence[Hash, *Hash]{testHash(1)}}
	b := Encode(in)
	_, err := Decode[version](b[:len(b)-1])
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "reading version.known") {
		t.Fatalf("expected field context, got %v", err)
	}
	var short ShortBufferError
	if !errors.As(err, &short) || short.Type != "Hash" || short.Expected != 32 || short.Available != 31 {
		t.Fatalf("unexpected inner error: %v", err)
	}
}

func TestRecordDecodeFailureLeavesFieldsUntouched(t *testing.T) {
	prev := version{
		Version: 9,
		Agent:   "before",
		Tip:     testHash(9),
	}
	in := version{Version: 1, Services: 2, Nonce: 3, Agent: "after", Known: Sequence[Hash, *Hash]{testHash(1)}}
	b := Encode(in)

	got := prev
	r := NewReader(b[:len(b)-1])
	if err := DecodeRecord(r, "version", got.fields()...); err == nil {
		t.Fatalf("expected error")
	}
	if !reflect.DeepEqual(got, prev) {
		t.Fatalf("record mutated on failure: got %+v want %+v", got, prev)
	}
	if got.Known != nil {
		t.Fatalf("nil sequence should stay nil, got %#v", got.Known)
	}
	if r.Offset() != 0 {
		t.Fatalf("reader advanced to %d on failure", r.Offset())
	}

	if err := DecodeRecord(NewReader(b), "version", got.fields()...); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %+v want %+v", got, in)
	}
}

func TestHashString(t *testing.T) {
	var h Hash
	h[0] = 0x0a
	s := h.String()
	if len(s) != 64 || !strings.HasPrefix(s, "0a00") {
		t.Fatalf("unexpected hex %q", s)
	}
	parsed, err := ParseHash(s)
	if err != nil || parsed != h {
		t.Fatalf("parse: %v %v", parsed, err)
	}
	if _, err := ParseHash("abcd"); err == nil {
		t.Fatalf("expected length error")
	}
}
