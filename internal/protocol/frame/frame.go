package frame

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/ensiwire/internal/observability"
	"github.com/danmuck/ensiwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
)

const (
	TypeLen   = 12
	HeaderLen = 4 + TypeLen + 8
)

// MagicMainnet is the ensicoin mainnet network magic.
const MagicMainnet uint32 = 422021

var (
	ErrShortHeader     = errors.New("frame: short fixed header")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrInvalidType     = errors.New("frame: invalid message type")
	ErrMagicMismatch   = errors.New("frame: magic mismatch")
)

// Header is the fixed message envelope header.
type Header struct {
	Magic      uint32
	Type       string
	PayloadLen uint64
}

// Frame is one complete wire message.
type Frame struct {
	Header  Header
	Payload []byte
}

// Limits constrains frame decode/encode. A zero Magic accepts any magic.
type Limits struct {
	Magic           uint32
	MaxPayloadBytes uint64
}

func DefaultLimits() Limits {
	return Limits{
		Magic:           MagicMainnet,
		MaxPayloadBytes: 8 * 1024 * 1024,
	}
}

func ReadFrame(r io.Reader, limits Limits) (Frame, error) {
	var fixed [HeaderLen]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			observability.RecordFrame("read", observability.RejectedFrameType, false)
			return Frame{}, ErrShortHeader
		}
		return Frame{}, err
	}

	h, err := DecodeHeader(fixed[:])
	if err != nil {
		observability.RecordFrame("read", observability.RejectedFrameType, false)
		return Frame{}, err
	}
	if err := checkHeader(h, limits); err != nil {
		log.Error().
			Err(err).
			Str("type", h.Type).
			Uint64("payload_len", h.PayloadLen).
			Msg("frame.ReadFrame rejected header")
		observability.RecordFrame("read", observability.RejectedFrameType, false)
		return Frame{}, err
	}

	payload := make([]byte, h.PayloadLen)
	if h.PayloadLen > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			observability.RecordFrame("read", h.Type, false)
			return Frame{}, fmt.Errorf("frame: read %s payload: %w", h.Type, err)
		}
	}

	log.Debug().Str("type", h.Type).Uint64("payload_len", h.PayloadLen).Msg("frame.ReadFrame ok")
	observability.RecordFrame("read", h.Type, true)
	return Frame{Header: h, Payload: payload}, nil
}

func WriteFrame(w io.Writer, f Frame, limits Limits) error {
	h := f.Header
	h.PayloadLen = uint64(len(f.Payload))
	if h.Magic == 0 {
		h.Magic = limits.Magic
	}
	if err := checkHeader(h, limits); err != nil {
		observability.RecordFrame("write", observability.RejectedFrameType, false)
		return err
	}

	hb, err := EncodeHeader(h)
	if err != nil {
		return err
	}
	if _, err := w.Write(hb); err != nil {
		return err
	}
	if len(f.Payload) > 0 {
		if _, err := w.Write(f.Payload); err != nil {
			return err
		}
	}
	observability.RecordFrame("write", h.Type, true)
	return nil
}

// EncodeFrame encodes a Frame carrying the encoding of v.
func EncodeFrame(magic uint32, msgType string, v wire.Encoder) (Frame, error) {
	if err := validateType(msgType); err != nil {
		return Frame{}, err
	}
	return Frame{
		Header:  Header{Magic: magic, Type: msgType},
		Payload: wire.Encode(v),
	}, nil
}

func checkHeader(h Header, limits Limits) error {
	if limits.Magic != 0 && h.Magic != limits.Magic {
		return ErrMagicMismatch
	}
	if h.PayloadLen > limits.MaxPayloadBytes {
		return ErrPayloadTooLarge
	}
	return validateType(h.Type)
}

func validateType(t string) error {
	if t == "" || len(t) > TypeLen {
		return ErrInvalidType
	}
	for i := 0; i < len(t); i++ {
		if t[i] < 0x21 || t[i] > 0x7E {
			return ErrInvalidType
		}
	}
	return nil
}

// EncodeHeader encodes h as magic, NUL padded type and payload length.
func EncodeHeader(h Header) ([]byte, error) {
	if err := validateType(h.Type); err != nil {
		return nil, err
	}
	var typ [TypeLen]byte
	copy(typ[:], h.Type)

	w := wire.NewWriter()
	w.WriteUint32(h.Magic)
	w.WriteRaw(typ[:])
	w.WriteUint64(h.PayloadLen)
	return w.Bytes(), nil
}

func DecodeHeader(b []byte) (Header, error) {
	if len(b) != HeaderLen {
		return Header{}, fmt.Errorf("frame: invalid fixed header length: %d", len(b))
	}
	r := wire.NewReader(b)
	magic, err := r.ReadUint32()
	if err != nil {
		return Header{}, err
	}
	typ, err := r.Extract(TypeLen)
	if err != nil {
		return Header{}, err
	}
	payloadLen, err := r.ReadUint64()
	if err != nil {
		return Header{}, err
	}
	return Header{
		Magic:      magic,
		Type:       string(bytes.TrimRight(typ, "\x00")),
		PayloadLen: payloadLen,
	}, nil
}
