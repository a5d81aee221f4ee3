package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/ensiwire/internal/observability"
	"github.com/danmuck/ensiwire/internal/protocol/frame"
	"github.com/danmuck/ensiwire/internal/protocol/shape"
	"github.com/spf13/cobra"
)

type frameView struct {
	Magic      uint32 `json:"magic"`
	Type       string `json:"type"`
	PayloadLen uint64 `json:"payload_len"`
	Payload    any    `json:"payload"`
}

func newFrameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Read and write ensicoin message envelopes",
	}
	cmd.AddCommand(newFrameDecodeCmd(a), newFrameEncodeCmd(a))
	return cmd
}

func newFrameDecodeCmd(a *app) *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode a framed message and its payload when a shape is known",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := parseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			f, err := frame.ReadFrame(bytes.NewReader(b), a.cfg.Frame)
			if err != nil {
				return err
			}
			view := frameView{
				Magic:      f.Header.Magic,
				Type:       f.Header.Type,
				PayloadLen: f.Header.PayloadLen,
				Payload:    hex.EncodeToString(f.Payload),
			}
			s, err := a.payloadShape(f.Header.Type, expr)
			if err != nil {
				return err
			}
			if s != nil {
				v, err := shape.DecodeAll(s, f.Payload)
				observability.RecordDecode(s.String(), len(f.Payload), err)
				if err != nil {
					return fmt.Errorf("decode %s payload: %w", f.Header.Type, err)
				}
				view.Payload = v
			}
			return printJSON(cmd, view)
		},
	}
	cmd.Flags().StringVarP(&expr, "type", "t", "", "type expression for the payload (defaults to the [payloads] entry)")
	return cmd
}

func newFrameEncodeCmd(a *app) *cobra.Command {
	var msgType string
	cmd := &cobra.Command{
		Use:   "encode PAYLOAD_HEX",
		Short: "Wrap a hex payload in a message envelope",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := parseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			f := frame.Frame{Header: frame.Header{Type: msgType}, Payload: payload}
			if err := frame.WriteFrame(&buf, f, a.cfg.Frame); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(buf.Bytes()))
			return nil
		},
	}
	cmd.Flags().StringVar(&msgType, "name", "", "message type name (at most 12 ASCII characters)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// payloadShape resolves the payload shape from --type or the configured
// payloads. A nil shape leaves the payload as hex.
func (a *app) payloadShape(msgType, expr string) (shape.Shape, error) {
	if expr != "" {
		return shape.Parse(expr)
	}
	reg, err := a.cfg.Registry()
	if err != nil {
		return nil, err
	}
	s, ok := reg.Lookup(msgType)
	if !ok {
		return nil, nil
	}
	return s, nil
}
