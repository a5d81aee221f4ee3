package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/danmuck/ensiwire/internal/observability"
	"github.com/danmuck/ensiwire/internal/protocol/shape"
	"github.com/danmuck/ensiwire/internal/protocol/wire"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "encode VALUE_JSON",
		Short: "Encode a JSON value under a type expression and print hex",
		Example: `  wirectl encode --type varuint 10795
  wirectl encode --type 'seq<string>' '["a","bc"]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shape.Parse(expr)
			if err != nil {
				return err
			}
			dec := json.NewDecoder(strings.NewReader(args[0]))
			dec.UseNumber()
			var v any
			if err := dec.Decode(&v); err != nil {
				return fmt.Errorf("invalid json value: %w", err)
			}
			b, err := shape.EncodeValue(s, v)
			if err != nil {
				return err
			}
			log.Debug().Str("shape", s.String()).Int("bytes", len(b)).Msg("wirectl.encode")
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
	cmd.Flags().StringVarP(&expr, "type", "t", "", "type expression, e.g. seq<u8>")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	var expr string
	var partial bool
	cmd := &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode hex bytes under a type expression and print JSON",
		Example: `  wirectl decode --type varuint fd2a2b
  wirectl decode --type 'seq<seq<u8>>' 0202 2a2b 012c`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := shape.Parse(expr)
			if err != nil {
				return err
			}
			b, err := parseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			v, consumed, err := decodeShape(s, b, partial)
			observability.RecordDecode(s.String(), consumed, err)
			if err != nil {
				log.Error().Err(err).Str("shape", s.String()).Msg("wirectl.decode failed")
				return err
			}
			return printJSON(cmd, v)
		},
	}
	cmd.Flags().StringVarP(&expr, "type", "t", "", "type expression, e.g. seq<u8>")
	cmd.Flags().BoolVar(&partial, "partial", false, "allow trailing bytes after the value")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func decodeShape(s shape.Shape, b []byte, partial bool) (any, int, error) {
	if partial {
		r := wire.NewReader(b)
		v, err := s.Decode(r)
		return v, r.Offset(), err
	}
	v, err := shape.DecodeAll(s, b)
	return v, len(b), err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	return enc.Encode(v)
}
