package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/ensiwire/internal/wiregen"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newGenCmd() *cobra.Command {
	var (
		input      string
		output     string
		typeNames  []string
		encodeOnly bool
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Derive EncodeTo/DecodeFrom for record structs",
		Long: `Derive EncodeTo/DecodeFrom for record structs.

Structs are selected with --types or by a //wire:record line in their doc
comment. Fields are encoded in declaration order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				input = os.Getenv("GOFILE")
			}
			if input == "" {
				return fmt.Errorf("--input is required outside go generate")
			}
			src, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			out, err := wiregen.Generate(input, src, wiregen.Options{
				Types:      typeNames,
				EncodeOnly: encodeOnly,
			})
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultGenOutput(input)
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			log.Info().Str("input", input).Str("output", output).Msg("wirectl.gen wrote records")
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Go source file (defaults to $GOFILE)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (defaults to <input>_wire.go)")
	cmd.Flags().StringSliceVar(&typeNames, "types", nil, "struct names to derive (defaults to //wire:record structs)")
	cmd.Flags().BoolVar(&encodeOnly, "encode-only", false, "skip DecodeFrom generation")
	return cmd
}

func defaultGenOutput(input string) string {
	dir, base := filepath.Split(input)
	return filepath.Join(dir, strings.TrimSuffix(base, ".go")+"_wire.go")
}
