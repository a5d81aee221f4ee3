package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/danmuck/ensiwire/internal/config"
	"github.com/danmuck/ensiwire/internal/logging"
	"github.com/danmuck/ensiwire/internal/observability"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

// app carries state shared by subcommands after PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string
	metrics    bool
	cfg        config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: config.DefaultConfig()}
	root := &cobra.Command{
		Use:   "wirectl",
		Short: "ensicoin wire codec tool",
		Long: fmt.Sprintf(`wirectl (v%s)

Encode, decode and frame ensicoin wire values, and derive wire contract
methods for Go record types.`, Version),
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.report,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to wirectl.toml")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error, off)")
	root.PersistentFlags().BoolVar(&a.metrics, "metrics", false, "print codec metrics to stderr after the command")

	root.AddCommand(
		newEncodeCmd(),
		newDecodeCmd(),
		newFrameCmd(a),
		newGenCmd(),
		newConfigCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version number of wirectl",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "wirectl v%s\n", Version)
			},
		},
	)
	return root
}

// setup loads .env files, the config file and logging, in that order; the
// --log-level flag wins over ENSIWIRE_LOG_LEVEL, which wins over the file.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	logCfg := a.cfg.LoggingConfig()
	logging.ApplyEnvOverrides(&logCfg)
	if a.logLevel != "" {
		lvl, ok := logging.ParseLevel(a.logLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", a.logLevel)
		}
		logCfg.Level = lvl
	}
	logCfg.Out = cmd.ErrOrStderr()
	logging.Apply(logCfg)
	return nil
}

func (a *app) report(cmd *cobra.Command, args []string) error {
	if !a.metrics {
		return nil
	}
	return observability.WriteMetrics(cmd.ErrOrStderr())
}

// parseHex accepts an optional 0x prefix and ignores whitespace.
func parseHex(raw string) ([]byte, error) {
	s := strings.Join(strings.Fields(raw), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return b, nil
}
