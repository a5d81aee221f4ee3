package testlog

import (
	"testing"

	"github.com/danmuck/ensiwire/internal/logging"
	"github.com/rs/zerolog/log"
)

// Start configures test logging once and brackets t with start/done lines.
func Start(t testing.TB) {
	t.Helper()
	logging.ConfigureTests()
	log.Info().Str("test", t.Name()).Msg("start")
	t.Cleanup(func() {
		log.Debug().Str("test", t.Name()).Bool("failed", t.Failed()).Msg("done")
	})
}
