package observability

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/danmuck/ensiwire/internal/protocol/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var (
	registerOnce sync.Once

	frames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ensiwire",
			Subsystem: "frame",
			Name:      "total",
			Help:      "Frames read or written.",
		},
		[]string{"direction", "type", "success"},
	)
	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ensiwire",
			Subsystem: "codec",
			Name:      "decodes_total",
			Help:      "Shape decodes by result kind.",
		},
		[]string{"shape", "result"},
	)
	decodedBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ensiwire",
			Subsystem: "codec",
			Name:      "decoded_bytes_total",
			Help:      "Bytes consumed by successful shape decodes.",
		},
		[]string{"shape"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(frames, decodes, decodedBytes)
	})
}

// RejectedFrameType labels frames whose header failed validation; their type
// field is untrusted.
const RejectedFrameType = "invalid"

func RecordFrame(direction, msgType string, success bool) {
	RegisterMetrics()
	frames.WithLabelValues(direction, msgType, strconv.FormatBool(success)).Inc()
}

func RecordDecode(shape string, consumed int, err error) {
	RegisterMetrics()
	decodes.WithLabelValues(shape, ResultKind(err)).Inc()
	if err == nil {
		decodedBytes.WithLabelValues(shape).Add(float64(consumed))
	}
}

// ResultKind maps a decode error to a metrics label.
func ResultKind(err error) string {
	var short wire.ShortBufferError
	var invalid wire.InvalidStringError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &short):
		return "short_buffer"
	case errors.As(err, &invalid):
		return "invalid_string"
	default:
		return "error"
	}
}

// WriteMetrics writes the ensiwire metric families in the Prometheus text
// exposition format.
func WriteMetrics(w io.Writer) error {
	RegisterMetrics()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "ensiwire_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
