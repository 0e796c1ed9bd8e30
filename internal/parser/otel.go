package parser

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/rcviewer/rclog/internal/parser"

var bgCtx = context.Background()

// Counters from the global OTel meter (no-op when no provider is set up).
var (
	linesDecoded metric.Int64Counter
	linesSkipped metric.Int64Counter
	snapshots    metric.Int64Counter
)

func init() {
	m := otel.Meter(instrumentationName)

	linesDecoded, _ = m.Int64Counter(
		"parser.lines.decoded",
		metric.WithDescription("Total log lines decoded"),
	)
	linesSkipped, _ = m.Int64Counter(
		"parser.lines.skipped",
		metric.WithDescription("Total log lines skipped as undecodable"),
	)
	snapshots, _ = m.Int64Counter(
		"parser.snapshots.committed",
		metric.WithDescription("Total world snapshots committed"),
	)
}
