package engine

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nightdrive/showcase/internal/engine"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
