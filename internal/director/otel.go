package director

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nightdrive/showcase/internal/director"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
