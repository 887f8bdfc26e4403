package telemetry

import (
	"context"
	"io"
	"testing"

	"clinic-scheduling-api/config"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
)

func TestSetupDisabled(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	shutdown, err := Setup(context.Background(), config.TelemetryConfig{Enabled: false}, log)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}

	fields := otel.GetTextMapPropagator().Fields()
	found := false
	for _, f := range fields {
		if f == "traceparent" {
			found = true
		}
	}
	if !found {
		t.Errorf("trace context propagator not installed: %v", fields)
	}
}
