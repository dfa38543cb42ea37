package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	shutdown := Setup("detailing-desk")
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithEndpoint(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "127.0.0.1:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "true")

	shutdown := Setup("detailing-desk")
	assert.NotNil(t, shutdown)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
