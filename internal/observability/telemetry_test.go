package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracer_NoopWithoutInit(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "world.flood")
	defer span.End()
	assert.False(t, span.SpanContext().IsValid())
}

func TestInitTelemetry_InstallsProvider(t *testing.T) {
	shutdown, err := InitTelemetry(context.Background(), "floodworld-test", "127.0.0.1:4318")
	require.NoError(t, err)

	// незавершённый спан не попадает в экспорт
	_, span := Tracer().Start(context.Background(), "world.generate")
	assert.True(t, span.SpanContext().IsValid())

	assert.NoError(t, shutdown(context.Background()))
}
