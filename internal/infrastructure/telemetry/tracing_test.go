package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TracingConfig{Endpoint: "localhost:14317"}, "backoffice", "test", zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, tp.Enabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	// the grpc exporter connects lazily, so no collector is needed
	tp, err := NewTracerProvider(context.Background(), config.TracingConfig{
		Enabled:       true,
		Endpoint:      "localhost:14317",
		SamplingRatio: 0.5,
		Insecure:      true,
	}, "backoffice", "test", zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.Enabled())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = tp.Shutdown(ctx)
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestTraceDB_RecordsQuerySpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, TraceDB(db, "sqlite", false, otelgorm.WithTracerProvider(provider)))

	tracer := provider.Tracer("test")
	ctx, span := tracer.Start(context.Background(), "GET /api/v1/products")
	var one int
	require.NoError(t, db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error)
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, span.SpanContext().TraceID(), spans[0].SpanContext().TraceID())
	assert.Equal(t, span.SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestTraceDB_Registers(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, TraceDB(db, "sqlite", false))
	// a second registration under the same plugin name is rejected by gorm
	assert.Error(t, TraceDB(db, "sqlite", false))
}
