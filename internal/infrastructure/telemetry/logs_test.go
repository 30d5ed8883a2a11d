package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// memoryExporter keeps exported records for assertions
type memoryExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryExporter) ForceFlush(context.Context) error { return nil }

func (e *memoryExporter) bodies() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.records))
	for _, r := range e.records {
		out = append(out, r.Body().AsString())
	}
	return out
}

func TestNewLogExporter_DisabledUnlessBothFlagsSet(t *testing.T) {
	for _, cfg := range []config.TracingConfig{
		{Enabled: false, ExportLogs: true},
		{Enabled: true, ExportLogs: false, Endpoint: "localhost:14317"},
	} {
		le, err := NewLogExporter(context.Background(), cfg, "backoffice", "test")
		require.NoError(t, err)
		assert.False(t, le.Enabled())

		l := zap.NewNop()
		assert.Same(t, l, le.Attach(l, zapcore.InfoLevel))
		assert.NoError(t, le.Shutdown(context.Background()))
	}
}

func TestLogExporter_Attach(t *testing.T) {
	exp := &memoryExporter{}
	provider := sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exp)))
	le := newLogExporterWith(provider, "backoffice")

	core, local := observer.New(zapcore.DebugLevel)
	log := le.Attach(zap.New(core), zapcore.InfoLevel)

	log.Debug("cache miss")
	log.Info("order created", zap.String("order_number", "ORD2026100001"))
	log.Warn("stock low")

	assert.Equal(t, 3, local.Len())
	assert.Equal(t, []string{"order created", "stock low"}, exp.bodies())
	require.NoError(t, le.Shutdown(context.Background()))
}
