package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/uniformco/backoffice/internal/infrastructure/config"
)

// LogExporter ships zap records to the same OTLP collector as traces.
// Records logged with a span in their context carry its trace id.
type LogExporter struct {
	provider *sdklog.LoggerProvider
	name     string
}

// NewLogExporter returns a disabled exporter unless both tracing and log
// export are switched on.
func NewLogExporter(ctx context.Context, cfg config.TracingConfig, serviceName, version string) (*LogExporter, error) {
	le := &LogExporter{name: serviceName}
	if !cfg.Enabled || !cfg.ExportLogs {
		return le, nil
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp log exporter: %w", err)
	}
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create log resource: %w", err)
	}
	le.provider = sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	return le, nil
}

func newLogExporterWith(provider *sdklog.LoggerProvider, name string) *LogExporter {
	return &LogExporter{provider: provider, name: name}
}

// Enabled reports whether records are exported
func (le *LogExporter) Enabled() bool {
	return le != nil && le.provider != nil
}

// Attach tees l into the exporter for records at or above level. A disabled
// exporter returns l unchanged.
func (le *LogExporter) Attach(l *zap.Logger, level zapcore.Level) *zap.Logger {
	if !le.Enabled() {
		return l
	}
	var otel zapcore.Core = otelzap.NewCore(le.name, otelzap.WithLoggerProvider(le.provider))
	if filtered, err := zapcore.NewIncreaseLevelCore(otel, level); err == nil {
		otel = filtered
	}
	return l.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, otel)
	}))
}

// Shutdown flushes buffered records, waiting at most ten seconds
func (le *LogExporter) Shutdown(ctx context.Context) error {
	if !le.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := le.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown log exporter: %w", err)
	}
	return nil
}
