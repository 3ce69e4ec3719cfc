package infra

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/tnqbao/gau-photo-share/config"
)

type LoggerClient struct {
	logger   *slog.Logger
	provider *sdklog.LoggerProvider
}

// InitLoggerClient logs JSON to stdout and ships the same records over OTLP.
// When the exporter cannot be built it keeps logging to stdout only.
func InitLoggerClient(cfg *config.EnvConfig) *LoggerClient {
	stdout := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})

	opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Grafana.OTLPEndpoint)}
	if cfg.Environment.Mode != "production" {
		opts = append(opts, otlploghttp.WithInsecure())
	}

	exporter, err := otlploghttp.New(context.Background(), opts...)
	if err != nil {
		log.Printf("Warning: OTLP log exporter unavailable: %v (logging to stdout only)", err)
		return NewLoggerClientWithHandler(stdout)
	}

	res, err := newResource(cfg)
	if err != nil {
		log.Printf("Warning: failed to build OTel resource: %v", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)
	global.SetLoggerProvider(provider)

	otelHandler := otelslog.NewHandler(cfg.Grafana.ServiceName, otelslog.WithLoggerProvider(provider))

	return &LoggerClient{
		logger:   slog.New(teeHandler{stdout, otelHandler}),
		provider: provider,
	}
}

func NewLoggerClientWithHandler(handler slog.Handler) *LoggerClient {
	return &LoggerClient{logger: slog.New(handler)}
}

func (l *LoggerClient) DebugWithContextf(ctx context.Context, format string, args ...any) {
	l.logger.DebugContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) InfoWithContextf(ctx context.Context, format string, args ...any) {
	l.logger.InfoContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) WarningWithContextf(ctx context.Context, format string, args ...any) {
	l.logger.WarnContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) ErrorWithContextf(ctx context.Context, err error, format string, args ...any) {
	if err != nil {
		l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...), slog.String("error", err.Error()))
		return
	}
	l.logger.ErrorContext(ctx, fmt.Sprintf(format, args...))
}

func (l *LoggerClient) Shutdown(ctx context.Context) error {
	if l.provider == nil {
		return nil
	}
	return l.provider.Shutdown(ctx)
}

// teeHandler fans a record out to every handler that accepts its level.
type teeHandler []slog.Handler

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range t {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	out := make(teeHandler, len(t))
	for i, h := range t {
		out[i] = h.WithGroup(name)
	}
	return out
}
