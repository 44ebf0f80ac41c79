// Package logging builds the process logger and logs server events.
package logging

import (
	"context"
	"fmt"

	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	reqid "github.com/hanpama/swgraph/internal/reqid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	// Level is a zap level name such as "debug" or "info".
	Level string
	// Development switches to the console encoder with colored levels.
	Development bool
}

func New(opt Options) (*zap.Logger, error) {
	var config zap.Config
	if opt.Development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if opt.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(opt.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := config.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// ContextFields returns the request id and trace id carried by ctx.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if rid, ok := reqid.FromContext(ctx); ok {
		fields = append(fields, zap.String("request_id", rid))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
	}
	return fields
}

// Subscribe logs HTTP requests and GraphQL operations at info and field
// fetches at debug. Failed fetches are logged at warn.
func Subscribe(logger *zap.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			logger.Info("http request",
				append(ContextFields(ctx),
					zap.String("method", e.Request.Method),
					zap.String("path", e.Request.URL.Path),
					zap.Int("status", e.Status),
					zap.Duration("duration", e.Duration),
				)...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.GraphQLFinish) {
			fields := append(ContextFields(ctx),
				zap.String("operation_name", e.OperationName),
				zap.String("operation_type", e.OperationType),
				zap.Int("error_count", len(e.Errors)),
				zap.Duration("duration", e.Duration),
			)
			if e.Cancelled {
				logger.Info("graphql operation cancelled", fields...)
				return
			}
			logger.Info("graphql operation", fields...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
			fields := append(ContextFields(ctx),
				zap.String("field", e.ObjectType+"."+e.Field),
				zap.Bool("not_found", e.NotFound),
				zap.Duration("duration", e.Duration),
			)
			if e.Err != nil {
				logger.Warn("fetch failed", append(fields, zap.Error(e.Err))...)
				return
			}
			logger.Debug("fetch", fields...)
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
