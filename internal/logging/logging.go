// Package logging builds the process logger and logs bus events with it.
package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/bookgraph/internal/eventbus"
	events "github.com/hanpama/bookgraph/internal/events"
	reqid "github.com/hanpama/bookgraph/internal/reqid"
)

// New builds a development logger writing to stdout at debug level when debug is
// set, and a production JSON logger otherwise.
func New(debug bool) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error
	if debug {
		z := zap.NewDevelopmentConfig()
		z.OutputPaths = []string{"stdout"}
		logger, err = z.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// Subscribe logs HTTP requests, operations and store appends published on the
// global bus. The returned function removes the subscriptions.
func Subscribe(logger *zap.Logger) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			logger.Info("http request",
				requestID(ctx),
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration))
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.OperationStart) {
			logger.Debug("operation started",
				requestID(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.String("query", e.Query))
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.OperationFinish) {
			fields := []zap.Field{
				requestID(ctx),
				zap.String("operation", e.OperationName),
				zap.String("type", e.OperationType),
				zap.Int("errors", len(e.Errors)),
				zap.Duration("duration", e.Duration),
			}
			if len(e.Errors) > 0 {
				logger.Warn("operation failed", append(fields, zap.Errors("error_list", e.Errors))...)
				return
			}
			logger.Info("operation finished", fields...)
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.AuthorAdded) {
			logger.Info("author added", requestID(ctx), zap.Int("id", e.ID), zap.String("name", e.Name))
		}),
		eventbus.Subscribe(func(ctx context.Context, e events.BookAdded) {
			logger.Info("book added", requestID(ctx),
				zap.Int("id", e.ID), zap.String("name", e.Name), zap.Int("author_id", e.AuthorID))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func requestID(ctx context.Context) zap.Field {
	if id, ok := reqid.FromContext(ctx); ok {
		return zap.String("request_id", id)
	}
	return zap.Skip()
}
