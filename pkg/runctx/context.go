package runctx

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ContextKey string

const (
	RunIDKey ContextKey = "run_id"
	StageKey ContextKey = "stage"
)

// Start tags ctx with a fresh run id and the given stage name.
func Start(ctx context.Context, stage string) context.Context {
	ctx = context.WithValue(ctx, RunIDKey, uuid.NewString())
	return context.WithValue(ctx, StageKey, stage)
}

// Logger returns baseLogger annotated with whatever run information ctx carries.
func Logger(ctx context.Context, baseLogger *zap.Logger) *zap.Logger {
	logger := baseLogger

	if runID := RunID(ctx); runID != "" {
		logger = logger.With(zap.String(string(RunIDKey), runID))
	}
	if stage, ok := ctx.Value(StageKey).(string); ok {
		logger = logger.With(zap.String(string(StageKey), stage))
	}

	return logger
}

func RunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}
