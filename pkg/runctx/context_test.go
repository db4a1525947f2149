package runctx

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStart_AssignsRunID(t *testing.T) {
	ctx := Start(context.Background(), "scrape")

	_, err := uuid.Parse(RunID(ctx))
	require.NoError(t, err)
	assert.NotEqual(t, RunID(ctx), RunID(Start(context.Background(), "scrape")))
}

func TestRunID_Empty(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))
}

func TestLogger_AddsFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := Start(context.Background(), "ingest")

	Logger(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, RunID(ctx), fields["run_id"])
	assert.Equal(t, "ingest", fields["stage"])
}
