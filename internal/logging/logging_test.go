package logging

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	reqid "github.com/hanpama/swgraph/internal/reqid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	logger, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = New(Options{Level: "loud"})
	require.Error(t, err)
}

func TestSubscribe(t *testing.T) {
	eventbus.Use(eventbus.New())
	defer eventbus.Use(nil)
	core, logs := observer.New(zapcore.DebugLevel)
	unsubscribe := Subscribe(zap.New(core))
	defer unsubscribe()

	ctx := reqid.WithID(context.Background(), "r1")
	eventbus.Publish(ctx, events.ResolveFinish{ObjectType: "Query", Field: "droid"})
	eventbus.Publish(ctx, events.ResolveFinish{ObjectType: "Droid", Field: "friends", Err: errors.New("boom")})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "query", Errors: []error{errors.New("x")}})
	eventbus.Publish(ctx, events.HTTPFinish{Request: httptest.NewRequest("POST", "/graphql", nil), Status: 200})

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	require.Equal(t, "fetch", entries[0].Message)
	require.Equal(t, zapcore.DebugLevel, entries[0].Level)
	require.Equal(t, "fetch failed", entries[1].Message)
	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, int64(1), entries[2].ContextMap()["error_count"])
	require.Equal(t, "http request", entries[3].Message)
	for _, e := range entries {
		require.Equal(t, "r1", e.ContextMap()["request_id"])
	}
}
