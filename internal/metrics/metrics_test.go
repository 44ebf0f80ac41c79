package metrics

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	eventbus "github.com/hanpama/swgraph/internal/eventbus"
	events "github.com/hanpama/swgraph/internal/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })
	reg := prometheus.NewRegistry()
	m := New("test", reg)
	t.Cleanup(m.Subscribe())
	return m, reg
}

func TestRecordHTTPRequest(t *testing.T) {
	m, _ := newTestMetrics(t)
	req := httptest.NewRequest("POST", "/graphql", nil)

	eventbus.Publish(context.Background(), events.HTTPStart{Request: req})
	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
	eventbus.Publish(context.Background(), events.HTTPFinish{Request: req, Status: 200, Duration: time.Millisecond})

	require.Equal(t, 0.0, testutil.ToFloat64(m.HTTPRequestsInFlight))
	require.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "200")))
}

func TestRecordOperations(t *testing.T) {
	m, _ := newTestMetrics(t)
	ctx := context.Background()

	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "query"})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "query", Errors: []error{errors.New("x")}})
	eventbus.Publish(ctx, events.GraphQLFinish{OperationType: "query", Cancelled: true})

	require.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("query", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("query", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("query", "cancelled")))
}

func TestRecordFetchesAndCache(t *testing.T) {
	m, _ := newTestMetrics(t)
	ctx := context.Background()

	eventbus.Publish(ctx, events.ResolveFinish{ObjectType: "Query", Field: "droid"})
	eventbus.Publish(ctx, events.ResolveFinish{ObjectType: "Query", Field: "droid", NotFound: true})
	eventbus.Publish(ctx, events.ResolveFinish{ObjectType: "Droid", Field: "friends", Err: errors.New("boom")})
	eventbus.Publish(ctx, events.CacheLookup{Entity: "droid", Hit: true})
	eventbus.Publish(ctx, events.CacheLookup{Entity: "droid"})

	require.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("Query.droid", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("Query.droid", "not_found")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.FetchesTotal.WithLabelValues("Droid.friends", "error")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("droid", "hit")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("droid", "miss")))
}

func TestHandler(t *testing.T) {
	m, reg := newTestMetrics(t)
	m.OperationsTotal.WithLabelValues("query", "success").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), `test_graphql_operations_total{status="success",type="query"} 1`))
}
