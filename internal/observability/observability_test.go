package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestRepoLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l := NewRepoLogger("posts", logger)

	l.LogCreate(context.Background(), map[string]any{"id": 7})
	l.LogError(context.Background(), errors.New("boom"), "update")

	out := buf.String()
	assert.Contains(t, out, "repository create")
	assert.Contains(t, out, "table=posts")
	assert.Contains(t, out, "id=7")
	assert.Contains(t, out, "error=boom")
}

func TestObserveAdminAction(t *testing.T) {
	before := testutil.ToFloat64(AdminActions.WithLabelValues("test.admin", "create", "error"))
	ObserveAdminAction("test.admin", "create", time.Now(), errors.New("failed"))
	after := testutil.ToFloat64(AdminActions.WithLabelValues("test.admin", "create", "error"))
	assert.Equal(t, before+1, after)
}

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(TracingConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, Tracer())
}

func TestEndSpan_RecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := tp.Tracer("test").Start(context.Background(), "op")

	EndSpan(span, errors.New("broken"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, "broken", ended[0].Status().Description)
}
