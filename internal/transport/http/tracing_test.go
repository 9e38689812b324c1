package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newRecordingProvider(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, recorder
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestTraceNamesSpanByRouteAndCarriesRequestID(t *testing.T) {
	tp, recorder := newRecordingProvider(t)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /activities/{activity}/signup", func(w http.ResponseWriter, r *http.Request) {
		require.True(t, trace.SpanContextFromContext(r.Context()).IsValid())
		w.WriteHeader(http.StatusOK)
	})
	h := Chain(mux, RequestID, Trace(tp), Metrics)

	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=a@example.com", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]
	require.Equal(t, "POST /activities/{activity}/signup", span.Name())
	require.Equal(t, trace.SpanKindServer, span.SpanKind())

	got := attrs(span)
	require.Equal(t, "req-42", got["signup.request_id"].AsString())
	require.Equal(t, "POST /activities/{activity}/signup", got["http.route"].AsString())
	require.Equal(t, int64(http.StatusOK), got["http.response.status_code"].AsInt64())
}

func TestTraceMarksServerErrors(t *testing.T) {
	tp, recorder := newRecordingProvider(t)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), RequestID, Trace(tp))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/activities", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Error, spans[0].Status().Code)
	require.Equal(t, http.MethodGet, spans[0].Name(), "unmatched requests keep the method name")
}

func TestAccessLogIncludesTraceID(t *testing.T) {
	tp, recorder := newRecordingProvider(t)
	core, logs := observer.New(zapcore.InfoLevel)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}),
		RequestID, Trace(tp), AccessLog(zap.New(core)))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/activities", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	require.Equal(t, spans[0].SpanContext().TraceID().String(), entries[0].ContextMap()["trace_id"])
}
