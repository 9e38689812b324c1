package httptransport

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"example.com/signup/internal/tracing"
)

// Trace opens a server span per request, continuing any incoming W3C trace
// context. It must sit inside RequestID so the id can be attached.
func Trace(tp trace.TracerProvider) Middleware {
	tracer := tp.Tracer("example.com/signup/internal/transport/http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer.Start(ctx, r.Method,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					tracing.MethodKey.String(r.Method),
					tracing.RequestIDKey.String(RequestIDFromContext(r.Context())),
				),
			)
			defer span.End()

			req := r.WithContext(ctx)
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, req)

			// The mux records the matched pattern on the request it was handed.
			if req.Pattern != "" {
				span.SetName(req.Pattern)
				span.SetAttributes(tracing.RouteKey.String(req.Pattern))
			}
			span.SetAttributes(tracing.StatusKey.Int(rec.status))
			if rec.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(rec.status))
			}
		})
	}
}
