package httpapi

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

const tracerScope = "github.com/riskibarqy/fantaqb/internal/interfaces/httpapi"

// startSpan opens "httpapi.Handler.<op>" under the request span, on the
// request span's own provider. Requests that are not traced get the
// non-recording span from ctx back, so health probes create no root spans.
func startSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	return parent.TracerProvider().Tracer(tracerScope).Start(ctx, "httpapi.Handler."+op)
}
