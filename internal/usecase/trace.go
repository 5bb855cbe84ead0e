package usecase

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var fetchTracer = otel.Tracer("clanwarfare-snapshot/internal/usecase")
var fetchNoopSpan = trace.SpanFromContext(context.Background())

func startFetchSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if strings.TrimSpace(name) == "" {
		return ctx, fetchNoopSpan
	}
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, fetchNoopSpan
	}
	return fetchTracer.Start(ctx, name)
}
