package utils

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "popular-vote-api"

// TraceDatabaseOperation opens a span for one statement. The finisher
// stamps the elapsed time and ends the span.
func TraceDatabaseOperation(ctx context.Context, operation, table string) (context.Context, trace.Span, func()) {
	start := time.Now()
	ctx, span := otel.Tracer(tracerName).Start(ctx, "db."+operation, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	))
	return ctx, span, func() {
		elapsed := time.Since(start)
		span.SetAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.String("duration", elapsed.String()),
		)
		span.End()
	}
}

// step starts a child span named after a request step
func step(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("step.name", name))
	return otel.Tracer(tracerName).Start(ctx, "step."+name, trace.WithAttributes(attrs...))
}

func TraceCacheGet(ctx context.Context, key string) (context.Context, trace.Span) {
	return step(ctx, "cache_get", attribute.String("cache.key", key))
}

func TraceCacheSet(ctx context.Context, key string, ttl time.Duration) (context.Context, trace.Span) {
	return step(ctx, "cache_set", attribute.String("cache.key", key), attribute.String("cache.ttl", ttl.String()))
}

func TraceCacheInvalidation(ctx context.Context, key string) (context.Context, trace.Span) {
	return step(ctx, "cache_invalidation", attribute.String("cache.key", key))
}

// TraceBusinessLogic wraps a multi-step domain operation such as a vote cast
func TraceBusinessLogic(ctx context.Context, logicType string) (context.Context, trace.Span) {
	return step(ctx, "business_logic", attribute.String("logic.type", logicType))
}

// TraceExternalService wraps a call leaving the process: identity
// provider, JWKS endpoint, readiness pings.
func TraceExternalService(ctx context.Context, serviceName, operation string) (context.Context, trace.Span) {
	return step(ctx, "external_service",
		attribute.String("service.name", serviceName),
		attribute.String("service.operation", operation))
}

// RecordErrorInSpan records err and marks the span failed
func RecordErrorInSpan(span trace.Span, err error, context map[string]interface{}) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	for k, v := range context {
		span.SetAttributes(toAttribute(k, v))
	}
}

func AddSpanAttribute(span trace.Span, key string, value interface{}) {
	span.SetAttributes(toAttribute(key, value))
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch val := value.(type) {
	case string:
		return attribute.String(key, val)
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case float64:
		return attribute.Float64(key, val)
	default:
		return attribute.String(key, "unknown_type")
	}
}
