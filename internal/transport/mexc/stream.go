// internal/transport/mexc/stream.go
package mexc

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
)

var tracer = otel.Tracer("bookticker/transport/mexc")

// StreamWithMetrics wraps the raw connector with tracing and metrics.
func StreamWithMetrics(ctx context.Context, conn mexc.StreamConnector) (<-chan mexc.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "mexc.stream")
	defer span.End()

	stream, err := conn.Stream(ctx)
	if err != nil {
		IncError("connect")
		span.RecordError(err)
		return nil, err
	}
	IncConnect("ok")

	out := make(chan mexc.RawMessage, cap(stream))
	go func() {
		defer close(out)
		for msg := range stream {
			_, span := tracer.Start(ctx, "mexc.read")
			span.SetAttributes(attribute.String("frame_type", msg.Type))
			IncMessage(msg.Type)
			select {
			case out <- msg:
			default:
				IncDrop(msg.Type)
			}
			span.End()
		}
	}()
	return out, nil
}
