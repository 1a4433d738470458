// internal/handler/text.go
package handler

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"

	"github.com/YaganovValera/mexc-bookticker/internal/metrics"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
)

// textProcessor печатает текстовые кадры (ack-и и ошибки сервера) как есть.
type textProcessor struct {
	out io.Writer
	log *logger.Logger
}

func NewTextProcessor(out io.Writer, log *logger.Logger) Processor {
	return &textProcessor{out: out, log: log.Named("text")}
}

func (tp *textProcessor) Process(ctx context.Context, raw mexc.RawMessage) error {
	if raw.Type != mexc.FrameText {
		return nil
	}

	_, span := otel.Tracer("bookticker/handler/text").Start(ctx, "Process")
	defer span.End()
	metrics.EventsTotal.Inc()

	_, err := fmt.Fprintf(tp.out, "[text] %s\n", raw.Data)
	return err
}
