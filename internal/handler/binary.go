// internal/handler/binary.go
package handler

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/YaganovValera/mexc-bookticker/internal/metrics"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
)

// binaryProcessor разбирает бинарные пуши. Без декодера сообщает только
// длину кадра; ошибка декодирования печатается и не прерывает поток.
type binaryProcessor struct {
	out io.Writer
	dec Decoder
	log *logger.Logger
}

// NewBinaryProcessor создаёт обработчик бинарных кадров.
// dec == nil переводит обработчик в режим отчёта о длине кадра.
func NewBinaryProcessor(out io.Writer, dec Decoder, log *logger.Logger) Processor {
	return &binaryProcessor{out: out, dec: dec, log: log.Named("binary")}
}

func (bp *binaryProcessor) Process(ctx context.Context, raw mexc.RawMessage) error {
	if raw.Type != mexc.FrameBinary {
		return nil
	}

	ctx, span := otel.Tracer("bookticker/handler/binary").Start(ctx, "Process")
	defer span.End()
	metrics.EventsTotal.Inc()
	start := time.Now()

	if bp.dec == nil {
		_, err := fmt.Fprintf(bp.out, "[binary] %d bytes (protobuf). Install and generate proto classes to decode.\n", len(raw.Data))
		return err
	}

	pd, err := bp.dec.Decode(raw.Data)
	if err != nil {
		metrics.DecodeErrors.Inc()
		span.RecordError(err)
		bp.log.WithContext(ctx).Error("decode push failed",
			zap.Int("bytes", len(raw.Data)),
			zap.Error(err),
		)
		_, werr := fmt.Fprintf(bp.out, "[error] Failed to decode protobuf message: %v\n", err)
		return werr
	}

	if bt := pd.BookTicker; bt.HasQuotes() {
		if _, err := fmt.Fprintf(bp.out, "[bookTicker] %s | bid %s x %s  ask %s x %s  (channel=%s)\n",
			pd.Symbol, bt.BidPrice, bt.BidQuantity, bt.AskPrice, bt.AskQuantity, pd.Channel); err != nil {
			return err
		}
	} else {
		metrics.DecodeFallbacks.Inc()
		if _, err := fmt.Fprintf(bp.out, "[protobuf] channel=%s symbol=%s sendtime=%d\n",
			pd.Channel, pd.Symbol, pd.SendTime); err != nil {
			return err
		}
	}

	metrics.HandleLatency.Observe(time.Since(start).Seconds())
	return nil
}
