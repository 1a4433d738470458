// internal/handler/dispatcher.go
package handler

import (
	"context"

	"go.uber.org/zap"

	"go.opentelemetry.io/otel"

	"github.com/YaganovValera/mexc-bookticker/internal/metrics"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
)

var dispatcherTracer = otel.Tracer("bookticker/handler/dispatcher")

// DispatchRouter маршрутизирует входящие события по типу кадра.
// Тип кадра авторитетен: текст никогда не попадает в декодер.
type DispatchRouter struct {
	processors map[string]Processor
	log        *logger.Logger
}

// NewRouter создает маршрутизатор с логгером.
func NewRouter(log *logger.Logger) *DispatchRouter {
	return &DispatchRouter{
		processors: make(map[string]Processor),
		log:        log.Named("router"),
	}
}

// Register добавляет обработчик для заданного типа кадра.
func (r *DispatchRouter) Register(frameType string, proc Processor) {
	r.processors[frameType] = proc
}

// Run запускает основной цикл маршрутизации. Завершается при закрытии in.
func (r *DispatchRouter) Run(ctx context.Context, in <-chan mexc.RawMessage) error {
	ctx, span := dispatcherTracer.Start(ctx, "DispatchRouter.Run")
	defer span.End()

	for msg := range in {
		proc, ok := r.processors[msg.Type]
		if !ok {
			metrics.UnsupportedEvents.Inc()
			r.log.WithContext(ctx).Debug("unsupported frame type",
				zap.String("frame_type", msg.Type),
			)
			continue
		}

		if err := proc.Process(ctx, msg); err != nil {
			r.log.WithContext(ctx).Error("frame processing failed",
				zap.String("frame_type", msg.Type),
				zap.Error(err),
			)
		}
	}

	return nil
}
