// internal/app/listener.go
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/YaganovValera/mexc-bookticker/internal/config"
	"github.com/YaganovValera/mexc-bookticker/internal/handler"
	internalhttp "github.com/YaganovValera/mexc-bookticker/internal/http"
	"github.com/YaganovValera/mexc-bookticker/internal/metrics"
	transportmexc "github.com/YaganovValera/mexc-bookticker/internal/transport/mexc"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
)

// Run собирает и запускает сервис: WS-коннектор, маршрутизатор кадров
// и HTTP-сервер метрик. Блокирует до отмены ctx или фатальной ошибки.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	metrics.Register(nil)
	transportmexc.RegisterMetrics(nil)

	// 1) Коннектор с единственным каналом подписки.
	channel := mexc.BookTickerChannel(cfg.MEXC.Symbol, cfg.MEXC.Interval)
	wsConn, err := mexc.NewConnector(mexc.Config{
		URL:              cfg.MEXC.WSURL,
		Channels:         []string{channel},
		BufferSize:       cfg.MEXC.BufferSize,
		PingInterval:     cfg.MEXC.PingInterval,
		SubscribeTimeout: cfg.MEXC.SubscribeTimeout,
		BackoffConfig:    cfg.MEXC.Backoff,
	}, log)
	if err != nil {
		return fmt.Errorf("mexc connector init: %w", err)
	}
	defer shutdownSafe(ctx, "ws-connector", wsConn.Close, log)

	// 2) Возможность декодирования резолвится один раз при старте,
	// а не проверяется на каждом кадре.
	var dec handler.Decoder
	if cfg.Decode.Enabled {
		dec = handler.ProtoDecoder{}
	}

	out := os.Stdout
	router := handler.NewRouter(log)
	router.Register(mexc.FrameOpen, handler.NewOpenProcessor(out, log))
	router.Register(mexc.FrameText, handler.NewTextProcessor(out, log))
	router.Register(mexc.FrameBinary, handler.NewBinaryProcessor(out, dec, log))
	router.Register(mexc.FrameClose, handler.NewCloseProcessor(out, log))
	router.Register(mexc.FrameError, handler.NewErrorProcessor(out, log))

	// 3) HTTP-сервер: /metrics, /healthz, /readyz.
	readiness := func() error {
		if !wsConn.Connected() {
			return errors.New("websocket disconnected")
		}
		return nil
	}
	httpSrv := internalhttp.NewServer(cfg.HTTP, readiness, log)

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Start(runCtx) })
	g.Go(func() error {
		msgCh, err := transportmexc.StreamWithMetrics(runCtx, wsConn)
		if err != nil {
			return fmt.Errorf("ws stream: %w", err)
		}
		// Run завершается при закрытии канала, то есть по отмене runCtx.
		return router.Run(runCtx, msgCh)
	})

	err = g.Wait()
	if ctx.Err() != nil {
		fmt.Fprintln(out, "[signal] interrupt received, closing connection")
		log.WithContext(ctx).Info("listener stopped by signal")
		return nil
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// shutdownSafe оборачивает вызов Close()/Shutdown() с логированием.
func shutdownSafe(ctx context.Context, name string, fn func() error, log *logger.Logger) {
	log.WithContext(ctx).Info(fmt.Sprintf("%s: shutting down", name))
	if err := fn(); err != nil {
		log.WithContext(ctx).Error(fmt.Sprintf("%s shutdown error", name), zap.Error(err))
	} else {
		log.WithContext(ctx).Info(fmt.Sprintf("%s: shutdown complete", name))
	}
}
