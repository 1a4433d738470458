package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	pflag "github.com/spf13/pflag"

	"github.com/YaganovValera/mexc-bookticker/internal/app"
	"github.com/YaganovValera/mexc-bookticker/internal/config"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	pkgtelemetry "github.com/YaganovValera/mexc-bookticker/pkg/telemetry"
)

func main() {
	// Флаг --config
	configPath := pflag.String("config", "config/config.yaml", "path to config file")
	pflag.Parse()

	// 1. Загрузить конфиг
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Logging.DevMode {
		cfg.Print()
	}

	// 2. Инициализация логгера
	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// 3. Контекст с отменой по сигналам
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 4. Инициализация OpenTelemetry
	shutdownTracer, err := pkgtelemetry.InitTracer(ctx, pkgtelemetry.Config{
		Endpoint:       cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Insecure:       cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Sugar().Fatalw("telemetry init error", "error", err)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			log.Sugar().Errorw("tracer shutdown error", "error", err)
		}
	}()

	log.Sugar().Infow("starting service",
		"service.name", cfg.ServiceName,
		"service.version", cfg.ServiceVersion,
	)

	// 5. Запуск основного приложения
	if err := app.Run(ctx, cfg, log); err != nil {
		log.Sugar().Errorw("application exited with error", "error", err)
		os.Exit(1)
	}

	log.Sugar().Infow("shutdown complete")
}
