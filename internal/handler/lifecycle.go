// internal/handler/lifecycle.go
//
// Обработчики событий жизненного цикла соединения: open, close, error.
package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
)

type openProcessor struct {
	out io.Writer
	log *logger.Logger
}

func NewOpenProcessor(out io.Writer, log *logger.Logger) Processor {
	return &openProcessor{out: out, log: log.Named("open")}
}

func (op *openProcessor) Process(ctx context.Context, raw mexc.RawMessage) error {
	if raw.Type != mexc.FrameOpen {
		return nil
	}
	_, err := fmt.Fprintf(op.out, "[open] Connected. Subscribing to: %s\n", raw.Data)
	return err
}

type closeProcessor struct {
	out io.Writer
	log *logger.Logger
}

func NewCloseProcessor(out io.Writer, log *logger.Logger) Processor {
	return &closeProcessor{out: out, log: log.Named("close")}
}

func (cp *closeProcessor) Process(ctx context.Context, raw mexc.RawMessage) error {
	if raw.Type != mexc.FrameClose {
		return nil
	}
	_, err := fmt.Fprintf(cp.out, "[close] code=%d reason=%s\n", raw.Code, raw.Reason)
	return err
}

type errorProcessor struct {
	out io.Writer
	log *logger.Logger
}

func NewErrorProcessor(out io.Writer, log *logger.Logger) Processor {
	return &errorProcessor{out: out, log: log.Named("error")}
}

func (ep *errorProcessor) Process(ctx context.Context, raw mexc.RawMessage) error {
	if raw.Type != mexc.FrameError {
		return nil
	}
	_, err := fmt.Fprintf(ep.out, "[error] %v\n", raw.Err)
	return err
}
