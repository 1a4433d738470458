// internal/handler/handler_test.go
package handler_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/YaganovValera/mexc-bookticker/internal/handler"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexcpb"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "debug", DevMode: true})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// failingDecoder имитирует повреждённый payload.
type failingDecoder struct{}

func (failingDecoder) Decode([]byte) (*mexcpb.PushData, error) {
	return nil, errors.New("boom")
}

func TestTextProcessor_PrintsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	proc := handler.NewTextProcessor(&buf, testLogger(t))

	payload := `{"id":1,"code":0,"msg":"spot@public.aggre.bookTicker.v3.api.pb@100ms@JUMPUSDT"}`
	err := proc.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameText, Data: []byte(payload)})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := "[text] " + payload + "\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestTextProcessor_IgnoresOtherTypes(t *testing.T) {
	var buf bytes.Buffer
	proc := handler.NewTextProcessor(&buf, testLogger(t))
	if err := proc.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameBinary, Data: []byte{1, 2}}); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output for binary frame, got %q", buf.String())
	}
}

func TestBinaryProcessor_NoDecoder(t *testing.T) {
	var buf bytes.Buffer
	proc := handler.NewBinaryProcessor(&buf, nil, testLogger(t))

	err := proc.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameBinary, Data: make([]byte, 40)})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := "[binary] 40 bytes (protobuf). Install and generate proto classes to decode.\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestBinaryProcessor_DecodeFailureContinues(t *testing.T) {
	var buf bytes.Buffer
	proc := handler.NewBinaryProcessor(&buf, failingDecoder{}, testLogger(t))

	err := proc.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameBinary, Data: []byte{0xff}})
	if err != nil {
		t.Fatalf("decode failure must not propagate as processing error, got %v", err)
	}

	want := "[error] Failed to decode protobuf message: boom\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}

	// Следующий кадр обрабатывается как ни в чём не бывало.
	buf.Reset()
	proc2 := handler.NewBinaryProcessor(&buf, nil, testLogger(t))
	if err := proc2.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameBinary, Data: make([]byte, 3)}); err != nil {
		t.Fatalf("Process after failure: %v", err)
	}
}

func buildBookTickerPush(t *testing.T, channel, symbol, bidP, bidQ, askP, askQ string) []byte {
	t.Helper()
	var body []byte
	body = protowire.AppendTag(body, 1, protowire.BytesType)
	body = protowire.AppendString(body, bidP)
	body = protowire.AppendTag(body, 2, protowire.BytesType)
	body = protowire.AppendString(body, bidQ)
	body = protowire.AppendTag(body, 3, protowire.BytesType)
	body = protowire.AppendString(body, askP)
	body = protowire.AppendTag(body, 4, protowire.BytesType)
	body = protowire.AppendString(body, askQ)

	var b []byte
	b = protowire.AppendTag(b, mexcpb.FieldChannel, protowire.BytesType)
	b = protowire.AppendString(b, channel)
	b = protowire.AppendTag(b, mexcpb.FieldSymbol, protowire.BytesType)
	b = protowire.AppendString(b, symbol)
	b = protowire.AppendTag(b, mexcpb.FieldPublicAggreBookTicker, protowire.BytesType)
	b = protowire.AppendBytes(b, body)
	return b
}

func TestBinaryProcessor_BookTickerLine(t *testing.T) {
	var buf bytes.Buffer
	proc := handler.NewBinaryProcessor(&buf, handler.ProtoDecoder{}, testLogger(t))

	channel := "spot@public.aggre.bookTicker.v3.api.pb@100ms@JUMPUSDT"
	data := buildBookTickerPush(t, channel, "JUMPUSDT", "0.012", "1500", "0.013", "900")

	if err := proc.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameBinary, Data: data}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := "[bookTicker] JUMPUSDT | bid 0.012 x 1500  ask 0.013 x 900  (channel=" + channel + ")\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestBinaryProcessor_MetaFallback(t *testing.T) {
	var buf bytes.Buffer
	proc := handler.NewBinaryProcessor(&buf, handler.ProtoDecoder{}, testLogger(t))

	// Пуш без bookTicker-тела: печатаются только метаданные.
	var b []byte
	b = protowire.AppendTag(b, mexcpb.FieldChannel, protowire.BytesType)
	b = protowire.AppendString(b, "spot@public.aggre.deals.v3.api.pb@100ms@ETHUSDT")
	b = protowire.AppendTag(b, mexcpb.FieldSymbol, protowire.BytesType)
	b = protowire.AppendString(b, "ETHUSDT")
	b = protowire.AppendTag(b, mexcpb.FieldSendTime, protowire.VarintType)
	b = protowire.AppendVarint(b, 1716000000123)

	if err := proc.Process(context.Background(), mexc.RawMessage{Type: mexc.FrameBinary, Data: b}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	want := "[protobuf] channel=spot@public.aggre.deals.v3.api.pb@100ms@ETHUSDT symbol=ETHUSDT sendtime=1716000000123\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

func TestLifecycleProcessors(t *testing.T) {
	log := testLogger(t)
	ctx := context.Background()

	var buf bytes.Buffer
	open := handler.NewOpenProcessor(&buf, log)
	if err := open.Process(ctx, mexc.RawMessage{Type: mexc.FrameOpen, Data: []byte("chan-a")}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "[open] Connected. Subscribing to: chan-a\n"; got != want {
		t.Errorf("open = %q; want %q", got, want)
	}

	buf.Reset()
	closeP := handler.NewCloseProcessor(&buf, log)
	if err := closeP.Process(ctx, mexc.RawMessage{Type: mexc.FrameClose, Code: 1006, Reason: "abnormal"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "[close] code=1006 reason=abnormal\n"; got != want {
		t.Errorf("close = %q; want %q", got, want)
	}

	buf.Reset()
	errP := handler.NewErrorProcessor(&buf, log)
	if err := errP.Process(ctx, mexc.RawMessage{Type: mexc.FrameError, Err: errors.New("connection reset")}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "[error] connection reset\n"; got != want {
		t.Errorf("error = %q; want %q", got, want)
	}
}

// Текстовые кадры никогда не попадают в декодер, бинарные — в текстовый вывод.
func TestDispatchRouter_RoutesByFrameType(t *testing.T) {
	log := testLogger(t)
	var buf bytes.Buffer

	router := handler.NewRouter(log)
	router.Register(mexc.FrameText, handler.NewTextProcessor(&buf, log))
	router.Register(mexc.FrameBinary, handler.NewBinaryProcessor(&buf, nil, log))

	in := make(chan mexc.RawMessage, 4)
	in <- mexc.RawMessage{Type: mexc.FrameText, Data: []byte(`{"id":1}`)}
	in <- mexc.RawMessage{Type: mexc.FrameBinary, Data: make([]byte, 7)}
	in <- mexc.RawMessage{Type: "bogus"}
	close(in)

	if err := router.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "[text] {\"id\":1}\n" +
		"[binary] 7 bytes (protobuf). Install and generate proto classes to decode.\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}

// Ошибка обработчика логируется, маршрутизация продолжается.
type alwaysErrProcessor struct{}

func (alwaysErrProcessor) Process(context.Context, mexc.RawMessage) error {
	return errors.New("handler failed")
}

func TestDispatchRouter_ContinuesAfterProcessorError(t *testing.T) {
	log := testLogger(t)
	var buf bytes.Buffer

	router := handler.NewRouter(log)
	router.Register(mexc.FrameBinary, alwaysErrProcessor{})
	router.Register(mexc.FrameText, handler.NewTextProcessor(&buf, log))

	in := make(chan mexc.RawMessage, 2)
	in <- mexc.RawMessage{Type: mexc.FrameBinary, Data: []byte{1}}
	in <- mexc.RawMessage{Type: mexc.FrameText, Data: []byte("ok")}
	close(in)

	if err := router.Run(context.Background(), in); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := buf.String(), "[text] ok\n"; got != want {
		t.Errorf("output = %q; want %q", got, want)
	}
}
