// pkg/mexc/ws.go
package mexc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/YaganovValera/mexc-bookticker/pkg/backoff"
	"github.com/YaganovValera/mexc-bookticker/pkg/logger"
)

// controlRequest — исходящее управляющее сообщение (SUBSCRIPTION или PING).
type controlRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params,omitempty"`
}

// Connector управляет соединением к MEXC WS с авто-reconnect.
// Таймауты на чтение намеренно не выставляются: живость соединения
// поддерживается прикладным JSON PING, а не транспортным ping/pong.
type Connector struct {
	cfg       Config
	log       *logger.Logger
	connected atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewConnector создаёт Connector.
// Логгер именуется как "mexc-ws" для удобного фильтра в логах.
func NewConnector(cfg Config, log *logger.Logger) (*Connector, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Connector{
		cfg: cfg,
		log: log.Named("mexc-ws"),
	}, nil
}

// Stream запускает цикл чтения и возвращает канал RawMessage.
// Закрытие канала происходит при отмене ctx или вызове Close.
func (c *Connector) Stream(ctx context.Context) (<-chan RawMessage, error) {
	streamCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()

	ch := make(chan RawMessage, c.cfg.BufferSize)
	go c.run(streamCtx, ch)
	return ch, nil
}

// Connected сообщает, открыто ли соединение в данный момент.
func (c *Connector) Connected() bool { return c.connected.Load() }

// Close останавливает активный поток и форсирует закрытие сокета.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	return nil
}

func (c *Connector) run(ctx context.Context, ch chan<- RawMessage) {
	defer close(ch)

	for {
		if ctx.Err() != nil {
			c.log.Sugar().Infow("ws: context cancelled, exiting")
			return
		}

		// 1) Подключаемся с ретраями.
		var conn *websocket.Conn
		err := backoff.Execute(ctx, c.cfg.BackoffConfig, c.log, func(ctxTry context.Context) error {
			var dialErr error
			conn, _, dialErr = websocket.DefaultDialer.DialContext(ctxTry, c.cfg.URL, nil)
			return dialErr
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.emit(ch, RawMessage{Type: FrameError, Err: err})
			continue
		}
		c.connected.Store(true)
		c.log.Sugar().Infow("ws: connected", "url", c.cfg.URL)

		connCtx, cancelConn := context.WithCancel(ctx)

		// 2) Сторож: закрытие сокета — единственный способ
		// разблокировать блокирующий ReadMessage.
		go func(conn *websocket.Conn) {
			<-connCtx.Done()
			_ = conn.Close()
		}(conn)

		w := &connWriter{conn: conn}

		// 3) Подписка на каналы.
		sub := controlRequest{Method: "SUBSCRIPTION", Params: c.cfg.Channels}
		if err := w.writeJSON(sub, c.cfg.SubscribeTimeout); err != nil {
			c.log.Sugar().Errorw("ws: subscribe failed", "err", err)
			c.connected.Store(false)
			cancelConn()
			c.emit(ch, RawMessage{Type: FrameError, Err: err})
			if !c.waitRetry(ctx) {
				return
			}
			continue
		}
		c.emit(ch, RawMessage{Type: FrameOpen, Data: []byte(strings.Join(c.cfg.Channels, ","))})

		// 4) Прикладной keep-alive.
		go c.keepAlive(connCtx, w)

		// 5) Чтение кадров.
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				c.connected.Store(false)
				cancelConn()
				if ctx.Err() != nil {
					return
				}
				var closeErr *websocket.CloseError
				if errors.As(err, &closeErr) {
					c.emit(ch, RawMessage{Type: FrameClose, Code: closeErr.Code, Reason: closeErr.Text})
				} else {
					c.emit(ch, RawMessage{Type: FrameError, Err: err})
				}
				c.log.Sugar().Warnw("ws: read failed, reconnecting", "err", err)
				break
			}

			switch msgType {
			case websocket.TextMessage:
				c.emit(ch, RawMessage{Type: FrameText, Data: data})
			case websocket.BinaryMessage:
				c.emit(ch, RawMessage{Type: FrameBinary, Data: data})
			}
		}

		// 6) Фиксированная пауза перед переподключением.
		if !c.waitRetry(ctx) {
			return
		}
	}
}

// waitRetry выдерживает паузу перед следующей попыткой подключения.
// Возвращает false, если за время паузы контекст был отменён.
func (c *Connector) waitRetry(ctx context.Context) bool {
	t := time.NewTimer(c.cfg.BackoffConfig.InitialInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// keepAlive шлёт {"method":"PING"} каждые PingInterval.
// Горутина молча завершается на первой же ошибке отправки:
// мёртвое соединение заметит основной цикл чтения.
func (c *Connector) keepAlive(ctx context.Context, w *connWriter) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.writeJSON(controlRequest{Method: "PING"}, time.Second); err != nil {
				c.log.Sugar().Debugw("ws: ping failed, stopping keep-alive", "err", err)
				return
			}
		}
	}
}

// emit отправляет событие, если есть место в буфере.
func (c *Connector) emit(ch chan<- RawMessage, msg RawMessage) {
	select {
	case ch <- msg:
	default:
		c.log.Sugar().Warnw("ws: buffer full, dropping message", "type", msg.Type)
	}
}

// connWriter сериализует исходящие записи: gorilla/websocket допускает
// только одного писателя, а подписка и keep-alive пишут из разных горутин.
type connWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *connWriter) writeJSON(v interface{}, timeout time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(timeout))
	return w.conn.WriteJSON(v)
}
