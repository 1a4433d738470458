// pkg/mexc/interface.go
package mexc

import "context"

// StreamConnector описывает низкоуровневый коннектор к MEXC WebSocket.
type StreamConnector interface {
	// Stream запускает цикл чтения и возвращает канал RawMessage.
	Stream(ctx context.Context) (<-chan RawMessage, error)
	// Connected сообщает, открыто ли соединение в данный момент.
	Connected() bool
	// Close останавливает активный поток.
	Close() error
}

// Типы событий, попадающих в канал Stream.
const (
	FrameOpen   = "open"   // соединение установлено, подписка отправлена
	FrameText   = "text"   // текстовый кадр (ack/ошибки сервера)
	FrameBinary = "binary" // бинарный кадр (protobuf-пуш)
	FrameClose  = "close"  // сервер закрыл соединение
	FrameError  = "error"  // ошибка соединения или чтения
)

// RawMessage представляет одно событие WebSocket-потока.
// Тип кадра авторитетен для маршрутизации: текст никогда не попадает
// в декодер, бинарные данные никогда не печатаются как текст.
type RawMessage struct {
	Type   string // один из Frame*-констант
	Data   []byte // полезная нагрузка кадра; для open — имя канала подписки
	Code   int    // код закрытия (только для close)
	Reason string // причина закрытия (только для close)
	Err    error  // ошибка (только для error)
}
