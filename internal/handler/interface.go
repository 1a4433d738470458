package handler

import (
	"context"

	"github.com/YaganovValera/mexc-bookticker/pkg/mexc"
	"github.com/YaganovValera/mexc-bookticker/pkg/mexcpb"
)

// Processor определяет контракт на обработку одного WS-события.
type Processor interface {
	// Process обрабатывает событие и печатает строку результата в консоль.
	// Ошибка обработки никогда не роняет соединение: она логируется
	// диспетчером, поток продолжает принимать следующие кадры.
	Process(ctx context.Context, raw mexc.RawMessage) error
}

// Decoder разбирает бинарный пуш в каноническую структуру.
// Возможность декодирования резолвится один раз при старте:
// nil-декодер переводит обработчик в режим отчёта о длине кадра.
type Decoder interface {
	Decode(data []byte) (*mexcpb.PushData, error)
}

// ProtoDecoder — декодер на основе pkg/mexcpb.
type ProtoDecoder struct{}

func (ProtoDecoder) Decode(data []byte) (*mexcpb.PushData, error) {
	return mexcpb.Unmarshal(data)
}
