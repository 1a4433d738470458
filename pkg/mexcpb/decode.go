// pkg/mexcpb/decode.go
//
// Разбор бинарных push-сообщений MEXC Spot V3 (PushDataV3ApiWrapper) на уровне
// wire-формата protobuf. Схема вендора менялась между версиями: best bid/ask
// приходит либо как publicBookTicker (305), либо как publicAggreBookTicker (315).
// Оба варианта нормализуются в одну структуру BookTicker; неизвестные поля
// пропускаются без ошибки.
package mexcpb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Номера полей PushDataV3ApiWrapper (mexcdevelop/websocket-proto).
const (
	FieldChannel               = 1
	FieldSymbol                = 3
	FieldSymbolID              = 4
	FieldCreateTime            = 5
	FieldSendTime              = 6
	FieldPublicBookTicker      = 305
	FieldPublicAggreBookTicker = 315
)

// Номера полей PublicBookTickerV3Api / PublicAggreBookTickerV3Api.
const (
	fieldBidPrice    = 1
	fieldBidQuantity = 2
	fieldAskPrice    = 3
	fieldAskQuantity = 4
)

// BookTicker — best bid/ask по торговой паре. Значения приходят строками,
// как их отдаёт биржа; числовая валидация не выполняется.
type BookTicker struct {
	BidPrice    string
	BidQuantity string
	AskPrice    string
	AskQuantity string
}

// HasQuotes сообщает, заполнена ли хотя бы одна из цен.
func (bt *BookTicker) HasQuotes() bool {
	return bt != nil && (bt.BidPrice != "" || bt.AskPrice != "")
}

// PushData — каноническое представление одного push-сообщения.
// BookTicker == nil, если тело сообщения не содержит bookTicker-варианта.
type PushData struct {
	Channel    string
	Symbol     string
	SymbolID   string
	CreateTime int64
	SendTime   int64
	BookTicker *BookTicker
}

// Unmarshal разбирает обёртку PushDataV3ApiWrapper.
// Возвращает ошибку только на повреждённом wire-формате.
func Unmarshal(data []byte) (*PushData, error) {
	pd := &PushData{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("mexcpb: malformed tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == FieldChannel && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: channel: %w", protowire.ParseError(n))
			}
			pd.Channel = string(v)
			b = b[n:]

		case num == FieldSymbol && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: symbol: %w", protowire.ParseError(n))
			}
			pd.Symbol = string(v)
			b = b[n:]

		case num == FieldSymbolID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: symbolId: %w", protowire.ParseError(n))
			}
			pd.SymbolID = string(v)
			b = b[n:]

		case num == FieldCreateTime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: createTime: %w", protowire.ParseError(n))
			}
			pd.CreateTime = int64(v)
			b = b[n:]

		case num == FieldSendTime && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: sendTime: %w", protowire.ParseError(n))
			}
			pd.SendTime = int64(v)
			b = b[n:]

		case (num == FieldPublicBookTicker || num == FieldPublicAggreBookTicker) && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: bookTicker body: %w", protowire.ParseError(n))
			}
			bt, err := unmarshalBookTicker(v)
			if err != nil {
				return nil, err
			}
			pd.BookTicker = bt
			b = b[n:]

		default:
			// Прочие варианты oneof-тела и будущие поля схемы пропускаем.
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return pd, nil
}

func unmarshalBookTicker(data []byte) (*BookTicker, error) {
	bt := &BookTicker{}
	b := data
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, fmt.Errorf("mexcpb: bookTicker tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		if typ != protowire.BytesType {
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, fmt.Errorf("mexcpb: bookTicker field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}

		v, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return nil, fmt.Errorf("mexcpb: bookTicker field %d: %w", num, protowire.ParseError(n))
		}
		switch num {
		case fieldBidPrice:
			bt.BidPrice = string(v)
		case fieldBidQuantity:
			bt.BidQuantity = string(v)
		case fieldAskPrice:
			bt.AskPrice = string(v)
		case fieldAskQuantity:
			bt.AskQuantity = string(v)
		}
		b = b[n:]
	}
	return bt, nil
}
