package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// EventsTotal — общее число обработанных кадров из WebSocket.
	EventsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookticker",
		Subsystem: "handler",
		Name:      "events_total",
		Help:      "Total number of frames handled",
	})

	// DecodeErrors — число бинарных кадров, не разобранных декодером.
	DecodeErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookticker",
		Subsystem: "handler",
		Name:      "decode_errors_total",
		Help:      "Total number of protobuf payloads that failed to decode",
	})

	// DecodeFallbacks — число пушей без bookTicker-тела (напечатаны метаданные).
	DecodeFallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookticker",
		Subsystem: "handler",
		Name:      "decode_fallbacks_total",
		Help:      "Total number of pushes decoded without a bookTicker body",
	})

	// UnsupportedEvents — число кадров без зарегистрированного обработчика.
	UnsupportedEvents = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "bookticker",
		Subsystem: "handler",
		Name:      "unsupported_events_total",
		Help:      "Total number of frames with no registered processor",
	})

	// HandleLatency — гистограмма задержек обработки одного кадра.
	HandleLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bookticker",
		Subsystem: "handler",
		Name:      "handle_latency_seconds",
		Help:      "Latency of handling a single frame (seconds)",
		Buckets:   prometheus.DefBuckets,
	})
)

// Register регистрирует все метрики в заданном реестре.
// Можно вызвать без аргументов, чтобы зарегистрировать в DefaultRegisterer.
func Register(registerers ...prometheus.Registerer) {
	once.Do(func() {
		var reg prometheus.Registerer
		if len(registerers) > 0 && registerers[0] != nil {
			reg = registerers[0]
		} else {
			reg = prometheus.DefaultRegisterer
		}
		reg.MustRegister(
			EventsTotal,
			DecodeErrors,
			DecodeFallbacks,
			UnsupportedEvents,
			HandleLatency,
		)
	})
}
