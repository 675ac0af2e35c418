package kafka

import (
	"encoding/json"
	"log/slog"

	"storefront/pkg/logkey"
)

// Producer is satisfied by *Conf. Services depend on it so tests can record
// events without a broker.
type Producer interface {
	ProduceMessage(topic string, key, value []byte) error
}

// PublishAsync encodes event and produces it from a new goroutine. A nil
// producer disables publishing; failures are logged and never reach the
// request that triggered the event.
func PublishAsync(p Producer, topic, key string, event any, traceId string) {
	if p == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", slog.String(logkey.TraceID, traceId),
			slog.String("topic", topic), slog.String(logkey.ERROR, err.Error()))
		return
	}
	go func() {
		if err := p.ProduceMessage(topic, []byte(key), data); err != nil {
			slog.Error("failed to produce event", slog.String(logkey.TraceID, traceId),
				slog.String("topic", topic), slog.String(logkey.ERROR, err.Error()))
			return
		}
		slog.Info("event produced", slog.String(logkey.TraceID, traceId), slog.String("topic", topic))
	}()
}
