package messaging

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"reqflow/internal/shared/events"
)

// Kafka is the event bus adapter used by the outbox relay and in-process
// consumers. Delivery is currently in-process publish/subscribe; the broker
// list is carried so external wiring can land without touching callers.
type Kafka struct {
	mu          sync.RWMutex
	subscribers map[string][]chan events.Envelope
	brokers     []string
	buffer      int
	logger      *slog.Logger
}

// NewKafka builds the bus. bufferSize caps each subscriber's backlog before
// Publish starts dropping; zero or negative picks the default of 128.
func NewKafka(brokers []string, bufferSize int, logger *slog.Logger) (*Kafka, error) {
	if bufferSize <= 0 {
		bufferSize = 128
	}
	if logger != nil {
		logger.Info("event bus ready",
			"event", "kafka_configured",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"brokers", strings.Join(brokers, ","),
			"subscriber_buffer", bufferSize,
		)
	}
	return &Kafka{
		subscribers: make(map[string][]chan events.Envelope),
		brokers:     brokers,
		buffer:      bufferSize,
		logger:      logger,
	}, nil
}

func (k *Kafka) Publish(ctx context.Context, topic string, event events.Envelope) error {
	k.mu.RLock()
	subs := append([]chan events.Envelope(nil), k.subscribers[topic]...)
	k.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			if k.logger != nil {
				k.logger.Warn("dropping event for slow subscriber",
					"event", "kafka_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
				)
			}
		}
	}

	if k.logger != nil {
		k.logger.Info("event published",
			"event", "kafka_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (k *Kafka) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	ch := make(chan events.Envelope, k.buffer)

	k.mu.Lock()
	k.subscribers[topic] = append(k.subscribers[topic], ch)
	k.mu.Unlock()

	go func() {
		for {
			select {
			case <-ctx.Done():
				k.removeSubscriber(topic, ch)
				return
			case event := <-ch:
				if err := handler(ctx, event); err != nil && k.logger != nil {
					k.logger.Error("consumer handler failed",
						"event", "kafka_consume_failed",
						"module", "internal/platform/messaging",
						"layer", "platform",
						"topic", topic,
						"consumer_group", consumerGroup,
						"event_id", event.EventID,
						"event_type", event.EventType,
						"error", err.Error(),
					)
				}
			}
		}
	}()
	return nil
}

func (k *Kafka) removeSubscriber(topic string, target chan events.Envelope) {
	k.mu.Lock()
	defer k.mu.Unlock()

	items := k.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan events.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	k.subscribers[topic] = filtered
}
