package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaPublisher forwards dispatcher events to a Kafka topic for external
// notification delivery. Writes are best-effort: failures are logged and
// never surface to the ticket mutation that emitted the event.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates the publisher. With no brokers or topic
// configured every method is a no-op.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	if len(brokers) == 0 || topic == "" {
		return &KafkaPublisher{logger: logger}
	}
	return &KafkaPublisher{
		logger: logger,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Handle implements EventHandler. Register it for every event type that
// should reach the bus.
func (p *KafkaPublisher) Handle(ctx context.Context, event Event) error {
	if p == nil || p.writer == nil {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("marshal event", zap.Error(err), zap.String("event_type", string(event.Type)))
		return nil
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TicketID),
		Value: body,
	}); err != nil {
		p.logger.Warn("write event to kafka",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID))
	}
	return nil
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
