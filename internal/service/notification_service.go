package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/classpulse/support-service/internal/events"
)

// NotificationService bridges domain events to external delivery: every
// event is logged and forwarded to the Kafka topic. Delivery is
// best-effort and never affects the ticket mutation that produced it.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  *events.KafkaPublisher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, publisher *events.KafkaPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		publisher:  publisher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to all ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketStatusChanged,
		events.EventTicketAssigned,
		events.EventTicketResponded,
	} {
		n.dispatcher.Subscribe(eventType, n.handleEvent)
	}
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_id", event.ActorID))
	if n.publisher != nil {
		return n.publisher.Handle(ctx, event)
	}
	return nil
}
