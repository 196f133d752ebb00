package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_DeliversToSubscribedType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []Event
	d.Subscribe(EventTicketCreated, func(_ context.Context, event Event) error {
		got = append(got, event)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "ticket-1"})
	if err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if err := d.Publish(context.Background(), Event{Type: EventTicketAssigned, TicketID: "ticket-2"}); err != nil {
		t.Fatalf("Publish error: %v", err)
	}

	if len(got) != 1 || got[0].TicketID != "ticket-1" {
		t.Fatalf("handler should only see subscribed type, got %+v", got)
	}
}

func TestDispatcher_HandlerErrorsDoNotStopDelivery(t *testing.T) {
	d := NewInMemoryDispatcher()
	var secondCalled bool
	d.Subscribe(EventTicketResponded, func(context.Context, Event) error {
		return errors.New("boom")
	})
	d.Subscribe(EventTicketResponded, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketResponded}); err != nil {
		t.Fatalf("Publish must swallow handler errors, got %v", err)
	}
	if !secondCalled {
		t.Fatal("second handler should run despite first failing")
	}
}
