package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type recordingSender struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *recordingSender) last() Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[len(s.messages)-1]
}

func TestNewDispatcherDefaults(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	d := NewDispatcher(&recordingSender{}, 0, 0, logger)
	if d.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", d.workers)
	}
	if cap(d.queue) != 1 {
		t.Fatalf("expected queue capacity default to 1, got %d", cap(d.queue))
	}
}

func TestDispatcherDeliversMessages(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sender := &recordingSender{}
	d := NewDispatcher(sender, 8, 2, logger)

	d.Start(context.Background())
	d.OrderReceived(42, 7)
	d.OrderPaid(42)

	deadline := time.After(500 * time.Millisecond)
	for sender.count() < 2 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for notification delivery")
		case <-time.After(5 * time.Millisecond):
		}
	}
	d.Stop()

	sender.mu.Lock()
	defer sender.mu.Unlock()
	kinds := map[Kind]Message{}
	for _, msg := range sender.messages {
		kinds[msg.Kind] = msg
	}
	received, ok := kinds[KindOrderReceived]
	if !ok {
		t.Fatal("expected an order received notification")
	}
	if received.OrderID != 42 || received.OwnerID != 7 {
		t.Fatalf("unexpected received message: %+v", received)
	}
	paid, ok := kinds[KindOrderPaid]
	if !ok {
		t.Fatal("expected an order paid notification")
	}
	if paid.OrderID != 42 {
		t.Fatalf("unexpected paid message: %+v", paid)
	}
}

func TestDispatcherDropsWhenQueueFull(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sender := &recordingSender{}
	d := NewDispatcher(sender, 1, 1, logger)

	// Workers are never started, so only one message fits in the queue.
	d.OrderPaid(1)
	d.OrderPaid(2)
	d.OrderPaid(3)

	if len(d.queue) != 1 {
		t.Fatalf("expected a single queued message, got %d", len(d.queue))
	}

	d.Start(context.Background())
	deadline := time.After(500 * time.Millisecond)
	for sender.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for notification delivery")
		case <-time.After(5 * time.Millisecond):
		}
	}
	d.Stop()

	if sender.count() != 1 {
		t.Fatalf("expected one delivered message, got %d", sender.count())
	}
	if sender.last().OrderID != 1 {
		t.Fatalf("expected first queued message delivered, got %+v", sender.last())
	}
}

func TestDispatcherLogsDeliveryFailure(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 4, 1, logger)

	d.Start(context.Background())
	d.OrderPaid(9)

	deadline := time.After(500 * time.Millisecond)
	for sender.count() < 1 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for notification delivery")
		case <-time.After(5 * time.Millisecond):
		}
	}
	d.Stop()
}

func TestLogSenderNeverFails(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	sender := NewLogSender(logger)
	if err := sender.Send(context.Background(), Message{Kind: KindOrderPaid, OrderID: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
