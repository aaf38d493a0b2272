package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Kind classifies an outbound notification.
type Kind string

const (
	KindOrderReceived Kind = "ORDER_RECEIVED"
	KindOrderPaid     Kind = "ORDER_PAID"
)

// Message is a single notification request queued for delivery.
type Message struct {
	Kind    Kind
	OrderID int64
	OwnerID int64
}

// Sender delivers a single notification. Implementations wrap email, SMS or
// any other outbound channel.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dispatcher fans notification messages out to a worker pool. Enqueueing
// never blocks: a full queue drops the message with a log line, so webhook
// and checkout paths stay unaffected by slow delivery channels.
type Dispatcher struct {
	sender  Sender
	workers int
	logger  *slog.Logger

	queue  chan Message
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewDispatcher constructs a dispatcher with the given queue capacity and
// worker count.
func NewDispatcher(sender Sender, queueSize, workers int, logger *slog.Logger) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		sender:  sender,
		workers: workers,
		logger:  logger,
		queue:   make(chan Message, queueSize),
	}
}

// Start launches background delivery workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop waits for all workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
}

// Enqueue queues a message for delivery, dropping it when the queue is full.
func (d *Dispatcher) Enqueue(msg Message) {
	select {
	case d.queue <- msg:
	default:
		d.logger.Warn("notification queue full, dropping message",
			slog.String("kind", string(msg.Kind)),
			slog.Int64("order", msg.OrderID))
	}
}

// OrderReceived notifies about a freshly checked-out order.
func (d *Dispatcher) OrderReceived(orderID, ownerID int64) {
	d.Enqueue(Message{Kind: KindOrderReceived, OrderID: orderID, OwnerID: ownerID})
}

// OrderPaid notifies about an order whose balance just reached zero.
func (d *Dispatcher) OrderPaid(orderID int64) {
	d.Enqueue(Message{Kind: KindOrderPaid, OrderID: orderID})
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-d.queue:
			if !ok {
				return
			}
			if err := d.sender.Send(ctx, msg); err != nil {
				d.logger.Error("notification delivery failed",
					slog.String("kind", string(msg.Kind)),
					slog.Int64("order", msg.OrderID),
					slog.String("error", err.Error()))
			}
		}
	}
}
