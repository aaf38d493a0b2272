package test

import (
	"context"
	"sync"

	"github.com/paperdesk/papermart/internal/usecase"
)

// OrderNotifierStub records notification calls for assertions.
type OrderNotifierStub struct {
	mu       sync.Mutex
	Received []int64
	Paid     []int64
}

func (s *OrderNotifierStub) OrderReceived(orderID, ownerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Received = append(s.Received, orderID)
}

func (s *OrderNotifierStub) OrderPaid(orderID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Paid = append(s.Paid, orderID)
}

// PaidCount returns how many paid notifications were recorded.
func (s *OrderNotifierStub) PaidCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Paid)
}

// ReceivedCount returns how many received notifications were recorded.
func (s *OrderNotifierStub) ReceivedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Received)
}

// SubscriptionGatewayStub serves canned subscription resources.
type SubscriptionGatewayStub struct {
	Resource *usecase.SubscriptionResource
	Err      error
	Calls    []string
}

func (s *SubscriptionGatewayStub) GetSubscription(ctx context.Context, externalID string) (*usecase.SubscriptionResource, error) {
	s.Calls = append(s.Calls, externalID)
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Resource, nil
}
