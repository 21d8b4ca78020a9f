package services

import (
	"sync"

	"github.com/toolrent/toolrent-api/models"
)

// MockNotifier is a mock implementation of Notifier for testing
type MockNotifier struct {
	mu       sync.Mutex
	notified []*models.Order
	failWith error
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// FailWith makes every subsequent delivery attempt return err
func (m *MockNotifier) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// NotifyOrderCreated records the order, or fails when configured to
func (m *MockNotifier) NotifyOrderCreated(order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.notified = append(m.notified, order)
	return nil
}

// NotifiedOrders returns a copy of the orders delivered so far
func (m *MockNotifier) NotifiedOrders() []*models.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]*models.Order, len(m.notified))
	copy(orders, m.notified)
	return orders
}

// Clear forgets all recorded deliveries
func (m *MockNotifier) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = nil
}
