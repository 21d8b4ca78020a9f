package services

import "fmt"

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Resource, e.ID)
}

// InsufficientStockError indicates a tool-line requested more units than
// the tool currently has in stock.
type InsufficientStockError struct {
	ToolID    uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for tool %d: requested %d, available %d",
		e.ToolID, e.Requested, e.Available)
}

// WorkerUnavailableError indicates the worker is already attached to
// another order worker-line.
type WorkerUnavailableError struct {
	WorkerID uint
}

func (e *WorkerUnavailableError) Error() string {
	return fmt.Sprintf("worker %d is not free", e.WorkerID)
}

// InvalidTransitionError indicates an order status change that the order
// state machine does not allow.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}
