package services

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/toolrent/toolrent-api/models"
)

const (
	dispatcherQueueSize = 64
	dispatcherAttempts  = 3
	dispatcherBackoff   = 2 * time.Second
)

// NotificationDispatcher delivers order notifications on a background
// goroutine so that a slow or failing notifier can never stall or fail the
// request that created the order. Deliveries are retried a few times and
// then dropped with a log line.
type NotificationDispatcher struct {
	notifier Notifier
	queue    chan *models.Order
	done     chan struct{}
	wg       sync.WaitGroup
	backoff  time.Duration
}

var dispatcherInstance *NotificationDispatcher

// InitNotificationDispatcher creates the dispatcher, starts its worker and
// registers it as the package instance
func InitNotificationDispatcher(notifier Notifier) *NotificationDispatcher {
	d := NewNotificationDispatcher(notifier)
	d.Start()
	dispatcherInstance = d
	return d
}

// GetNotificationDispatcher returns the running dispatcher, or nil when
// notifications are not configured
func GetNotificationDispatcher() *NotificationDispatcher {
	return dispatcherInstance
}

// SetNotificationDispatcher sets the dispatcher instance (primarily for testing)
func SetNotificationDispatcher(d *NotificationDispatcher) {
	dispatcherInstance = d
}

// NewNotificationDispatcher creates a dispatcher without starting it
func NewNotificationDispatcher(notifier Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{
		notifier: notifier,
		queue:    make(chan *models.Order, dispatcherQueueSize),
		done:     make(chan struct{}),
		backoff:  dispatcherBackoff,
	}
}

// Start launches the background delivery worker
func (d *NotificationDispatcher) Start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case order := <-d.queue:
				d.deliver(order)
			case <-d.done:
				// Drain anything still queued before shutting down
				for {
					select {
					case order := <-d.queue:
						d.deliver(order)
					default:
						return
					}
				}
			}
		}
	}()
}

// Stop shuts the worker down after draining the queue
func (d *NotificationDispatcher) Stop() {
	close(d.done)
	d.wg.Wait()
}

// Enqueue hands an order to the background worker. It never blocks; when
// the queue is full the notification is dropped and logged, because losing
// a notification must not affect the order itself.
func (d *NotificationDispatcher) Enqueue(order *models.Order) {
	select {
	case d.queue <- order:
	default:
		log.Warnf("notification queue full, dropping notification for order %d", order.ID)
	}
}

func (d *NotificationDispatcher) deliver(order *models.Order) {
	var err error
	for attempt := 1; attempt <= dispatcherAttempts; attempt++ {
		if err = d.notifier.NotifyOrderCreated(order); err == nil {
			return
		}
		log.Warnf("notification attempt %d/%d for order %d failed: %v",
			attempt, dispatcherAttempts, order.ID, err)
		if attempt < dispatcherAttempts {
			time.Sleep(d.backoff)
		}
	}
	log.Errorf("giving up on notification for order %d: %v", order.ID, err)
}
