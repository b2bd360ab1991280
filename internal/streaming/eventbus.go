package streaming

import (
	"context"
	"fmt"
	"sync"

	"appscore-lab/internal/domain/models"
	"appscore-lab/pkg/logger"
)

// Publisher sends events to an external broker
type Publisher interface {
	IsConnected() bool
	Publish(ctx context.Context, event *Event) error
}

// EventBus distributes report events to NATS (when configured) and to local subscribers
type EventBus struct {
	broker Publisher
	logger *logger.Logger

	mu          sync.RWMutex
	subscribers map[string]chan *Event
	nextID      int
}

// NewEventBus creates a new event bus; broker may be nil
func NewEventBus(broker Publisher, log *logger.Logger) *EventBus {
	return &EventBus{
		broker:      broker,
		logger:      log.WithComponent("event-bus"),
		subscribers: make(map[string]chan *Event),
	}
}

// Publish publishes an event to the broker and all subscribers. Broker
// failures are logged and do not stop local delivery.
func (eb *EventBus) Publish(ctx context.Context, event *Event) error {
	if eb.broker != nil && eb.broker.IsConnected() {
		if err := eb.broker.Publish(ctx, event); err != nil {
			eb.logger.Warn().Err(err).Str("subject", event.Subject()).Msg("failed to publish to NATS, using local broadcast only")
		}
	}

	eb.mu.RLock()
	defer eb.mu.RUnlock()

	for id, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			eb.logger.Debug().Str("subscriber", id).Msg("subscriber channel full, dropping event")
		}
	}

	return nil
}

// PublishReportBuilt announces a built report
func (eb *EventBus) PublishReportBuilt(ctx context.Context, report *models.Report) error {
	return eb.Publish(ctx, NewReportBuiltEvent(report))
}

// PublishReportCompared announces a comparison
func (eb *EventBus) PublishReportCompared(ctx context.Context, result *models.ComparisonResult) error {
	return eb.Publish(ctx, NewReportComparedEvent(result))
}

// Subscribe registers a buffered local subscriber and returns its channel
// along with the function that removes it
func (eb *EventBus) Subscribe(buffer int) (<-chan *Event, func()) {
	eb.mu.Lock()
	eb.nextID++
	id := fmt.Sprintf("sub-%d", eb.nextID)
	ch := make(chan *Event, buffer)
	eb.subscribers[id] = ch
	eb.mu.Unlock()

	eb.logger.Debug().Str("subscriber_id", id).Msg("new subscriber")

	unsubscribe := func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		if _, ok := eb.subscribers[id]; ok {
			close(ch)
			delete(eb.subscribers, id)
			eb.logger.Debug().Str("subscriber_id", id).Msg("subscriber removed")
		}
	}

	return ch, unsubscribe
}

// SubscriberCount returns the number of local subscribers
func (eb *EventBus) SubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// Close removes all subscribers
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for id, ch := range eb.subscribers {
		close(ch)
		delete(eb.subscribers, id)
	}
}
