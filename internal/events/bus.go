package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"log/slog"
)

// Publisher is the write side of the broadcast bus. Views publish signals
// through it instead of mutating process globals.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// Bus is an in-process publish/subscribe bus built on Watermill's gochannel
// Pub/Sub. Signals are in-memory and unpersisted; subscribers that attach
// after a publish never see it.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *slog.Logger
}

// NewBus creates the process-wide event bus.
func NewBus(logger *slog.Logger) *Bus {
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
	}, watermill.NewSlogLogger(logger))

	return &Bus{
		pubsub: pubsub,
		logger: logger,
	}
}

// Publish broadcasts an event to every current subscriber of its type.
func (b *Bus) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(string(event.Type), msg); err != nil {
		b.logger.Error("Failed to publish event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Published event",
		"event_id", event.ID,
		"event_type", event.Type)

	return nil
}

// Subscribe returns a channel of events of the given type. The channel closes
// when ctx is cancelled or the bus shuts down.
func (b *Bus) Subscribe(ctx context.Context, eventType EventType) (<-chan *Event, error) {
	messages, err := b.pubsub.Subscribe(ctx, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", eventType, err)
	}

	out := make(chan *Event)
	go func() {
		defer close(out)
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.Error("Dropping undecodable event",
					"message_id", msg.UUID,
					"error", err)
				msg.Ack()
				continue
			}
			msg.Ack()

			select {
			case out <- &event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// MockPublisher is an in-memory Publisher for tests.
type MockPublisher struct {
	mu     sync.Mutex
	events []Event
}

// NewMockPublisher creates a new mock publisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// PublishedEvents returns all published events.
func (m *MockPublisher) PublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// ClearEvents clears all published events.
func (m *MockPublisher) ClearEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = nil
}
