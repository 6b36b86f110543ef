package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// Notification kinds and their icons. Unknown kinds fall back to info.
const (
	NotifySuccess  = "success"
	NotifyError    = "error"
	NotifyInfo     = "info"
	NotifyWarning  = "warning"
	NotifyQuiz     = "quiz"
	NotifyQuestion = "question"
	NotifyEmail    = "email"
	NotifyRank     = "rank"
)

var notificationIcons = map[string]string{
	NotifySuccess:  "✅",
	NotifyError:    "❌",
	NotifyInfo:     "ℹ️",
	NotifyWarning:  "⚠️",
	NotifyQuiz:     "📝",
	NotifyQuestion: "❓",
	NotifyEmail:    "📧",
	NotifyRank:     "🏆",
}

// defaultNotificationTTL is how long a notification stays active before it
// expires on its own.
const defaultNotificationTTL = 4 * time.Second

// Notification is one transient toast-style message.
type Notification struct {
	ID        string
	Kind      string
	Icon      string
	Message   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NotificationCenter collects notifications from the bus and from direct
// pushes, expiring them after their TTL.
type NotificationCenter struct {
	bus    busSubscriber
	logger utils.Logger
	now    func() time.Time

	mu     sync.Mutex
	active []Notification
}

func NewNotificationCenter(bus busSubscriber, logger utils.Logger) *NotificationCenter {
	return &NotificationCenter{
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// Run consumes notification events from the bus until ctx is cancelled.
func (c *NotificationCenter) Run(ctx context.Context) error {
	eventCh, err := c.bus.Subscribe(ctx, events.EventNotificationShow)
	if err != nil {
		return err
	}

	for event := range eventCh {
		var payload events.NotificationShowEvent
		if err := event.DecodeData(&payload); err != nil {
			c.logger.LogError(err, "Dropping malformed notification event", "event_id", event.ID)
			continue
		}

		ttl := defaultNotificationTTL
		if payload.Duration > 0 {
			ttl = time.Duration(payload.Duration) * time.Millisecond
		}
		c.push(event.ID, payload.Kind, payload.Message, ttl)
	}
	return nil
}

// Push adds a notification directly, bypassing the bus.
func (c *NotificationCenter) Push(kind, message string) Notification {
	return c.push(uuid.NewString(), kind, message, defaultNotificationTTL)
}

func (c *NotificationCenter) push(id, kind, message string, ttl time.Duration) Notification {
	icon, ok := notificationIcons[kind]
	if !ok {
		kind = NotifyInfo
		icon = notificationIcons[NotifyInfo]
	}

	now := c.now()
	notification := Notification{
		ID:        id,
		Kind:      kind,
		Icon:      icon,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	c.mu.Lock()
	c.active = append(c.active, notification)
	c.mu.Unlock()
	return notification
}

// Active returns the notifications that have not yet expired, pruning the
// rest.
func (c *NotificationCenter) Active() []Notification {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.active[:0]
	for _, n := range c.active {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		}
	}
	c.active = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes a notification before its TTL runs out.
func (c *NotificationCenter) Dismiss(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.active {
		if n.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}
