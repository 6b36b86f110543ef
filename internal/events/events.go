package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the broadcast signals views exchange. Each signal is a
// fire-and-forget refresh trigger; none of them carries authoritative state.
type EventType string

const (
	EventQuizCreated   EventType = "quiz.created"
	EventQuizDeleted   EventType = "quiz.deleted"
	EventQuizSubmitted EventType = "quiz.submitted"

	EventQuestionsUpdated EventType = "questions.updated"

	EventUserRegistered EventType = "user.registered"

	EventRetakePermissionUpdated EventType = "retake_permission.updated"

	EventAdminModalRequested EventType = "admin_modal.requested"

	EventNotificationShow EventType = "notification.show"
)

// Event is the envelope for all broadcast signals.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent wraps a payload into an envelope with a fresh ID.
func NewEvent(eventType EventType, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal event payload: %w", err)
		}
		raw = encoded
	}

	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "quiz-client",
		Data:      raw,
	}, nil
}

// DecodeData unmarshals the event payload into dest.
func (e *Event) DecodeData(dest any) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("event %s has no payload", e.ID)
	}
	if err := json.Unmarshal(e.Data, dest); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// Event payloads.

type QuizCreatedEvent struct {
	QuizID    int64  `json:"quizId"`
	QuizTitle string `json:"quizTitle"`
}

type QuizDeletedEvent struct {
	QuizID int64 `json:"quizId"`
}

type QuizSubmittedEvent struct {
	QuizID      int64  `json:"quizId"`
	StudentName string `json:"studentName"`
}

type UserRegisteredEvent struct {
	Username string `json:"username"`
}

type RetakePermissionUpdatedEvent struct {
	StudentName string `json:"studentName"`
	QuizID      int64  `json:"quizId"`
	QuizTitle   string `json:"quizTitle"`
}

type NotificationShowEvent struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Duration int64  `json:"duration,omitempty"` // milliseconds; 0 means the default
}
