package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/quizmaster-app/quiz-client/internal/client"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// RetakeAPI is the backend surface of the retake permission gate.
type RetakeAPI interface {
	ListRetakePermissions(ctx context.Context) ([]models.RetakePermission, error)
	GrantRetakePermission(ctx context.Context, req client.GrantRetakeRequest) (models.RetakePermission, error)
}

// RetakeService caches the permission list in view state and answers the
// "may this student retake this quiz" question.
type RetakeService struct {
	api    RetakeAPI
	bus    events.Publisher
	logger utils.Logger

	mu          sync.RWMutex
	permissions []models.RetakePermission
}

func NewRetakeService(api RetakeAPI, bus events.Publisher, logger utils.Logger) *RetakeService {
	return &RetakeService{
		api:    api,
		bus:    bus,
		logger: logger,
	}
}

// Refresh replaces the cached permission list from the backend.
func (s *RetakeService) Refresh(ctx context.Context) error {
	permissions, err := s.api.ListRetakePermissions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch retake permissions: %w", err)
	}

	s.mu.Lock()
	s.permissions = permissions
	s.mu.Unlock()
	return nil
}

// IsAllowed reports whether an active permission matches the student and
// either the quiz id or the quiz title. The OR-match is intentional: the
// attempt store and the permission store do not always agree on identifiers.
func (s *RetakeService) IsAllowed(studentName string, quizID int64, quizTitle string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.permissions {
		if p.StudentName != studentName || !p.Active {
			continue
		}
		if (p.QuizID != 0 && p.QuizID == quizID) || (p.QuizTitle != "" && p.QuizTitle == quizTitle) {
			return true
		}
	}
	return false
}

// AllowRetake grants a permission, appends it to the local cache, and
// broadcasts the update. Grants are append-only.
func (s *RetakeService) AllowRetake(ctx context.Context, studentName string, quizID int64, quizTitle string) (models.RetakePermission, error) {
	permission, err := s.api.GrantRetakePermission(ctx, client.GrantRetakeRequest{
		StudentName: studentName,
		QuizID:      quizID,
		QuizTitle:   quizTitle,
	})
	if err != nil {
		return models.RetakePermission{}, fmt.Errorf("failed to grant retake permission: %w", err)
	}

	s.mu.Lock()
	s.permissions = append(s.permissions, permission)
	s.mu.Unlock()

	event, err := events.NewEvent(events.EventRetakePermissionUpdated, events.RetakePermissionUpdatedEvent{
		StudentName: studentName,
		QuizID:      quizID,
		QuizTitle:   quizTitle,
	})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		s.logger.LogError(err, "Failed to broadcast retake permission update",
			"student", studentName,
			"quiz_id", quizID)
	}

	s.logger.InfoContext(ctx, "Retake allowed",
		"student", studentName,
		"quiz_title", quizTitle)
	return permission, nil
}
