package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// AccountRow is an account as shown on the admin management screen.
type AccountRow struct {
	ID         int64
	Name       string
	Email      string
	Role       string
	Active     bool
	JoinedDate string
}

// AccountsAPI is the backend surface of account management.
type AccountsAPI interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	UpdateStudentStatus(ctx context.Context, studentID int64, active bool) error
	DeleteStudent(ctx context.Context, studentID int64) error
}

// AccountsService lists and administers student accounts.
type AccountsService struct {
	api    AccountsAPI
	logger utils.Logger
}

func NewAccountsService(api AccountsAPI, logger utils.Logger) *AccountsService {
	return &AccountsService{
		api:    api,
		logger: logger,
	}
}

// List returns the non-deleted accounts, newest joiners first. Soft-deleted
// rows are hidden but their usernames stay reserved backend-side.
func (s *AccountsService) List(ctx context.Context) ([]AccountRow, error) {
	students, err := s.api.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	rows := make([]AccountRow, 0, len(students))
	for _, student := range students {
		if student.Deleted {
			continue
		}
		row := AccountRow{
			ID:     student.ID,
			Name:   student.Username,
			Email:  student.Email,
			Role:   models.RoleStudent,
			Active: student.IsActive(),
		}
		if student.CreatedAt != nil {
			row.JoinedDate = student.CreatedAt.Format("2006-01-02")
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].JoinedDate > rows[j].JoinedDate
	})
	return rows, nil
}

// SetActive toggles an account between active and deactivated. A deactivated
// account keeps its history but cannot log in.
func (s *AccountsService) SetActive(ctx context.Context, studentID int64, active bool) error {
	if err := s.api.UpdateStudentStatus(ctx, studentID, active); err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	s.logger.InfoContext(ctx, "Account status updated",
		"student_id", studentID,
		"active", active)
	return nil
}

// Watch re-lists accounts after every registration broadcast, handing the
// fresh rows to onUpdate, until ctx is cancelled.
func (s *AccountsService) Watch(ctx context.Context, bus busSubscriber, onUpdate func([]AccountRow)) error {
	registered, err := bus.Subscribe(ctx, events.EventUserRegistered)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-registered:
			if !ok {
				return nil
			}
			s.logger.DebugContext(ctx, "Account list invalidated", "event_type", event.Type)
			rows, err := s.List(ctx)
			if err != nil {
				s.logger.LogError(err, "Failed to refresh accounts after registration")
				continue
			}
			onUpdate(rows)
		}
	}
}

// Delete removes an account permanently. The username stays reserved.
func (s *AccountsService) Delete(ctx context.Context, studentID int64) error {
	if err := s.api.DeleteStudent(ctx, studentID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	s.logger.InfoContext(ctx, "Account deleted", "student_id", studentID)
	return nil
}
