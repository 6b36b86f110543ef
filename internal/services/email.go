package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quizmaster-app/quiz-client/internal/client"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// EmailAPI is the backend surface of the notification flows.
type EmailAPI interface {
	EmailStats(ctx context.Context) (models.EmailStats, error)
	LogEmail(ctx context.Context, req client.EmailLogRequest) error
	LogResultEmail(ctx context.Context, req client.ResultEmailLogRequest) error
	SendReminders(ctx context.Context, quizID int64) (client.SendRemindersResult, error)
	ListStudents(ctx context.Context) ([]models.Student, error)
	ListAttempts(ctx context.Context) ([]models.QuizAttempt, error)
	GetQuiz(ctx context.Context, id int64) (models.Quiz, error)
}

// ResultEmail is a composed result notification, one per graded attempt.
type ResultEmail struct {
	Email       string
	StudentName string
	QuizTitle   string
	Score       int
	Total       int
	Percentage  float64
	Grade       string
}

// EmailService drives reminder and result notifications. Delivery itself is
// the backend's job; this side composes, dispatches, and logs.
type EmailService struct {
	api    EmailAPI
	bus    events.Publisher
	logger utils.Logger

	// localLogFile mirrors the backend email log on disk when set, so
	// deliveries stay auditable while the backend log endpoint is down.
	localLogFile string
}

func NewEmailService(api EmailAPI, bus events.Publisher, localLogFile string, logger utils.Logger) *EmailService {
	return &EmailService{
		api:          api,
		bus:          bus,
		localLogFile: localLogFile,
		logger:       logger,
	}
}

// SendQuizReminders asks the backend to mail a reminder for the quiz to every
// active student, then broadcasts a notification with the outcome.
func (s *EmailService) SendQuizReminders(ctx context.Context, quizID int64) (client.SendRemindersResult, error) {
	result, err := s.api.SendReminders(ctx, quizID)
	if err != nil {
		s.notify(ctx, NotifyError, "Failed to send reminder emails")
		return client.SendRemindersResult{}, fmt.Errorf("failed to send reminders: %w", err)
	}

	s.notify(ctx, NotifyEmail, fmt.Sprintf("Reminder emails sent to %d students", result.Count))
	s.logger.InfoContext(ctx, "Reminders dispatched", "quiz_id", quizID, "count", result.Count)
	return result, nil
}

// SendQuizResults composes a result email per attempt of the quiz and logs
// each delivery. A single failed log does not abort the batch.
func (s *EmailService) SendQuizResults(ctx context.Context, quizID int64) ([]ResultEmail, error) {
	quiz, err := s.api.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quiz: %w", err)
	}

	attempts, err := s.api.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch attempts: %w", err)
	}

	students, err := s.api.ListStudents(ctx)
	if err != nil {
		s.logger.LogError(err, "Failed to fetch accounts for result emails")
		students = nil
	}

	var sent []ResultEmail
	for _, attempt := range attempts {
		if attempt.ResolvedQuizID() != quizID {
			continue
		}

		email := resolveStudentEmail(students, attempt.StudentName)
		total := attempt.TotalQuestions
		if total <= 0 {
			total = 1
		}
		percentage := float64(attempt.Score) / float64(total) * 100

		result := ResultEmail{
			Email:       email,
			StudentName: attempt.StudentName,
			QuizTitle:   quiz.Title,
			Score:       attempt.Score,
			Total:       total,
			Percentage:  percentage,
			Grade:       Grade(percentage),
		}

		if err := s.api.LogResultEmail(ctx, client.ResultEmailLogRequest{
			Email:     email,
			QuizID:    quizID,
			QuizTitle: quiz.Title,
		}); err != nil {
			s.logger.LogError(err, "Failed to log result email",
				"email", email,
				"quiz_id", quizID)
			s.appendLocalLog(models.EmailLog{
				Email:     email,
				Type:      models.EmailTypeResults,
				QuizID:    quizID,
				QuizTitle: quiz.Title,
				Status:    "sent",
			})
		}
		sent = append(sent, result)
	}

	s.notify(ctx, NotifyEmail, fmt.Sprintf("Result emails sent for %q", quiz.Title))
	return sent, nil
}

// Stats fetches the email counters for the dashboard, falling back to zero
// values when the endpoint fails so the dashboard still renders.
func (s *EmailService) Stats(ctx context.Context) models.EmailStats {
	stats, err := s.api.EmailStats(ctx)
	if err != nil {
		s.logger.LogError(err, "Failed to fetch email stats")
		return models.EmailStats{}
	}
	return stats
}

// LogEmail records a delivery backend-side, mirroring it to the local log
// file when the backend write fails.
func (s *EmailService) LogEmail(ctx context.Context, entry client.EmailLogRequest) error {
	if err := s.api.LogEmail(ctx, entry); err != nil {
		s.logger.LogError(err, "Failed to log email, keeping local copy", "email", entry.Email)
		s.appendLocalLog(models.EmailLog{
			Email:     entry.Email,
			Type:      entry.Type,
			QuizID:    entry.QuizID,
			QuizTitle: entry.QuizTitle,
			Status:    entry.Status,
		})
		return fmt.Errorf("failed to log email: %w", err)
	}
	return nil
}

// StudentDisplayName maps a logged email address back to an account name.
// Backend logs sometimes carry synthesized username@example.com addresses,
// so those match by local part too; with no account match the local part of
// the address is used as-is.
func StudentDisplayName(students []models.Student, email string) string {
	for _, student := range students {
		if student.Email != "" && student.Email == email {
			return student.Username
		}
		if student.Username+"@example.com" == email {
			return student.Username
		}
	}
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}

func resolveStudentEmail(students []models.Student, studentName string) string {
	for _, student := range students {
		if student.Username == studentName && student.Email != "" {
			return student.Email
		}
	}
	return studentName + "@example.com"
}

func (s *EmailService) appendLocalLog(entry models.EmailLog) {
	if s.localLogFile == "" {
		return
	}

	now := time.Now()
	entry.Timestamp = &now

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.localLogFile), 0o700); err != nil {
		s.logger.LogError(err, "Failed to create email log directory")
		return
	}
	f, err := os.OpenFile(s.localLogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		s.logger.LogError(err, "Failed to open local email log")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		s.logger.LogError(err, "Failed to append local email log")
	}
}

func (s *EmailService) notify(ctx context.Context, kind, message string) {
	event, err := events.NewEvent(events.EventNotificationShow, events.NotificationShowEvent{
		Kind:    kind,
		Message: message,
	})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		s.logger.LogError(err, "Failed to broadcast notification")
	}
}
