package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/quizmaster-app/quiz-client/internal/client"
	apperrors "github.com/quizmaster-app/quiz-client/internal/errors"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// QuizForm carries the authoring inputs for a new quiz.
type QuizForm struct {
	Title       string `validate:"required,min=3,max=100"`
	Description string `validate:"required,min=5"`
	TimeLimit   int    `validate:"required,min=1,max=180"` // minutes
}

var quizFormMessages = map[string]string{
	"Title":       "Quiz title must be between 3 and 100 characters.",
	"Description": "Quiz description is required (minimum 5 characters).",
	"TimeLimit":   "Time limit must be a number between 1 and 180 minutes.",
}

// PoolQuestion is a question from the authoring pool, annotated with the quiz
// it currently belongs to.
type PoolQuestion struct {
	models.Question
	QuizID    int64
	QuizTitle string
}

// QuizDraft tracks the author's question selection, preserving toggle order.
type QuizDraft struct {
	selected []int64
}

// Toggle adds the question to the selection, or removes it when already
// selected.
func (d *QuizDraft) Toggle(questionID int64) {
	if i := slices.Index(d.selected, questionID); i >= 0 {
		d.selected = slices.Delete(d.selected, i, i+1)
		return
	}
	d.selected = append(d.selected, questionID)
}

func (d *QuizDraft) IsSelected(questionID int64) bool {
	return slices.Contains(d.selected, questionID)
}

func (d *QuizDraft) Selected() []int64 {
	return slices.Clone(d.selected)
}

func (d *QuizDraft) Count() int {
	return len(d.selected)
}

// AuthoringAPI is the backend surface of quiz creation.
type AuthoringAPI interface {
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
	ListQuestions(ctx context.Context, quizID int64) ([]models.Question, error)
	CreateQuiz(ctx context.Context, req client.CreateQuizRequest) (models.Quiz, error)
	AddQuestion(ctx context.Context, quizID int64, req client.QuestionRequest) (models.Question, error)
}

type reminderSender interface {
	SendQuizReminders(ctx context.Context, quizID int64) (client.SendRemindersResult, error)
}

// AuthoringService builds a quiz from a form plus a selected subset of the
// existing question pool.
type AuthoringService struct {
	api      AuthoringAPI
	emails   reminderSender
	bus      events.Publisher
	validate *validator.Validate
	logger   utils.Logger
}

func NewAuthoringService(api AuthoringAPI, emails reminderSender, bus events.Publisher, logger utils.Logger) *AuthoringService {
	return &AuthoringService{
		api:      api,
		emails:   emails,
		bus:      bus,
		validate: validator.New(),
		logger:   logger,
	}
}

// ValidateForm checks the quiz form and reports every failing field with its
// user-facing message.
func (s *AuthoringService) ValidateForm(form QuizForm) apperrors.ValidationErrors {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}
	return apperrors.ToValidationErrors(err, quizFormMessages)
}

// LoadQuestionPool gathers every question across all quizzes. A quiz whose
// question fetch fails simply contributes nothing.
func (s *AuthoringService) LoadQuestionPool(ctx context.Context) ([]PoolQuestion, error) {
	quizzes, err := s.api.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quizzes: %w", err)
	}

	var pool []PoolQuestion
	for _, quiz := range quizzes {
		questions, err := s.api.ListQuestions(ctx, quiz.ID)
		if err != nil {
			s.logger.DebugContext(ctx, "Failed to fetch questions for quiz",
				"quiz_id", quiz.ID,
				"error", err)
			continue
		}
		for _, question := range questions {
			pool = append(pool, PoolQuestion{
				Question:  question,
				QuizID:    quiz.ID,
				QuizTitle: quiz.Title,
			})
		}
	}
	return pool, nil
}

// CreateQuiz validates the form, creates the quiz, copies the selected
// questions into it, broadcasts the creation, and dispatches reminder
// emails. A reminder failure is logged but does not fail the creation.
func (s *AuthoringService) CreateQuiz(ctx context.Context, form QuizForm, selected []PoolQuestion) (models.Quiz, error) {
	if errs := s.ValidateForm(form); len(errs) > 0 {
		return models.Quiz{}, errs.First()
	}
	if len(selected) == 0 {
		return models.Quiz{}, apperrors.NewValidationError("Questions",
			"Please select at least one question for the quiz.")
	}

	quiz, err := s.api.CreateQuiz(ctx, client.CreateQuizRequest{
		Title:       form.Title,
		Description: form.Description,
		TimeLimit:   form.TimeLimit,
	})
	if err != nil {
		return models.Quiz{}, fmt.Errorf("failed to create quiz: %w", err)
	}

	for _, question := range selected {
		if _, err := s.api.AddQuestion(ctx, quiz.ID, client.QuestionRequest{
			QuestionText: question.QuestionText,
			QuestionType: question.QuestionType,
			Options:      question.Options,
		}); err != nil {
			return models.Quiz{}, fmt.Errorf("failed to add question %d to quiz %d: %w",
				question.ID, quiz.ID, err)
		}
	}

	event, err := events.NewEvent(events.EventQuizCreated, events.QuizCreatedEvent{
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
	})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		s.logger.LogError(err, "Failed to broadcast quiz creation", "quiz_id", quiz.ID)
	}

	if s.emails != nil {
		if result, err := s.emails.SendQuizReminders(ctx, quiz.ID); err != nil {
			s.logger.LogError(err, "Failed to send reminder emails", "quiz_id", quiz.ID)
		} else {
			s.logger.InfoContext(ctx, "Reminder emails sent",
				"quiz_id", quiz.ID,
				"count", result.Count)
		}
	}

	s.logger.InfoContext(ctx, "Quiz created",
		"quiz_id", quiz.ID,
		"title", quiz.Title,
		"questions", len(selected))
	return quiz, nil
}
