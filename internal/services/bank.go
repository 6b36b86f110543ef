package services

import (
	"context"
	"fmt"

	"github.com/quizmaster-app/quiz-client/internal/client"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// BankQuestion is a question bank row, annotated with its owning quiz.
type BankQuestion struct {
	models.Question
	QuizID    int64
	QuizTitle string
}

// QuizLabel is the grouping label used by the bank filter. Questions whose
// quiz title is unknown are grouped by id.
func (q BankQuestion) QuizLabel() string {
	if q.QuizTitle != "" {
		return q.QuizTitle
	}
	return fmt.Sprintf("Quiz ID: %d", q.QuizID)
}

// QuestionEdit is the in-progress edit of one question. Option mutations keep
// the single-correct invariant: marking an option correct clears the flag
// everywhere else.
type QuestionEdit struct {
	QuestionText string
	Options      []models.Option
}

// SetText updates the question text.
func (e *QuestionEdit) SetText(text string) {
	e.QuestionText = text
}

// SetOptionText updates one option's text.
func (e *QuestionEdit) SetOptionText(index int, text string) {
	if index < 0 || index >= len(e.Options) {
		return
	}
	e.Options[index].OptionText = text
}

// SetOptionCorrect marks one option correct and clears every other flag.
// Clearing the flag (correct=false) touches only that option.
func (e *QuestionEdit) SetOptionCorrect(index int, correct bool) {
	if index < 0 || index >= len(e.Options) {
		return
	}
	e.Options[index].IsCorrect = correct
	if !correct {
		return
	}
	for i := range e.Options {
		if i != index {
			e.Options[i].IsCorrect = false
		}
	}
}

// AddOption appends a blank incorrect option.
func (e *QuestionEdit) AddOption() {
	e.Options = append(e.Options, models.Option{})
}

// RemoveOption drops an option, refusing to go below two.
func (e *QuestionEdit) RemoveOption(index int) bool {
	if len(e.Options) <= 2 || index < 0 || index >= len(e.Options) {
		return false
	}
	e.Options = append(e.Options[:index], e.Options[index+1:]...)
	return true
}

// BankAPI is the backend surface of the question bank.
type BankAPI interface {
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
	ListQuestions(ctx context.Context, quizID int64) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, questionID int64, req client.QuestionRequest) error
	DeleteQuestion(ctx context.Context, questionID int64) error
}

// BankService lists, edits, and deletes questions grouped by quiz.
type BankService struct {
	api    BankAPI
	bus    events.Publisher
	logger utils.Logger
}

func NewBankService(api BankAPI, bus events.Publisher, logger utils.Logger) *BankService {
	return &BankService{
		api:    api,
		bus:    bus,
		logger: logger,
	}
}

// LoadAll collects every question across all quizzes. Per-quiz fetch
// failures are swallowed; only the quiz list fetch can fail the load.
func (s *BankService) LoadAll(ctx context.Context) ([]BankQuestion, error) {
	quizzes, err := s.api.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	var all []BankQuestion
	for _, quiz := range quizzes {
		questions, err := s.api.ListQuestions(ctx, quiz.ID)
		if err != nil {
			s.logger.DebugContext(ctx, "Failed to fetch questions for quiz",
				"quiz_id", quiz.ID,
				"error", err)
			continue
		}
		for _, question := range questions {
			all = append(all, BankQuestion{
				Question:  question,
				QuizID:    quiz.ID,
				QuizTitle: quiz.Title,
			})
		}
	}
	return all, nil
}

// StartEdit snapshots a question into an edit form. Options are copied so an
// abandoned edit leaves the row untouched.
func (s *BankService) StartEdit(question BankQuestion) *QuestionEdit {
	options := make([]models.Option, len(question.Options))
	copy(options, question.Options)
	return &QuestionEdit{
		QuestionText: question.QuestionText,
		Options:      options,
	}
}

// SaveEdit writes the edit back and broadcasts the change. The question type
// is not editable and carries over from the original.
func (s *BankService) SaveEdit(ctx context.Context, question BankQuestion, edit *QuestionEdit) error {
	if err := s.api.UpdateQuestion(ctx, question.ID, client.QuestionRequest{
		QuestionText: edit.QuestionText,
		QuestionType: question.QuestionType,
		Options:      edit.Options,
	}); err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	s.broadcastQuestionsUpdated(ctx)
	return nil
}

// Delete removes a question and broadcasts the change.
func (s *BankService) Delete(ctx context.Context, questionID int64) error {
	if err := s.api.DeleteQuestion(ctx, questionID); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.broadcastQuestionsUpdated(ctx)
	return nil
}

// FilterByQuiz keeps the questions whose quiz label matches. "all" keeps
// everything.
func FilterByQuiz(questions []BankQuestion, filter string) []BankQuestion {
	if filter == "all" || filter == "" {
		return questions
	}
	out := questions[:0:0]
	for _, question := range questions {
		if question.QuizLabel() == filter {
			out = append(out, question)
		}
	}
	return out
}

func (s *BankService) broadcastQuestionsUpdated(ctx context.Context) {
	event, err := events.NewEvent(events.EventQuestionsUpdated, nil)
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		s.logger.LogError(err, "Failed to broadcast question update")
	}
}
