package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// ErrStaleRefresh reports that a newer Refresh superseded this one while its
// fan-out was in flight; the caller should drop the result.
var ErrStaleRefresh = errors.New("refresh superseded by a newer one")

// CatalogFilter narrows the student's quiz list.
type CatalogFilter string

const (
	FilterAll       CatalogFilter = "all"
	FilterTaken     CatalogFilter = "taken"
	FilterAvailable CatalogFilter = "available"
)

// QuizSummary is a catalog row: the quiz plus its fetched question count and
// the per-student completion flag.
type QuizSummary struct {
	models.Quiz
	QuestionCount int
	Taken         bool
}

// CatalogAPI is the backend surface of the quiz catalog.
type CatalogAPI interface {
	ListQuizzes(ctx context.Context) ([]models.Quiz, error)
	ListQuestions(ctx context.Context, quizID int64) ([]models.Question, error)
	GetAttempt(ctx context.Context, quizID int64, studentName string) (*models.QuizAttempt, error)
	DeleteQuiz(ctx context.Context, id int64) error
}

// CatalogService loads the quiz catalog with its per-quiz fan-outs. Refreshes
// are epoch-guarded: results of a superseded fan-out are discarded instead of
// clobbering newer state.
type CatalogService struct {
	api    CatalogAPI
	bus    events.Publisher
	logger utils.Logger

	epoch atomic.Uint64

	mu        sync.RWMutex
	summaries []QuizSummary
}

func NewCatalogService(api CatalogAPI, bus events.Publisher, logger utils.Logger) *CatalogService {
	return &CatalogService{
		api:    api,
		bus:    bus,
		logger: logger,
	}
}

// Refresh reloads the catalog. For a student, studentName drives the taken
// checks; pass an empty name for the admin view. An empty (non-nil) result
// with a nil error means "no quizzes available", which is distinct from a
// fetch failure.
func (s *CatalogService) Refresh(ctx context.Context, studentName string) ([]QuizSummary, error) {
	epoch := s.epoch.Add(1)

	summaries, err := s.load(ctx, studentName)
	if err != nil {
		return nil, err
	}

	if s.epoch.Load() != epoch {
		s.logger.DebugContext(ctx, "Discarding stale catalog refresh", "epoch", epoch)
		return nil, ErrStaleRefresh
	}

	s.mu.Lock()
	s.summaries = summaries
	s.mu.Unlock()
	return summaries, nil
}

// Current returns the last successfully refreshed catalog.
func (s *CatalogService) Current() []QuizSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]QuizSummary, len(s.summaries))
	copy(out, s.summaries)
	return out
}

func (s *CatalogService) load(ctx context.Context, studentName string) ([]QuizSummary, error) {
	quizzes, err := s.api.ListQuizzes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quizzes: %w", err)
	}

	summaries := make([]QuizSummary, len(quizzes))

	// Full parallel fan-out: question counts and attempt checks per quiz.
	// Every branch falls back to its default on failure (zero questions,
	// not taken) without disturbing the others.
	var g errgroup.Group
	for i, quiz := range quizzes {
		g.Go(func() error {
			summaries[i] = QuizSummary{Quiz: quiz}

			questions, err := s.api.ListQuestions(ctx, quiz.ID)
			if err != nil {
				s.logger.DebugContext(ctx, "Failed to count questions",
					"quiz_id", quiz.ID,
					"error", err)
			} else {
				summaries[i].QuestionCount = len(questions)
			}

			if studentName != "" {
				attempt, err := s.api.GetAttempt(ctx, quiz.ID, studentName)
				if err == nil && attempt != nil {
					summaries[i].Taken = true
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return summaries, nil
}

// FilterQuizzes applies the search term (case-insensitive substring over
// title and description) and the taken/available filter.
func FilterQuizzes(summaries []QuizSummary, search string, filter CatalogFilter) []QuizSummary {
	needle := strings.ToLower(search)

	out := summaries[:0:0]
	for _, summary := range summaries {
		if needle != "" &&
			!strings.Contains(strings.ToLower(summary.Title), needle) &&
			!strings.Contains(strings.ToLower(summary.Description), needle) {
			continue
		}
		switch filter {
		case FilterTaken:
			if !summary.Taken {
				continue
			}
		case FilterAvailable:
			if summary.Taken {
				continue
			}
		}
		out = append(out, summary)
	}
	return out
}

// catalogInvalidators are the broadcasts after which the catalog must
// re-fetch.
var catalogInvalidators = []events.EventType{
	events.EventQuizCreated,
	events.EventQuizDeleted,
	events.EventQuizSubmitted,
	events.EventQuestionsUpdated,
}

type busSubscriber interface {
	Subscribe(ctx context.Context, eventType events.EventType) (<-chan *events.Event, error)
}

// Watch refreshes the catalog whenever an invalidating broadcast arrives, until
// ctx is cancelled. Superseded refreshes are dropped silently.
func (s *CatalogService) Watch(ctx context.Context, bus busSubscriber, studentName string) error {
	merged := make(chan *events.Event)
	for _, eventType := range catalogInvalidators {
		ch, err := bus.Subscribe(ctx, eventType)
		if err != nil {
			return err
		}
		go func() {
			for event := range ch {
				select {
				case merged <- event:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-merged:
			s.logger.DebugContext(ctx, "Catalog invalidated", "event_type", event.Type)
			if _, err := s.Refresh(ctx, studentName); err != nil && !errors.Is(err, ErrStaleRefresh) {
				s.logger.LogError(err, "Failed to refresh catalog", "event_type", event.Type)
			}
		}
	}
}

// DeleteQuiz removes a quiz and broadcasts the deletion so dependent views
// re-fetch.
func (s *CatalogService) DeleteQuiz(ctx context.Context, id int64) error {
	if err := s.api.DeleteQuiz(ctx, id); err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	event, err := events.NewEvent(events.EventQuizDeleted, events.QuizDeletedEvent{QuizID: id})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		s.logger.LogError(err, "Failed to broadcast quiz deletion", "quiz_id", id)
	}
	return nil
}
