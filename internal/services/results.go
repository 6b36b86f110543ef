package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// fallbackQuizTitle is shown when an attempt's quiz cannot be resolved.
// Failing to resolve a title never drops the row.
const fallbackQuizTitle = "Quiz"

// SortKey selects the ordering of the admin results dashboard.
type SortKey string

const (
	SortByDate    SortKey = "date"    // completion date, newest first (default)
	SortByScore   SortKey = "score"   // percentage, highest first
	SortByStudent SortKey = "student" // student name, A to Z
	SortByQuiz    SortKey = "quiz"    // quiz title, A to Z
)

// ScoreBand is the three-tier color/icon banding of a percentage.
type ScoreBand string

const (
	BandPassHigh ScoreBand = "pass-high" // >= 80
	BandPassLow  ScoreBand = "pass-low"  // >= 60
	BandFail     ScoreBand = "fail"
)

// BandFor maps a percentage to its display band.
func BandFor(percentage float64) ScoreBand {
	switch {
	case percentage >= 80:
		return BandPassHigh
	case percentage >= 60:
		return BandPassLow
	default:
		return BandFail
	}
}

// FormatTimeTaken renders whole seconds as "m:ss". A nil input means the
// attempt never recorded an elapsed time and renders as "N/A"; zero seconds
// is a real measurement and renders as "0:00".
func FormatTimeTaken(seconds *int) string {
	if seconds == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d:%02d", *seconds/60, *seconds%60)
}

// ResultRow is one display-ready line of a results table.
type ResultRow struct {
	ID             int64
	QuizID         int64
	QuizTitle      string
	StudentName    string
	CorrectAnswers int
	TotalQuestions int
	Percentage     float64
	CompletedAt    time.Time
	TimeTaken      string
}

// Band returns the score band of the row.
func (r ResultRow) Band() ScoreBand {
	return BandFor(r.Percentage)
}

// Passed reports whether the row clears the 60% pass line.
func (r ResultRow) Passed() bool {
	return r.Percentage >= 60
}

// ResultsAPI is the backend surface the reconciliation pipeline needs.
type ResultsAPI interface {
	ListAttempts(ctx context.Context) ([]models.QuizAttempt, error)
	GetQuiz(ctx context.Context, id int64) (models.Quiz, error)
}

// ResultsService joins attempt records with quiz metadata into display rows.
type ResultsService struct {
	api    ResultsAPI
	logger utils.Logger
}

func NewResultsService(api ResultsAPI, logger utils.Logger) *ResultsService {
	return &ResultsService{
		api:    api,
		logger: logger,
	}
}

// AllResults builds the admin dashboard: every attempt, deduplicated and
// sorted. A failure to fetch the attempt list is the only top-level error;
// per-row title resolution failures degrade to the fallback title.
func (s *ResultsService) AllResults(ctx context.Context, sortBy SortKey) ([]ResultRow, error) {
	attempts, err := s.api.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch student results: %w", err)
	}

	rows := s.reconcile(ctx, attempts)
	rows = Deduplicate(rows)
	SortRows(rows, sortBy)
	return rows, nil
}

// StudentResults builds one student's view, newest first.
func (s *ResultsService) StudentResults(ctx context.Context, studentName string) ([]ResultRow, error) {
	attempts, err := s.api.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quiz results: %w", err)
	}

	own := attempts[:0:0]
	for _, attempt := range attempts {
		if attempt.StudentName == studentName {
			own = append(own, attempt)
		}
	}

	rows := s.reconcile(ctx, own)
	SortRows(rows, SortByDate)
	return rows, nil
}

// reconcile resolves missing quiz titles with a full parallel fan-out. Each
// branch swallows its own failure; a slow or broken quiz lookup never aborts
// the siblings.
func (s *ResultsService) reconcile(ctx context.Context, attempts []models.QuizAttempt) []ResultRow {
	rows := make([]ResultRow, len(attempts))

	var g errgroup.Group
	for i, attempt := range attempts {
		g.Go(func() error {
			rows[i] = s.buildRow(ctx, attempt)
			return nil
		})
	}
	_ = g.Wait() // branches never return errors

	return rows
}

func (s *ResultsService) buildRow(ctx context.Context, attempt models.QuizAttempt) ResultRow {
	quizID := attempt.ResolvedQuizID()

	title := attempt.QuizTitle
	if title == "" && quizID != 0 {
		quiz, err := s.api.GetQuiz(ctx, quizID)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to resolve quiz title",
				"quiz_id", quizID,
				"attempt_id", attempt.ID,
				"error", err)
		} else {
			title = quiz.Title
		}
	}
	if title == "" {
		title = fallbackQuizTitle
	}

	// A zero or missing total yields a degenerate percentage, not a
	// rejected record.
	total := attempt.TotalQuestions
	if total <= 0 {
		total = 1
	}

	return ResultRow{
		ID:             attempt.ID,
		QuizID:         quizID,
		QuizTitle:      title,
		StudentName:    attempt.StudentName,
		CorrectAnswers: attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     float64(attempt.Score) / float64(total) * 100,
		CompletedAt:    attempt.CompletedAt,
		TimeTaken:      FormatTimeTaken(attempt.TimeTaken),
	}
}

// Deduplicate keeps the first occurrence of each (id, studentName, quizTitle)
// combination, in input order.
func Deduplicate(rows []ResultRow) []ResultRow {
	type key struct {
		id      int64
		student string
		quiz    string
	}

	seen := make(map[key]struct{}, len(rows))
	unique := rows[:0:0]
	for _, row := range rows {
		k := key{id: row.ID, student: row.StudentName, quiz: row.QuizTitle}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, row)
	}
	return unique
}

// SortRows orders rows in place by the given key. Unknown keys fall back to
// the date ordering.
func SortRows(rows []ResultRow, sortBy SortKey) {
	sort.SliceStable(rows, func(i, j int) bool {
		switch sortBy {
		case SortByScore:
			return rows[i].Percentage > rows[j].Percentage
		case SortByStudent:
			return strings.Compare(rows[i].StudentName, rows[j].StudentName) < 0
		case SortByQuiz:
			return strings.Compare(rows[i].QuizTitle, rows[j].QuizTitle) < 0
		default:
			return rows[i].CompletedAt.After(rows[j].CompletedAt)
		}
	})
}
