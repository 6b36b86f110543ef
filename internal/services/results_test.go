package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

type MockResultsAPI struct {
	mock.Mock
}

func (m *MockResultsAPI) ListAttempts(ctx context.Context) ([]models.QuizAttempt, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizAttempt), args.Error(1)
}

func (m *MockResultsAPI) GetQuiz(ctx context.Context, id int64) (models.Quiz, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Quiz), args.Error(1)
}

func intPtr(v int) *int { return &v }

func TestFormatTimeTaken(t *testing.T) {
	tests := []struct {
		name    string
		seconds *int
		want    string
	}{
		{"not recorded", nil, "N/A"},
		{"zero is a real measurement", intPtr(0), "0:00"},
		{"under a minute", intPtr(4), "0:04"},
		{"over a minute", intPtr(72), "1:12"},
		{"exact minutes", intPtr(600), "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimeTaken(tt.seconds))
		})
	}
}

func TestBandFor(t *testing.T) {
	assert.Equal(t, BandPassHigh, BandFor(80))
	assert.Equal(t, BandPassHigh, BandFor(100))
	assert.Equal(t, BandPassLow, BandFor(79.9))
	assert.Equal(t, BandPassLow, BandFor(60))
	assert.Equal(t, BandFail, BandFor(59.9))
	assert.Equal(t, BandFail, BandFor(0))
}

func TestAllResults_ResolvesMissingTitles(t *testing.T) {
	api := &MockResultsAPI{}
	api.On("ListAttempts", mock.Anything).Return([]models.QuizAttempt{
		{ID: 1, QuizID: 10, StudentName: "alice", Score: 8, TotalQuestions: 10, CompletedAt: time.Now()},
		{ID: 2, QuizID: 11, QuizTitle: "Inlined", StudentName: "bob", Score: 5, TotalQuestions: 10, CompletedAt: time.Now()},
	}, nil)
	api.On("GetQuiz", mock.Anything, int64(10)).Return(models.Quiz{ID: 10, Title: "Resolved"}, nil)

	svc := NewResultsService(api, utils.NewDevelopmentLogger())
	rows, err := svc.AllResults(context.Background(), SortByStudent)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Resolved", rows[0].QuizTitle)
	assert.Equal(t, "Inlined", rows[1].QuizTitle)
	// An inlined title never triggers a lookup.
	api.AssertNotCalled(t, "GetQuiz", mock.Anything, int64(11))
}

func TestAllResults_TitleLookupFailureFallsBack(t *testing.T) {
	api := &MockResultsAPI{}
	api.On("ListAttempts", mock.Anything).Return([]models.QuizAttempt{
		{ID: 1, QuizID: 10, StudentName: "alice", Score: 3, TotalQuestions: 10, CompletedAt: time.Now()},
	}, nil)
	api.On("GetQuiz", mock.Anything, int64(10)).Return(models.Quiz{}, errors.New("boom"))

	svc := NewResultsService(api, utils.NewDevelopmentLogger())
	rows, err := svc.AllResults(context.Background(), SortByDate)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Quiz", rows[0].QuizTitle)
}

func TestAllResults_ListFailureIsTheOnlyTopLevelError(t *testing.T) {
	api := &MockResultsAPI{}
	api.On("ListAttempts", mock.Anything).Return(nil, errors.New("backend down"))

	svc := NewResultsService(api, utils.NewDevelopmentLogger())
	_, err := svc.AllResults(context.Background(), SortByDate)
	assert.ErrorContains(t, err, "failed to fetch student results")
}

func TestBuildRow_ZeroTotalGuard(t *testing.T) {
	api := &MockResultsAPI{}
	svc := NewResultsService(api, utils.NewDevelopmentLogger())

	row := svc.buildRow(context.Background(), models.QuizAttempt{
		ID:          1,
		QuizTitle:   "Edge",
		StudentName: "alice",
		Score:       0,
		CompletedAt: time.Now(),
	})

	assert.Equal(t, float64(0), row.Percentage)
	assert.Equal(t, 0, row.TotalQuestions)
	assert.Equal(t, "N/A", row.TimeTaken)
}

func TestStudentResults_FiltersAndSortsNewestFirst(t *testing.T) {
	older := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	api := &MockResultsAPI{}
	api.On("ListAttempts", mock.Anything).Return([]models.QuizAttempt{
		{ID: 1, QuizTitle: "Go Basics", StudentName: "alice", Score: 7, TotalQuestions: 10, CompletedAt: older},
		{ID: 2, QuizTitle: "Networking", StudentName: "bob", Score: 9, TotalQuestions: 10, CompletedAt: newer},
		{ID: 3, QuizTitle: "Networking", StudentName: "alice", Score: 10, TotalQuestions: 10, CompletedAt: newer},
	}, nil)

	svc := NewResultsService(api, utils.NewDevelopmentLogger())
	rows, err := svc.StudentResults(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Networking", rows[0].QuizTitle)
	assert.Equal(t, "Go Basics", rows[1].QuizTitle)
}

func TestDeduplicate(t *testing.T) {
	rows := []ResultRow{
		{ID: 1, StudentName: "alice", QuizTitle: "A", Percentage: 50},
		{ID: 1, StudentName: "alice", QuizTitle: "A", Percentage: 90},
		{ID: 1, StudentName: "bob", QuizTitle: "A"},
		{ID: 2, StudentName: "alice", QuizTitle: "A"},
	}

	unique := Deduplicate(rows)
	require.Len(t, unique, 3)
	// First occurrence wins.
	assert.Equal(t, float64(50), unique[0].Percentage)
}

func TestSortRows(t *testing.T) {
	base := []ResultRow{
		{StudentName: "bob", QuizTitle: "B", Percentage: 90, CompletedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{StudentName: "alice", QuizTitle: "A", Percentage: 50, CompletedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{StudentName: "carol", QuizTitle: "C", Percentage: 70, CompletedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}

	clone := func() []ResultRow {
		out := make([]ResultRow, len(base))
		copy(out, base)
		return out
	}

	t.Run("score descending", func(t *testing.T) {
		rows := clone()
		SortRows(rows, SortByScore)
		assert.Equal(t, []float64{90, 70, 50}, []float64{rows[0].Percentage, rows[1].Percentage, rows[2].Percentage})
	})

	t.Run("student ascending", func(t *testing.T) {
		rows := clone()
		SortRows(rows, SortByStudent)
		assert.Equal(t, "alice", rows[0].StudentName)
		assert.Equal(t, "carol", rows[2].StudentName)
	})

	t.Run("quiz ascending", func(t *testing.T) {
		rows := clone()
		SortRows(rows, SortByQuiz)
		assert.Equal(t, "A", rows[0].QuizTitle)
	})

	t.Run("unknown key falls back to date", func(t *testing.T) {
		rows := clone()
		SortRows(rows, SortKey("bogus"))
		assert.Equal(t, "alice", rows[0].StudentName) // newest first
	})
}

func TestResultRow_Passed(t *testing.T) {
	assert.True(t, ResultRow{Percentage: 60}.Passed())
	assert.False(t, ResultRow{Percentage: 59.99}.Passed())
}
