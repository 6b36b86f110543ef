package client_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizmaster-app/quiz-client/internal/client"
	"github.com/quizmaster-app/quiz-client/internal/fakeapi"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

func newTestClient(t *testing.T) (*client.Client, *fakeapi.Server) {
	t.Helper()
	backend := fakeapi.New()
	srv := httptest.NewServer(backend.Handler())
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api", utils.NewDevelopmentLogger()), backend
}

func TestQuizLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateQuiz(ctx, client.CreateQuizRequest{
		Title:       "Go Basics",
		Description: "an introduction",
		TimeLimit:   30,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Go Basics", created.Title)

	fetched, err := c.GetQuiz(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	list, err := c.ListQuizzes(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.DeleteQuiz(ctx, created.ID))

	_, err = c.GetQuiz(ctx, created.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestQuestionLifecycle(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()

	quiz := backend.SeedQuiz(models.Quiz{Title: "Go Basics", TimeLimit: 30})

	question, err := c.AddQuestion(ctx, quiz.ID, client.QuestionRequest{
		QuestionText: "What is a goroutine?",
		QuestionType: models.QuestionSingleChoice,
		Options: []models.Option{
			{OptionText: "a thread"},
			{OptionText: "a lightweight coroutine", IsCorrect: true},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, question.ID)

	questions, err := c.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, "What is a goroutine?", questions[0].QuestionText)

	require.NoError(t, c.UpdateQuestion(ctx, question.ID, client.QuestionRequest{
		QuestionText: "What is a goroutine really?",
		QuestionType: models.QuestionSingleChoice,
		Options:      questions[0].Options,
	}))

	questions, err = c.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "What is a goroutine really?", questions[0].QuestionText)

	require.NoError(t, c.DeleteQuestion(ctx, question.ID))
	questions, err = c.ListQuestions(ctx, quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, questions)
}

func TestAttempts(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()

	quiz := backend.SeedQuiz(models.Quiz{Title: "Go Basics"})

	_, err := c.GetAttempt(ctx, quiz.ID, "alice")
	assert.ErrorIs(t, err, client.ErrNotFound)

	submitted, err := c.SubmitAttempt(ctx, models.QuizAttempt{
		QuizID:         quiz.ID,
		StudentName:    "alice",
		Score:          8,
		TotalQuestions: 10,
	})
	require.NoError(t, err)
	assert.NotZero(t, submitted.ID)

	attempt, err := c.GetAttempt(ctx, quiz.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, 8, attempt.Score)

	attempts, err := c.ListAttempts(ctx)
	require.NoError(t, err)
	assert.Len(t, attempts, 1)
}

func TestStudents(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	created, err := c.CreateStudent(ctx, client.CreateStudentRequest{
		Username: "alice",
		Email:    "alice@corp.example",
		Password: "secret123",
	})
	require.NoError(t, err)

	require.NoError(t, c.UpdateStudentStatus(ctx, created.ID, false))

	students, err := c.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.False(t, students[0].IsActive())

	require.NoError(t, c.DeleteStudent(ctx, created.ID))

	// Soft delete keeps the record visible with the deleted marker.
	students, err = c.ListStudents(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.True(t, students[0].Deleted)
}

func TestLogin(t *testing.T) {
	c, _ := newTestClient(t)

	session, err := c.Login(context.Background(), "alice", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, "alice", session.Username)
	assert.Equal(t, models.RoleStudent, session.UserRole)
	assert.NotEmpty(t, session.SessionToken)
}

func TestRetakePermissions(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	granted, err := c.GrantRetakePermission(ctx, client.GrantRetakeRequest{
		StudentName: "alice",
		QuizID:      1,
		QuizTitle:   "Go Basics",
	})
	require.NoError(t, err)
	assert.True(t, granted.Active)

	permissions, err := c.ListRetakePermissions(ctx)
	require.NoError(t, err)
	require.Len(t, permissions, 1)
	assert.Equal(t, "alice", permissions[0].StudentName)
}

func TestEmailEndpoints(t *testing.T) {
	c, backend := newTestClient(t)
	ctx := context.Background()

	quiz := backend.SeedQuiz(models.Quiz{Title: "Go Basics"})
	backend.SeedStudent(models.Student{Username: "alice", Email: "alice@corp.example"})
	backend.SeedStudent(models.Student{Username: "gone", Deleted: true})

	result, err := c.SendReminders(ctx, quiz.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	// Deleted accounts get no reminder.
	assert.Equal(t, 1, result.Count)

	require.NoError(t, c.LogResultEmail(ctx, client.ResultEmailLogRequest{
		Email:     "alice@corp.example",
		QuizID:    quiz.ID,
		QuizTitle: quiz.Title,
	}))

	stats, err := c.EmailStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.RemindersSent)
	assert.Equal(t, int64(1), stats.ResultsSent)
	assert.Equal(t, int64(1), stats.ActiveStudents)
}
