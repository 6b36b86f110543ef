package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

// ListAttempts fetches every recorded quiz attempt.
func (c *Client) ListAttempts(ctx context.Context) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	if err := c.get(ctx, "/quiz-attempts", &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// SubmitAttempt records a completed attempt.
func (c *Client) SubmitAttempt(ctx context.Context, attempt models.QuizAttempt) (models.QuizAttempt, error) {
	var stored models.QuizAttempt
	if err := c.post(ctx, "/quiz-attempts", attempt, &stored); err != nil {
		return models.QuizAttempt{}, err
	}
	return stored, nil
}

// GetAttempt checks whether a student has attempted a quiz. Returns
// ErrNotFound when no attempt exists.
func (c *Client) GetAttempt(ctx context.Context, quizID int64, studentName string) (*models.QuizAttempt, error) {
	var attempt *models.QuizAttempt
	path := fmt.Sprintf("/quizzes/%d/attempts/%s", quizID, url.PathEscape(studentName))
	if err := c.get(ctx, path, &attempt); err != nil {
		return nil, err
	}
	// Some backend versions answer 200 with a null body instead of 404.
	if attempt == nil {
		return nil, fmt.Errorf("GET %s: %w", path, ErrNotFound)
	}
	return attempt, nil
}
