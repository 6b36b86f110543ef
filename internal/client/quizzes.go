package client

import (
	"context"
	"fmt"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

type CreateQuizRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TimeLimit   int    `json:"timeLimit"`
}

// ListQuizzes fetches the full quiz catalog.
func (c *Client) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := c.get(ctx, "/quizzes", &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// GetQuiz fetches one quiz by id.
func (c *Client) GetQuiz(ctx context.Context, id int64) (models.Quiz, error) {
	var quiz models.Quiz
	if err := c.get(ctx, fmt.Sprintf("/quizzes/%d", id), &quiz); err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

// CreateQuiz creates a quiz and returns the stored record.
func (c *Client) CreateQuiz(ctx context.Context, req CreateQuizRequest) (models.Quiz, error) {
	var quiz models.Quiz
	if err := c.post(ctx, "/quizzes", req, &quiz); err != nil {
		return models.Quiz{}, err
	}
	return quiz, nil
}

// DeleteQuiz removes a quiz.
func (c *Client) DeleteQuiz(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/quizzes/%d", id))
}
