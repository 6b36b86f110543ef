package client

import (
	"context"
	"fmt"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

type QuestionRequest struct {
	QuestionText string              `json:"questionText"`
	QuestionType models.QuestionType `json:"questionType"`
	Options      []models.Option     `json:"options"`
}

// ListQuestions fetches the questions of one quiz.
func (c *Client) ListQuestions(ctx context.Context, quizID int64) ([]models.Question, error) {
	var questions []models.Question
	if err := c.get(ctx, fmt.Sprintf("/quizzes/%d/questions", quizID), &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// AddQuestion appends a question to a quiz.
func (c *Client) AddQuestion(ctx context.Context, quizID int64, req QuestionRequest) (models.Question, error) {
	var question models.Question
	if err := c.post(ctx, fmt.Sprintf("/quizzes/%d/questions", quizID), req, &question); err != nil {
		return models.Question{}, err
	}
	return question, nil
}

// UpdateQuestion edits a question in place.
func (c *Client) UpdateQuestion(ctx context.Context, questionID int64, req QuestionRequest) error {
	return c.put(ctx, fmt.Sprintf("/questions/%d", questionID), req, nil)
}

// DeleteQuestion removes a question.
func (c *Client) DeleteQuestion(ctx context.Context, questionID int64) error {
	return c.delete(ctx, fmt.Sprintf("/questions/%d", questionID))
}
