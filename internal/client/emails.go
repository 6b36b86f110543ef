package client

import (
	"context"
	"fmt"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

type EmailLogRequest struct {
	Email     string `json:"email"`
	Type      string `json:"type"`
	QuizID    int64  `json:"quizId,omitempty"`
	QuizTitle string `json:"quizTitle,omitempty"`
	Status    string `json:"status"`
}

type ResultEmailLogRequest struct {
	Email     string `json:"email"`
	QuizID    int64  `json:"quizId"`
	QuizTitle string `json:"quizTitle"`
}

type SendRemindersResult struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// EmailStats fetches the aggregate counters for the notification dashboard.
func (c *Client) EmailStats(ctx context.Context) (models.EmailStats, error) {
	var stats models.EmailStats
	if err := c.get(ctx, "/emails/stats", &stats); err != nil {
		return models.EmailStats{}, err
	}
	return stats, nil
}

// LogEmail records a delivery in the backend email log.
func (c *Client) LogEmail(ctx context.Context, req EmailLogRequest) error {
	return c.post(ctx, "/emails/log", req, nil)
}

// LogResultEmail records a result email delivery.
func (c *Client) LogResultEmail(ctx context.Context, req ResultEmailLogRequest) error {
	return c.post(ctx, "/emails/log-result", req, nil)
}

// SendReminders asks the backend to mail a reminder for the quiz to every
// active student.
func (c *Client) SendReminders(ctx context.Context, quizID int64) (SendRemindersResult, error) {
	var result SendRemindersResult
	if err := c.post(ctx, fmt.Sprintf("/emails/send-reminders/%d", quizID), nil, &result); err != nil {
		return SendRemindersResult{}, err
	}
	return result, nil
}
