package client

import (
	"context"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

type GrantRetakeRequest struct {
	StudentName string `json:"studentName"`
	QuizID      int64  `json:"quizId"`
	QuizTitle   string `json:"quizTitle"`
}

// ListRetakePermissions fetches all retake grants.
func (c *Client) ListRetakePermissions(ctx context.Context) ([]models.RetakePermission, error) {
	var permissions []models.RetakePermission
	if err := c.get(ctx, "/retake-permissions", &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

// GrantRetakePermission appends a new grant. There is no revoke counterpart.
func (c *Client) GrantRetakePermission(ctx context.Context, req GrantRetakeRequest) (models.RetakePermission, error) {
	var permission models.RetakePermission
	if err := c.post(ctx, "/retake-permissions", req, &permission); err != nil {
		return models.RetakePermission{}, err
	}
	return permission, nil
}
