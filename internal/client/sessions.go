package client

import (
	"context"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

type loginRequest struct {
	Username string `json:"username"`
	UserRole string `json:"userRole"`
}

// Login asks the backend to issue a session for an already-validated user.
// Credential checks happen before this call; the backend only mints the token.
func (c *Client) Login(ctx context.Context, username, userRole string) (models.UserSession, error) {
	var session models.UserSession
	if err := c.post(ctx, "/sessions/login", loginRequest{Username: username, UserRole: userRole}, &session); err != nil {
		return models.UserSession{}, err
	}
	return session, nil
}
