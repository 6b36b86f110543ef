package client

import (
	"context"
	"fmt"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

type CreateStudentRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type studentStatusRequest struct {
	Active bool `json:"active"`
}

// ListStudents fetches all accounts, including soft-deleted ones.
func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	if err := c.get(ctx, "/students", &students); err != nil {
		return nil, err
	}
	return students, nil
}

// CreateStudent registers a new account.
func (c *Client) CreateStudent(ctx context.Context, req CreateStudentRequest) (models.Student, error) {
	var student models.Student
	if err := c.post(ctx, "/students", req, &student); err != nil {
		return models.Student{}, err
	}
	return student, nil
}

// UpdateStudentStatus toggles the active flag of an account.
func (c *Client) UpdateStudentStatus(ctx context.Context, studentID int64, active bool) error {
	return c.put(ctx, fmt.Sprintf("/students/%d/status", studentID), studentStatusRequest{Active: active}, nil)
}

// DeleteStudent removes an account. The backend keeps a soft marker so the
// username cannot be reused.
func (c *Client) DeleteStudent(ctx context.Context, studentID int64) error {
	return c.delete(ctx, fmt.Sprintf("/students/%d", studentID))
}
