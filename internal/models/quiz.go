package models

import "time"

// Quiz is a backend-owned quiz record. Field names follow the backend JSON
// contract, which uses camelCase throughout.
type Quiz struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TimeLimit   int        `json:"timeLimit"` // minutes
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
}

// QuestionType distinguishes single from multiple choice questions.
type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single"
	QuestionMultipleChoice QuestionType = "multiple"
)

type Question struct {
	ID           int64        `json:"id"`
	QuestionText string       `json:"questionText"`
	QuestionType QuestionType `json:"questionType"`
	Options      []Option     `json:"options"`
}

type Option struct {
	ID         int64  `json:"id,omitempty"`
	OptionText string `json:"optionText"`
	IsCorrect  bool   `json:"isCorrect"`
}
