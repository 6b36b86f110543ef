package models

import "time"

// QuizAttempt is one student's completed submission of a quiz. Attempts are
// immutable once created; this client only reads them.
//
// QuizTitle may be inlined by the backend or left empty, in which case the
// quiz has to be resolved by QuizID (or by the nested Quiz reference some
// endpoints return instead).
type QuizAttempt struct {
	ID             int64      `json:"id"`
	QuizID         int64      `json:"quizId,omitempty"`
	QuizTitle      string     `json:"quizTitle,omitempty"`
	Quiz           *Quiz      `json:"quiz,omitempty"`
	StudentName    string     `json:"studentName"`
	Score          int        `json:"score"` // number of correct answers
	TotalQuestions int        `json:"totalQuestions"`
	TimeTaken      *int       `json:"timeTaken,omitempty"` // seconds; nil when not recorded
	CompletedAt    time.Time  `json:"completedAt"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// ResolvedQuizID prefers the flat quizId field and falls back to the nested
// quiz reference.
func (a QuizAttempt) ResolvedQuizID() int64 {
	if a.QuizID != 0 {
		return a.QuizID
	}
	if a.Quiz != nil {
		return a.Quiz.ID
	}
	return 0
}

// RetakePermission is an admin-granted exception allowing a student to
// attempt a quiz again. Grants are append-only; there is no revoke path.
type RetakePermission struct {
	ID          int64      `json:"id"`
	StudentName string     `json:"studentName"`
	QuizID      int64      `json:"quizId,omitempty"`
	QuizTitle   string     `json:"quizTitle,omitempty"`
	AllowedAt   *time.Time `json:"allowedAt,omitempty"`
	Active      bool       `json:"active"`
}
