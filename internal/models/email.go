package models

import "time"

// Email log entry types as stored by the backend.
const (
	EmailTypeReminder = "reminder"
	EmailTypeResults  = "results"
)

type EmailLog struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Type         string     `json:"type"`
	QuizID       int64      `json:"quizId,omitempty"`
	QuizTitle    string     `json:"quizTitle,omitempty"`
	Status       string     `json:"status"`
	Timestamp    *time.Time `json:"timestamp,omitempty"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
}

// EmailStats is the aggregate consumed by the notification dashboard.
type EmailStats struct {
	RemindersSent   int64      `json:"remindersSent"`
	ResultsSent     int64      `json:"resultsSent"`
	ActiveStudents  int64      `json:"activeStudents"`
	TotalEmails     int64      `json:"totalEmails"`
	RecentReminders []EmailLog `json:"recentReminders"`
	RecentResults   []EmailLog `json:"recentResults"`
}
