package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	tests := []struct {
		percentage float64
		want       string
	}{
		{100, "O"},
		{90, "O"},
		{89.9, "A+"},
		{85, "A+"},
		{84, "A"},
		{80, "A"},
		{79, "B+"},
		{75, "B+"},
		{74, "B"},
		{70, "B"},
		{69, "C+"},
		{60, "C+"},
		{59, "D"},
		{50, "D"},
		{49.9, "F"},
		{10, "F"},
		{0, "F"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.percentage), "percentage %.1f", tt.percentage)
	}
}
