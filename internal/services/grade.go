package services

// Grade maps a percentage to its letter grade, evaluated top-down. The scale
// has no plain "C": C+ covers the whole 60-69 range below B.
func Grade(percentage float64) string {
	switch {
	case percentage >= 90:
		return "O"
	case percentage >= 85:
		return "A+"
	case percentage >= 80:
		return "A"
	case percentage >= 75:
		return "B+"
	case percentage >= 70:
		return "B"
	case percentage >= 60:
		return "C+"
	case percentage >= 50:
		return "D"
	default:
		return "F"
	}
}
