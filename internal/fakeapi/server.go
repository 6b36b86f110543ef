// Package fakeapi is an in-memory stand-in for the QuizMaster backend. It
// serves the same REST surface the real backend does, backed by maps instead
// of a database, for tests and local development without a running backend.
package fakeapi

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quizmaster-app/quiz-client/internal/models"
)

// Server holds the in-memory state behind the fake REST surface.
type Server struct {
	mu sync.Mutex

	nextID      int64
	quizzes     map[int64]*models.Quiz
	questions   map[int64][]models.Question // keyed by quiz id
	students    map[int64]*models.Student
	attempts    []models.QuizAttempt
	permissions []models.RetakePermission
	emailLog    []models.EmailLog
	sessions    []models.UserSession

	engine *gin.Engine
}

// New builds a fake backend with empty state.
func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		nextID:    1,
		quizzes:   make(map[int64]*models.Quiz),
		questions: make(map[int64][]models.Question),
		students:  make(map[int64]*models.Student),
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	{
		api.GET("/quizzes", s.listQuizzes)
		api.GET("/quizzes/:id", s.getQuiz)
		api.POST("/quizzes", s.createQuiz)
		api.DELETE("/quizzes/:id", s.deleteQuiz)

		api.GET("/quizzes/:id/questions", s.listQuestions)
		api.POST("/quizzes/:id/questions", s.addQuestion)
		api.PUT("/questions/:id", s.updateQuestion)
		api.DELETE("/questions/:id", s.deleteQuestion)

		api.GET("/quiz-attempts", s.listAttempts)
		api.POST("/quiz-attempts", s.submitAttempt)
		api.GET("/quizzes/:id/attempts/:student", s.getAttempt)

		api.GET("/students", s.listStudents)
		api.POST("/students", s.createStudent)
		api.PUT("/students/:id/status", s.updateStudentStatus)
		api.DELETE("/students/:id", s.deleteStudent)

		api.POST("/sessions/login", s.login)

		api.GET("/retake-permissions", s.listPermissions)
		api.POST("/retake-permissions", s.grantPermission)

		api.GET("/emails/stats", s.emailStats)
		api.POST("/emails/log", s.logEmail)
		api.POST("/emails/log-result", s.logResultEmail)
		api.POST("/emails/send-reminders/:id", s.sendReminders)
	}

	s.engine = engine
	return s
}

// Handler exposes the HTTP handler, typically for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// SeedQuiz inserts a quiz with its questions and returns the stored quiz.
func (s *Server) SeedQuiz(quiz models.Quiz, questions ...models.Question) models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()

	quiz.ID = s.id()
	now := time.Now()
	quiz.CreatedAt = &now
	s.quizzes[quiz.ID] = &quiz

	for _, question := range questions {
		question.ID = s.id()
		for i := range question.Options {
			question.Options[i].ID = s.id()
		}
		s.questions[quiz.ID] = append(s.questions[quiz.ID], question)
	}
	return quiz
}

// SeedStudent inserts an account and returns the stored record.
func (s *Server) SeedStudent(student models.Student) models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()

	student.ID = s.id()
	if student.CreatedAt == nil {
		now := time.Now()
		student.CreatedAt = &now
	}
	s.students[student.ID] = &student
	return student
}

// SeedAttempt records an attempt directly.
func (s *Server) SeedAttempt(attempt models.QuizAttempt) models.QuizAttempt {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempt.ID = s.id()
	s.attempts = append(s.attempts, attempt)
	return attempt
}

// SeedPermission records a retake grant directly.
func (s *Server) SeedPermission(permission models.RetakePermission) models.RetakePermission {
	s.mu.Lock()
	defer s.mu.Unlock()

	permission.ID = s.id()
	s.permissions = append(s.permissions, permission)
	return permission
}

func (s *Server) listQuizzes(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		out = append(out, *quiz)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getQuiz(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}
	c.JSON(http.StatusOK, quiz)
}

func (s *Server) createQuiz(c *gin.Context) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		TimeLimit   int    `json:"timeLimit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	quiz := &models.Quiz{
		ID:          s.id(),
		Title:       req.Title,
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		CreatedAt:   &now,
	}
	s.quizzes[quiz.ID] = quiz
	c.JSON(http.StatusCreated, quiz)
}

func (s *Server) deleteQuiz(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}
	delete(s.quizzes, id)
	delete(s.questions, id)
	c.Status(http.StatusNoContent)
}

func (s *Server) listQuestions(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}
	questions := s.questions[id]
	if questions == nil {
		questions = []models.Question{}
	}
	c.JSON(http.StatusOK, questions)
}

func (s *Server) addQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	var req models.Question
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.quizzes[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}

	req.ID = s.id()
	for i := range req.Options {
		req.Options[i].ID = s.id()
	}
	s.questions[id] = append(s.questions[id], req)
	c.JSON(http.StatusCreated, req)
}

func (s *Server) updateQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	var req models.Question
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for quizID, questions := range s.questions {
		for i, question := range questions {
			if question.ID == id {
				req.ID = id
				s.questions[quizID][i] = req
				c.JSON(http.StatusOK, req)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
}

func (s *Server) deleteQuestion(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for quizID, questions := range s.questions {
		for i, question := range questions {
			if question.ID == id {
				s.questions[quizID] = append(questions[:i], questions[i+1:]...)
				c.Status(http.StatusNoContent)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
}

func (s *Server) listAttempts(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.QuizAttempt, len(s.attempts))
	copy(out, s.attempts)
	c.JSON(http.StatusOK, out)
}

func (s *Server) submitAttempt(c *gin.Context) {
	var attempt models.QuizAttempt
	if err := c.ShouldBindJSON(&attempt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	attempt.ID = s.id()
	if attempt.CompletedAt.IsZero() {
		attempt.CompletedAt = time.Now()
	}
	s.attempts = append(s.attempts, attempt)
	c.JSON(http.StatusCreated, attempt)
}

func (s *Server) getAttempt(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}
	student := c.Param("student")

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, attempt := range s.attempts {
		if attempt.ResolvedQuizID() == id && attempt.StudentName == student {
			c.JSON(http.StatusOK, attempt)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "attempt not found"})
}

func (s *Server) listStudents(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Student, 0, len(s.students))
	for _, student := range s.students {
		out = append(out, *student)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createStudent(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	student := &models.Student{
		ID:        s.id(),
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: &now,
	}
	s.students[student.ID] = student
	c.JSON(http.StatusCreated, student)
}

func (s *Server) updateStudentStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	student.Active = &req.Active
	c.JSON(http.StatusOK, student)
}

func (s *Server) deleteStudent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid student id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student, ok := s.students[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		return
	}
	// Soft delete: the record stays so the username cannot be reused.
	student.Deleted = true
	c.Status(http.StatusNoContent)
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		UserRole string `json:"userRole"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	expires := now.Add(24 * time.Hour)
	session := models.UserSession{
		ID:           s.id(),
		Username:     req.Username,
		UserRole:     req.UserRole,
		SessionToken: uuid.NewString(),
		CreatedAt:    &now,
		ExpiresAt:    &expires,
		Active:       true,
	}
	s.sessions = append(s.sessions, session)
	c.JSON(http.StatusCreated, session)
}

func (s *Server) listPermissions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.RetakePermission, len(s.permissions))
	copy(out, s.permissions)
	c.JSON(http.StatusOK, out)
}

func (s *Server) grantPermission(c *gin.Context) {
	var req struct {
		StudentName string `json:"studentName"`
		QuizID      int64  `json:"quizId"`
		QuizTitle   string `json:"quizTitle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	permission := models.RetakePermission{
		ID:          s.id(),
		StudentName: req.StudentName,
		QuizID:      req.QuizID,
		QuizTitle:   req.QuizTitle,
		AllowedAt:   &now,
		Active:      true,
	}
	s.permissions = append(s.permissions, permission)
	c.JSON(http.StatusCreated, permission)
}

func (s *Server) emailStats(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.EmailStats{
		TotalEmails:     int64(len(s.emailLog)),
		RecentReminders: []models.EmailLog{},
		RecentResults:   []models.EmailLog{},
	}
	for _, student := range s.students {
		if !student.Deleted && student.IsActive() {
			stats.ActiveStudents++
		}
	}
	for _, entry := range s.emailLog {
		switch entry.Type {
		case models.EmailTypeReminder:
			stats.RemindersSent++
			stats.RecentReminders = append(stats.RecentReminders, entry)
		case models.EmailTypeResults:
			stats.ResultsSent++
			stats.RecentResults = append(stats.RecentResults, entry)
		}
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) logEmail(c *gin.Context) {
	var entry models.EmailLog
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.ID = s.id()
	now := time.Now()
	entry.Timestamp = &now
	s.emailLog = append(s.emailLog, entry)
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) logResultEmail(c *gin.Context) {
	var req struct {
		Email     string `json:"email"`
		QuizID    int64  `json:"quizId"`
		QuizTitle string `json:"quizTitle"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.emailLog = append(s.emailLog, models.EmailLog{
		ID:        s.id(),
		Email:     req.Email,
		Type:      models.EmailTypeResults,
		QuizID:    req.QuizID,
		QuizTitle: req.QuizTitle,
		Status:    "sent",
		Timestamp: &now,
	})
	c.Status(http.StatusCreated)
}

func (s *Server) sendReminders(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quiz id"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	quiz, ok := s.quizzes[id]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quiz not found"})
		return
	}

	now := time.Now()
	count := 0
	for _, student := range s.students {
		if student.Deleted || !student.IsActive() {
			continue
		}
		email := student.Email
		if email == "" {
			email = student.Username + "@example.com"
		}
		s.emailLog = append(s.emailLog, models.EmailLog{
			ID:        s.id(),
			Email:     email,
			Type:      models.EmailTypeReminder,
			QuizID:    id,
			QuizTitle: quiz.Title,
			Status:    "sent",
			Timestamp: &now,
		})
		count++
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"message": "reminders queued",
	})
}
