package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/quizmaster-app/quiz-client/internal/client"
	apperrors "github.com/quizmaster-app/quiz-client/internal/errors"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/session"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

// ErrAdminLoginDisabled is returned when no admin credentials are configured.
var ErrAdminLoginDisabled = errors.New("admin login is not configured")

// AuthAPI is the backend surface of the signup/login flows.
type AuthAPI interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	CreateStudent(ctx context.Context, req client.CreateStudentRequest) (models.Student, error)
	Login(ctx context.Context, username, userRole string) (models.UserSession, error)
}

// SignupForm carries the signup inputs. Length rules are enforced here;
// uniqueness rules need the fetched account list.
type SignupForm struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=6"`
	Email    string
}

type LoginForm struct {
	Username string
	Password string
}

// signupMessages are the user-facing strings for the form-level rules.
var signupMessages = map[string]string{
	"Username": "Username must be at least 3 characters",
	"Password": "Password must be at least 6 characters",
}

// AuthService validates credentials against the fetched account list and
// turns a successful check into a persisted session. Password comparison is
// plain-text because the backend stores and serves passwords that way; the
// backend owns the eventual fix.
type AuthService struct {
	api      AuthAPI
	store    *session.Store
	bus      events.Publisher
	validate *validator.Validate
	logger   utils.Logger

	adminUsername string
	adminPassword string
}

func NewAuthService(api AuthAPI, store *session.Store, bus events.Publisher, adminUsername, adminPassword string, logger utils.Logger) *AuthService {
	return &AuthService{
		api:           api,
		store:         store,
		bus:           bus,
		validate:      validator.New(),
		logger:        logger,
		adminUsername: adminUsername,
		adminPassword: adminPassword,
	}
}

// SignUp creates an account and logs it in. The first failing precondition
// wins and is returned as a *errors.ValidationError; no partial account is
// created on failure.
func (s *AuthService) SignUp(ctx context.Context, form SignupForm) (models.UserSession, error) {
	if err := s.validate.Struct(form); err != nil {
		if first := apperrors.ToValidationErrors(err, signupMessages).First(); first != nil {
			return models.UserSession{}, first
		}
		return models.UserSession{}, fmt.Errorf("signup validation failed: %w", err)
	}

	students, err := s.api.ListStudents(ctx)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	existing := findStudentByUsername(students, form.Username)
	switch {
	case existing != nil && existing.Deleted:
		return models.UserSession{}, apperrors.NewValidationError("Username",
			"This username has been permanently deleted. Please contact administrator.")
	case existing != nil && !existing.IsActive():
		return models.UserSession{}, apperrors.NewValidationError("Username",
			"This username has been deactivated. Please contact administrator.")
	case existing != nil:
		return models.UserSession{}, apperrors.NewValidationError("Username", "Username already exists")
	}

	for _, student := range students {
		if student.Email != "" && student.Email == form.Email {
			return models.UserSession{}, apperrors.NewValidationError("Email", "Email already exists")
		}
	}

	if _, err := s.api.CreateStudent(ctx, client.CreateStudentRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	}); err != nil {
		return models.UserSession{}, fmt.Errorf("failed to create account: %w", err)
	}

	s.broadcastRegistration(ctx, form.Username)

	return s.openSession(ctx, form.Username, models.RoleStudent)
}

// LogIn checks the password against the fetched account list and opens a
// session. "User not found" and "incorrect password" are reported
// distinctly.
func (s *AuthService) LogIn(ctx context.Context, form LoginForm) (models.UserSession, error) {
	students, err := s.api.ListStudents(ctx)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	student := findStudentByUsername(students, form.Username)
	if student == nil {
		return models.UserSession{}, apperrors.NewValidationError("Username",
			"Invalid credentials - User not found in database")
	}
	if student.Password != form.Password {
		return models.UserSession{}, apperrors.NewValidationError("Password",
			"Invalid credentials - Incorrect password")
	}
	if student.Deleted {
		return models.UserSession{}, apperrors.NewValidationError("Username",
			"This account has been deleted. Please contact administrator.")
	}
	if !student.IsActive() {
		return models.UserSession{}, apperrors.NewValidationError("Username",
			"This account has been deactivated. Please contact administrator.")
	}

	return s.openSession(ctx, form.Username, models.RoleStudent)
}

// AdminLogIn is the separate elevated path. Credentials come from
// configuration; with none configured the path is disabled.
func (s *AuthService) AdminLogIn(ctx context.Context, username, password string) (models.UserSession, error) {
	if s.adminUsername == "" || s.adminPassword == "" {
		return models.UserSession{}, ErrAdminLoginDisabled
	}
	if username != s.adminUsername || password != s.adminPassword {
		return models.UserSession{}, apperrors.NewValidationError("Username", "Invalid admin credentials")
	}

	return s.openSession(ctx, username, models.RoleAdmin)
}

// RequestAdminLogin broadcasts the hidden admin-login trigger so the view
// layer can surface the credential prompt.
func (s *AuthService) RequestAdminLogin(ctx context.Context) error {
	event, err := events.NewEvent(events.EventAdminModalRequested, nil)
	if err != nil {
		return err
	}
	return s.bus.Publish(ctx, event)
}

// CurrentSession returns the locally persisted session, or nil when logged
// out.
func (s *AuthService) CurrentSession() (*session.Session, error) {
	return s.store.Load()
}

// LogOut discards the persisted session.
func (s *AuthService) LogOut() error {
	return s.store.Clear()
}

func (s *AuthService) openSession(ctx context.Context, username, role string) (models.UserSession, error) {
	userSession, err := s.api.Login(ctx, username, role)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.store.Save(session.Session{
		Token:    userSession.SessionToken,
		Username: username,
		UserRole: role,
	}); err != nil {
		return models.UserSession{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.InfoContext(ctx, "Session opened", "username", username, "role", role)
	return userSession, nil
}

func (s *AuthService) broadcastRegistration(ctx context.Context, username string) {
	event, err := events.NewEvent(events.EventUserRegistered, events.UserRegisteredEvent{Username: username})
	if err == nil {
		err = s.bus.Publish(ctx, event)
	}
	if err != nil {
		s.logger.LogError(err, "Failed to broadcast user registration", "username", username)
	}
}

func findStudentByUsername(students []models.Student, username string) *models.Student {
	for i := range students {
		if students[i].Username == username {
			return &students[i]
		}
	}
	return nil
}
