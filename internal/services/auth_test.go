package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quizmaster-app/quiz-client/internal/client"
	apperrors "github.com/quizmaster-app/quiz-client/internal/errors"
	"github.com/quizmaster-app/quiz-client/internal/events"
	"github.com/quizmaster-app/quiz-client/internal/models"
	"github.com/quizmaster-app/quiz-client/internal/session"
	"github.com/quizmaster-app/quiz-client/internal/utils"
)

type MockAuthAPI struct {
	mock.Mock
}

func (m *MockAuthAPI) ListStudents(ctx context.Context) ([]models.Student, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Student), args.Error(1)
}

func (m *MockAuthAPI) CreateStudent(ctx context.Context, req client.CreateStudentRequest) (models.Student, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Student), args.Error(1)
}

func (m *MockAuthAPI) Login(ctx context.Context, username, userRole string) (models.UserSession, error) {
	args := m.Called(ctx, username, userRole)
	return args.Get(0).(models.UserSession), args.Error(1)
}

func boolPtr(v bool) *bool { return &v }

func newAuthService(t *testing.T, api AuthAPI, adminUser, adminPass string) (*AuthService, *events.MockPublisher) {
	t.Helper()
	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	bus := events.NewMockPublisher()
	return NewAuthService(api, store, bus, adminUser, adminPass, utils.NewDevelopmentLogger()), bus
}

func TestSignUp_FormValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    SignupForm
		message string
	}{
		{"short username", SignupForm{Username: "ab", Password: "secret123"}, "Username must be at least 3 characters"},
		{"short password", SignupForm{Username: "alice", Password: "12345"}, "Password must be at least 6 characters"},
		{"missing username", SignupForm{Password: "secret123"}, "Username must be at least 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAuthAPI{}
			svc, _ := newAuthService(t, api, "", "")

			_, err := svc.SignUp(context.Background(), tt.form)
			require.Error(t, err)

			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)

			// No account is created when validation fails.
			api.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
		})
	}
}

func TestSignUp_UsernamePreconditions(t *testing.T) {
	tests := []struct {
		name     string
		students []models.Student
		form     SignupForm
		message  string
	}{
		{
			"deleted username is reserved",
			[]models.Student{{Username: "alice", Deleted: true}},
			SignupForm{Username: "alice", Password: "secret123"},
			"This username has been permanently deleted. Please contact administrator.",
		},
		{
			"deactivated username is blocked",
			[]models.Student{{Username: "alice", Active: boolPtr(false)}},
			SignupForm{Username: "alice", Password: "secret123"},
			"This username has been deactivated. Please contact administrator.",
		},
		{
			"active duplicate",
			[]models.Student{{Username: "alice"}},
			SignupForm{Username: "alice", Password: "secret123"},
			"Username already exists",
		},
		{
			"duplicate email",
			[]models.Student{{Username: "bob", Email: "a@b.com"}},
			SignupForm{Username: "alice", Password: "secret123", Email: "a@b.com"},
			"Email already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAuthAPI{}
			api.On("ListStudents", mock.Anything).Return(tt.students, nil)
			svc, _ := newAuthService(t, api, "", "")

			_, err := svc.SignUp(context.Background(), tt.form)
			require.Error(t, err)

			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)
			api.AssertNotCalled(t, "CreateStudent", mock.Anything, mock.Anything)
		})
	}
}

func TestSignUp_Success(t *testing.T) {
	api := &MockAuthAPI{}
	api.On("ListStudents", mock.Anything).Return([]models.Student{}, nil)
	api.On("CreateStudent", mock.Anything, client.CreateStudentRequest{
		Username: "alice", Email: "alice@b.com", Password: "secret123",
	}).Return(models.Student{ID: 1, Username: "alice"}, nil)
	api.On("Login", mock.Anything, "alice", models.RoleStudent).Return(models.UserSession{
		Username: "alice", UserRole: models.RoleStudent, SessionToken: "tok",
	}, nil)

	svc, bus := newAuthService(t, api, "", "")

	userSession, err := svc.SignUp(context.Background(), SignupForm{
		Username: "alice", Password: "secret123", Email: "alice@b.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", userSession.SessionToken)

	// Session is persisted.
	current, err := svc.CurrentSession()
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, "alice", current.Username)
	assert.Equal(t, models.RoleStudent, current.UserRole)

	published := bus.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventUserRegistered, published[0].Type)
}

func TestLogIn_DistinguishesFailureModes(t *testing.T) {
	students := []models.Student{
		{Username: "alice", Password: "secret123"},
		{Username: "gone", Password: "secret123", Deleted: true},
		{Username: "frozen", Password: "secret123", Active: boolPtr(false)},
	}

	tests := []struct {
		name    string
		form    LoginForm
		message string
	}{
		{"unknown user", LoginForm{Username: "nobody", Password: "x"}, "Invalid credentials - User not found in database"},
		{"wrong password", LoginForm{Username: "alice", Password: "wrong"}, "Invalid credentials - Incorrect password"},
		{"deleted account", LoginForm{Username: "gone", Password: "secret123"}, "This account has been deleted. Please contact administrator."},
		{"deactivated account", LoginForm{Username: "frozen", Password: "secret123"}, "This account has been deactivated. Please contact administrator."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &MockAuthAPI{}
			api.On("ListStudents", mock.Anything).Return(students, nil)
			svc, _ := newAuthService(t, api, "", "")

			_, err := svc.LogIn(context.Background(), tt.form)
			require.Error(t, err)

			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.message, ve.Message)
		})
	}
}

func TestLogIn_Success(t *testing.T) {
	api := &MockAuthAPI{}
	api.On("ListStudents", mock.Anything).Return([]models.Student{
		{Username: "alice", Password: "secret123"},
	}, nil)
	api.On("Login", mock.Anything, "alice", models.RoleStudent).Return(models.UserSession{
		Username: "alice", UserRole: models.RoleStudent, SessionToken: "tok",
	}, nil)

	svc, _ := newAuthService(t, api, "", "")

	userSession, err := svc.LogIn(context.Background(), LoginForm{Username: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, userSession.UserRole)
}

func TestAdminLogIn(t *testing.T) {
	t.Run("disabled without configuration", func(t *testing.T) {
		svc, _ := newAuthService(t, &MockAuthAPI{}, "", "")
		_, err := svc.AdminLogIn(context.Background(), "admin", "pass")
		assert.ErrorIs(t, err, ErrAdminLoginDisabled)
	})

	t.Run("rejects wrong credentials", func(t *testing.T) {
		svc, _ := newAuthService(t, &MockAuthAPI{}, "admin", "s3cret")
		_, err := svc.AdminLogIn(context.Background(), "admin", "wrong")

		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "Invalid admin credentials", ve.Message)
	})

	t.Run("opens an admin session", func(t *testing.T) {
		api := &MockAuthAPI{}
		api.On("Login", mock.Anything, "admin", models.RoleAdmin).Return(models.UserSession{
			Username: "admin", UserRole: models.RoleAdmin, SessionToken: "tok",
		}, nil)

		svc, _ := newAuthService(t, api, "admin", "s3cret")
		userSession, err := svc.AdminLogIn(context.Background(), "admin", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, models.RoleAdmin, userSession.UserRole)
	})
}

func TestRequestAdminLogin_Broadcasts(t *testing.T) {
	svc, bus := newAuthService(t, &MockAuthAPI{}, "", "")

	require.NoError(t, svc.RequestAdminLogin(context.Background()))

	published := bus.PublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventAdminModalRequested, published[0].Type)
}

func TestLogOut(t *testing.T) {
	api := &MockAuthAPI{}
	api.On("Login", mock.Anything, "admin", models.RoleAdmin).Return(models.UserSession{
		Username: "admin", UserRole: models.RoleAdmin, SessionToken: "tok",
	}, nil)

	svc, _ := newAuthService(t, api, "admin", "s3cret")
	_, err := svc.AdminLogIn(context.Background(), "admin", "s3cret")
	require.NoError(t, err)

	require.NoError(t, svc.LogOut())
	current, err := svc.CurrentSession()
	require.NoError(t, err)
	assert.Nil(t, current)

	// Logging out twice is fine.
	assert.NoError(t, svc.LogOut())
}
