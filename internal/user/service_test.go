package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, email, password, role string) (User, error) {
	args := m.Called(ctx, email, password, role)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(User), args.Error(1)
}

func TestService_Register(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")
	ctx := context.Background()
	email := "test@example.com"
	password := "password123"

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		expectedUser := User{
			ID:       1,
			Email:    email,
			Password: "hashed_password",
			Role:     RoleUser,
		}

		mockRepo.On("Create", ctx, email, mock.AnythingOfType("string"), string(RoleUser)).Return(expectedUser, nil)

		token, u, err := svc.Register(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, expectedUser, u)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Create", ctx, email, mock.Anything, string(RoleUser)).
			Return(User{}, errors.New("duplicate key value violates unique constraint \"users_email_key\""))

		_, _, err := svc.Register(ctx, email, password)

		assert.Error(t, err)
		assert.Equal(t, ErrEmailExists, err)
	})

	t.Run("RepoError", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("Create", ctx, email, mock.Anything, string(RoleUser)).
			Return(User{}, errors.New("db error"))

		_, _, err := svc.Register(ctx, email, password)

		assert.Error(t, err)
		assert.Equal(t, "db error", err.Error())
	})
}

func TestService_Login(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret")
	ctx := context.Background()
	email := "test@example.com"
	password := "password123"

	hashed, _ := HashPassword(password)
	stored := User{ID: 1, Email: email, Password: hashed, Role: RoleUser}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		token, u, err := svc.Login(ctx, email, password)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, 1, u.ID)
	})

	t.Run("EmailNotFound", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(User{}, errors.New("sql: no rows in result set"))

		_, _, err := svc.Login(ctx, email, password)

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := NewService(mockRepo)

		mockRepo.On("FindByEmail", ctx, email).Return(stored, nil)

		_, _, err := svc.Login(ctx, email, "not-the-password")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_GetUserByEmail(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockRepository)
	svc := NewService(mockRepo)

	stored := User{ID: 7, Email: "x@example.com", Role: RoleAdmin}
	mockRepo.On("FindByEmail", ctx, "x@example.com").Return(stored, nil)

	u, err := svc.GetUserByEmail(ctx, "x@example.com")

	assert.NoError(t, err)
	assert.Equal(t, stored, u)
}
