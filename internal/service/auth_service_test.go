package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"neptune-ai/backend/internal/auth"
	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/model"
	"neptune-ai/backend/internal/repository"
	mock_repo "neptune-ai/backend/internal/repository/mocks"
	"neptune-ai/backend/internal/service"
)

func setupAuthService(t *testing.T) (*service.AuthService, *mock_repo.MockRepository) {
	repo := mock_repo.NewMockRepository(t)
	return service.NewAuthService(repo, auth.NewTokens("test-secret", time.Hour)), repo
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()
	req := &service.RegisterRequest{Username: "ada", Email: "Ada@Example.com", Password: "s3cret!"}

	t.Run("Success", func(t *testing.T) {
		svc, repo := setupAuthService(t)
		repo.On("CreateUser", ctx, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "ada@example.com" && u.ID != "" && auth.VerifyPassword(u.PasswordHash, "s3cret!")
		})).Return(nil).Once()

		user, err := svc.Register(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "ada", user.Username)
	})

	t.Run("Failure - email taken", func(t *testing.T) {
		svc, repo := setupAuthService(t)
		repo.On("CreateUser", ctx, mock.Anything).Return(repository.ErrDuplicate).Once()

		_, err := svc.Register(ctx, req)
		assert.ErrorIs(t, err, app_errors.ErrConflict)
	})

	t.Run("Failure - password longer than 72 bytes", func(t *testing.T) {
		svc, _ := setupAuthService(t)
		for _, password := range []string{strings.Repeat("x", 80), strings.Repeat("é", 40)} {
			_, err := svc.Register(ctx, &service.RegisterRequest{Username: "ada", Email: "ada@example.com", Password: password})
			assert.ErrorIs(t, err, app_errors.ErrValidation)
			assert.NotErrorIs(t, err, app_errors.ErrInternal)
		}
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)
	user := &model.User{ID: "u1", Email: "ada@example.com", PasswordHash: hash}

	t.Run("Success", func(t *testing.T) {
		svc, repo := setupAuthService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(user, nil).Once()

		token, err := svc.Login(ctx, &service.LoginRequest{Email: "ada@example.com", Password: "s3cret!"})
		require.NoError(t, err)
		assert.Equal(t, "bearer", token.TokenType)

		userID, err := svc.Authenticate(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", userID)
	})

	t.Run("Failure - wrong password", func(t *testing.T) {
		svc, repo := setupAuthService(t)
		repo.On("GetUserByEmail", ctx, "ada@example.com").Return(user, nil).Once()

		_, err := svc.Login(ctx, &service.LoginRequest{Email: "ada@example.com", Password: "nope"})
		assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
	})

	t.Run("Failure - unknown email", func(t *testing.T) {
		svc, repo := setupAuthService(t)
		repo.On("GetUserByEmail", ctx, "who@example.com").Return(nil, repository.ErrNotFound).Once()

		_, err := svc.Login(ctx, &service.LoginRequest{Email: "who@example.com", Password: "x"})
		assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
	})

	t.Run("Failure - garbage token", func(t *testing.T) {
		svc, _ := setupAuthService(t)
		_, err := svc.Authenticate("not.a.token")
		assert.ErrorIs(t, err, app_errors.ErrUnauthorized)
	})
}
