package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"neptune-ai/backend/internal/auth"
	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/model"
	"neptune-ai/backend/internal/repository"
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64" example:"ada"`
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password string `json:"password" validate:"required,min=6,max=72" example:"s3cret!"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"ada@example.com"`
	Password string `json:"password" validate:"required" example:"s3cret!"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}

// TokenIssuer signs and checks access tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Parse(token string) (*auth.Claims, error)
}

type AuthService struct {
	repo   repository.Repository
	tokens TokenIssuer
}

func NewAuthService(repo repository.Repository, tokens TokenIssuer) *AuthService {
	return &AuthService{repo: repo, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*model.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password must be at most 72 bytes", app_errors.ErrValidation)
		}
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInternal, err)
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email already registered", app_errors.ErrConflict)
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}
	log.Ctx(ctx).Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login checks the credentials and returns a bearer token. Unknown email and
// wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", app_errors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, fmt.Errorf("%w: invalid credentials", app_errors.ErrUnauthorized)
	}
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", app_errors.ErrInternal, err)
	}
	return &TokenResponse{AccessToken: token, TokenType: "bearer"}, nil
}

// Authenticate resolves a bearer token to its user id.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", app_errors.ErrUnauthorized, err)
	}
	return claims.UserID, nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: user no longer exists", app_errors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	return user, nil
}
