package repository

import (
	"context"

	"neptune-ai/backend/internal/model"
)

// Repository defines the interface for data storage operations.
type Repository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// CreateSession stores the session together with its messages.
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, sessionID string) (*model.Session, error)
	ListSessions(ctx context.Context, userID string) ([]*model.Session, error)
}
