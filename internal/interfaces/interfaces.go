package interfaces

import (
	"context"

	"neptune-ai/backend/internal/model"
	"neptune-ai/backend/internal/service"
	"neptune-ai/backend/internal/stream"
)

// The API layer depends on these contracts rather than on the concrete
// services, so handlers can be tested against mocks.

// ChatService dispatches generation requests to backends.
type ChatService interface {
	Reply(ctx context.Context, ep service.Endpoint, req *service.ChatRequest) (string, error)
	Stream(ctx context.Context, ep service.Endpoint, req *service.ChatRequest) (*stream.Bridge, error)
}

// AuthService manages accounts and bearer tokens.
type AuthService interface {
	Register(ctx context.Context, req *service.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *service.LoginRequest) (*service.TokenResponse, error)
	Authenticate(token string) (string, error)
	Me(ctx context.Context, userID string) (*model.User, error)
}

// SessionService stores conversations per user.
type SessionService interface {
	Create(ctx context.Context, userID string, req *service.CreateSessionRequest) (string, error)
	List(ctx context.Context, userID string) ([]*model.Session, error)
	Get(ctx context.Context, userID, sessionID string) (*model.Session, error)
}

// ModelService describes the available backends.
type ModelService interface {
	List() []service.BackendInfo
}
