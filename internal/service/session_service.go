package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/model"
	"neptune-ai/backend/internal/repository"
)

type CreateSessionRequest struct {
	Model    string             `json:"model" validate:"required" example:"gpt2"`
	Messages model.Conversation `json:"messages" validate:"dive"`
}

type CreateSessionResponse struct {
	SessionID string `json:"sessionId"`
}

type SessionService struct {
	repo repository.Repository
}

func NewSessionService(repo repository.Repository) *SessionService {
	return &SessionService{repo: repo}
}

// Create stores the conversation for userID, stamping each message.
func (s *SessionService) Create(ctx context.Context, userID string, req *CreateSessionRequest) (string, error) {
	now := time.Now().UTC()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Model:     req.Model,
		CreatedAt: now,
	}
	for i, turn := range req.Messages {
		session.Messages = append(session.Messages, model.SessionMessage{
			ID:      uuid.NewString(),
			Role:    turn.Role,
			Content: turn.Content,
			// Keep insertion order stable when sorting by timestamp.
			Timestamp: now.Add(time.Duration(i) * time.Microsecond),
		})
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("could not create session: %w", err)
	}
	return session.ID, nil
}

func (s *SessionService) List(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.repo.ListSessions(ctx, userID)
}

// Get returns a session owned by userID. Other users' sessions are reported
// as not found.
func (s *SessionService) Get(ctx context.Context, userID, sessionID string) (*model.Session, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: session %s", app_errors.ErrNotFound, sessionID)
		}
		return nil, fmt.Errorf("could not get session: %w", err)
	}
	if session.UserID != userID {
		return nil, fmt.Errorf("%w: session %s", app_errors.ErrNotFound, sessionID)
	}
	return session, nil
}
