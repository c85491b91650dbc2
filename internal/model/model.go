package model

import (
	"time"
)

// Role identifies the speaker of a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatTurn is a single role-tagged message as received from the client.
type ChatTurn struct {
	Role    Role   `json:"role" validate:"required,oneof=user assistant" example:"user"`
	Content string `json:"content" example:"Hello, world!"`
}

// Conversation is the ordered dialogue history of one request.
type Conversation []ChatTurn

// User is a registered account.
type User struct {
	ID           string    `json:"_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Session is a persisted conversation owned by a user.
type Session struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Model     string           `json:"model"`
	CreatedAt time.Time        `json:"createdAt"`
	Messages  []SessionMessage `json:"messages,omitempty"`
}

// SessionMessage stores a single message in a session.
type SessionMessage struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
