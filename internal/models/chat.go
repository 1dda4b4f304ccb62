package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts only the two transcript roles.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Turn is one entry of a chat transcript. Turns are values; once appended to a
// log they are only ever handed out as copies.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the handle a transcript lives under.
type Session struct {
	ID        uuid.UUID `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse carries the assistant reply and the full transcript after it.
type ChatResponse struct {
	Reply string `json:"reply"`
	Turns []Turn `json:"turns"`
}

type SessionResponse struct {
	Session
	Token string `json:"token"`
}
