package model

import (
	"context"
	"time"
)

// ConversationTurn is one completed user/assistant exchange. Turns are
// append-only: they are created once per completed cycle and never mutated.
type ConversationTurn struct {
	SessionID     string    `json:"session_id"`
	Timestamp     time.Time `json:"timestamp"`
	UserText      string    `json:"user"`
	AssistantText string    `json:"assistant"`
}

type ConversationRepository interface {
	// AppendTurn appends one completed exchange to the session's history.
	AppendTurn(ctx context.Context, turn ConversationTurn) error

	// RecentTurns returns up to limit turns for the session, most recent
	// first.
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]ConversationTurn, error)

	// ClearHistory removes all history for a session.
	ClearHistory(ctx context.Context, sessionID string) error
}
