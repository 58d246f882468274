package conversations

import (
	"context"
	"time"

	"github.com/northstar-insurance/server/internal/agent/model"
)

// Manager supplies bounded recent history to the synthesis stage and
// persists completed exchanges.
type Manager struct {
	repo     model.ConversationRepository
	maxTurns int
}

func NewManager(repo model.ConversationRepository, cfg model.ConversationConfig) *Manager {
	return &Manager{
		repo:     repo,
		maxTurns: cfg.History.MaxTurns,
	}
}

// Recent returns up to the configured number of turns, most recent first.
func (m *Manager) Recent(ctx context.Context, sessionID string) ([]model.ConversationTurn, error) {
	return m.repo.RecentTurns(ctx, sessionID, m.maxTurns)
}

// SaveTurn appends one completed exchange stamped with the current time.
func (m *Manager) SaveTurn(ctx context.Context, sessionID, userText, assistantText string) error {
	return m.repo.AppendTurn(ctx, model.ConversationTurn{
		SessionID:     sessionID,
		Timestamp:     time.Now().UTC(),
		UserText:      userText,
		AssistantText: assistantText,
	})
}
