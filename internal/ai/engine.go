package ai

import (
	"context"

	"github.com/vybr/vybr-backend/internal/domain"
)

// Reply is one assistant turn. IsComplete signals that the conversation has
// collected enough to finish onboarding.
type Reply struct {
	Message     string
	IsComplete  bool
	Preferences domain.PreferencePatch
}

// Engine produces assistant turns and distills preferences from a finished
// conversation. The history passed to GenerateResponse already includes the
// latest user message.
type Engine interface {
	GenerateResponse(ctx context.Context, history []domain.ChatMessage, known domain.PreferencePatch) (Reply, error)
	ExtractPreferences(ctx context.Context, history []domain.ChatMessage) (domain.PreferencePatch, error)
}
