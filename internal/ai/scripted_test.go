package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vybr/vybr-backend/internal/ai"
	"github.com/vybr/vybr-backend/internal/domain"
)

func userTurns(n int) []domain.ChatMessage {
	history := make([]domain.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := domain.ChatRoleUser
		if i%2 == 1 {
			role = domain.ChatRoleAssistant
		}
		history = append(history, domain.ChatMessage{Role: role, Content: "hello"})
	}
	return history
}

func TestScriptedEngine_ConversationLadder(t *testing.T) {
	engine := ai.NewScriptedEngine()
	ctx := context.Background()

	tests := []struct {
		name         string
		historyLen   int
		wantComplete bool
	}{
		{"opening turn", 1, false},
		{"second exchange", 3, false},
		{"third exchange", 5, false},
		{"final exchange", 7, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := engine.GenerateResponse(ctx, userTurns(tt.historyLen), domain.PreferencePatch{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantComplete, reply.IsComplete)
			assert.NotEmpty(t, reply.Message)
		})
	}
}

func TestScriptedEngine_EarlyTurnsExtractPartialFields(t *testing.T) {
	engine := ai.NewScriptedEngine()
	ctx := context.Background()

	reply, err := engine.GenerateResponse(ctx, userTurns(1), domain.PreferencePatch{})
	require.NoError(t, err)
	require.NotNil(t, reply.Preferences.Nationality)
	assert.Nil(t, reply.Preferences.Age, "age is not known on the opening turn")

	reply, err = engine.GenerateResponse(ctx, userTurns(3), domain.PreferencePatch{})
	require.NoError(t, err)
	require.NotNil(t, reply.Preferences.Age)
}

func TestScriptedEngine_ExtractPreferences(t *testing.T) {
	engine := ai.NewScriptedEngine()

	patch, err := engine.ExtractPreferences(context.Background(), userTurns(8))
	require.NoError(t, err)

	require.NotNil(t, patch.Age)
	require.NotNil(t, patch.BudgetMin)
	require.NotNil(t, patch.BudgetMax)
	assert.Greater(t, *patch.BudgetMax, *patch.BudgetMin)
	assert.NotEmpty(t, patch.Lifestyle)
	assert.NotEmpty(t, patch.Amenities)
	require.NotNil(t, patch.PetFriendly, "explicit false must be present, not absent")
	assert.False(t, *patch.PetFriendly)
}
