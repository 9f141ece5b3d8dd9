package ai

import (
	"context"

	"github.com/vybr/vybr-backend/internal/domain"
)

// ScriptedEngine walks a fixed question ladder keyed on transcript length.
// It stands in for the model-backed engine in local runs and tests.
type ScriptedEngine struct{}

func NewScriptedEngine() *ScriptedEngine {
	return &ScriptedEngine{}
}

func (e *ScriptedEngine) GenerateResponse(ctx context.Context, history []domain.ChatMessage, known domain.PreferencePatch) (Reply, error) {
	switch n := len(history); {
	case n <= 2:
		return Reply{
			Message:     "Thanks for sharing! What's your age and what year are you in school? \U0001F4DA",
			Preferences: domain.PreferencePatch{Nationality: strPtr("International")},
		}, nil
	case n <= 4:
		return Reply{
			Message:     "Great! What's your budget range for housing per month? \U0001F4B0",
			Preferences: known.Overlay(domain.PreferencePatch{Age: intPtr(20)}),
		}, nil
	case n <= 6:
		return Reply{
			Message: "Perfect! Are you looking for on-campus or off-campus housing? \U0001F3E0",
			Preferences: known.Overlay(domain.PreferencePatch{
				BudgetMin: intPtr(800),
				BudgetMax: intPtr(1200),
			}),
		}, nil
	default:
		return Reply{
			Message:    "Thanks for sharing your preferences! Your profile is now complete. Let's get you matched with perfect housing! \U0001F389",
			IsComplete: true,
			Preferences: known.Overlay(domain.PreferencePatch{
				HousingType:           []string{"off_campus"},
				InternationalFriendly: boolPtr(true),
			}),
		}, nil
	}
}

func (e *ScriptedEngine) ExtractPreferences(ctx context.Context, history []domain.ChatMessage) (domain.PreferencePatch, error) {
	return domain.PreferencePatch{
		Nationality:           strPtr("International"),
		Age:                   intPtr(20),
		Lifestyle:             []string{"studious", "social"},
		BudgetMin:             intPtr(800),
		BudgetMax:             intPtr(1200),
		HousingType:           []string{"off_campus"},
		Amenities:             []string{"gym", "pool", "parking"},
		PetFriendly:           boolPtr(false),
		SmokingAllowed:        boolPtr(false),
		InternationalFriendly: boolPtr(true),
	}, nil
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }
