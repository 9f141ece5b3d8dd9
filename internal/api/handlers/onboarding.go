package handlers

import (
	"net/http"

	"github.com/vybr/vybr-backend/internal/api/middleware"
	"github.com/vybr/vybr-backend/internal/domain"
	"github.com/vybr/vybr-backend/internal/service"
)

type OnboardingHandler struct {
	onboarding *service.OnboardingService
}

func NewOnboardingHandler(onboarding *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

// preferencesView is the wire shape of a stored preference record, with the
// jsonb list columns decoded into plain arrays.
type preferencesView struct {
	Nationality           *string  `json:"nationality"`
	Age                   *int     `json:"age"`
	Lifestyle             []string `json:"lifestyle"`
	BudgetMin             *int     `json:"budgetMin"`
	BudgetMax             *int     `json:"budgetMax"`
	HousingType           []string `json:"housingType"`
	Amenities             []string `json:"amenities"`
	PetFriendly           bool     `json:"petFriendly"`
	SmokingAllowed        bool     `json:"smokingAllowed"`
	InternationalFriendly bool     `json:"internationalFriendly"`
}

func newPreferencesView(record *domain.UserPreferences) *preferencesView {
	if record == nil {
		return nil
	}
	return &preferencesView{
		Nationality:           record.Nationality,
		Age:                   record.Age,
		Lifestyle:             domain.StringList(record.Lifestyle),
		BudgetMin:             record.BudgetMin,
		BudgetMax:             record.BudgetMax,
		HousingType:           domain.StringList(record.HousingType),
		Amenities:             domain.StringList(record.Amenities),
		PetFriendly:           record.PetFriendly,
		SmokingAllowed:        record.SmokingAllowed,
		InternationalFriendly: record.InternationalFriendly,
	}
}

func (h *OnboardingHandler) Chat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthorized)
		return
	}

	var req chatRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.onboarding.Chat(r.Context(), userID, req.Message)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     result.Message,
		"isComplete":  result.IsComplete,
		"preferences": result.Preferences,
	})
}

func (h *OnboardingHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeDomainError(w, domain.ErrUnauthorized)
		return
	}

	result, err := h.onboarding.Status(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"onboardingCompleted": result.OnboardingCompleted,
		"hasPreferences":      result.HasPreferences,
		"chatHistory":         result.ChatHistory,
		"preferences":         newPreferencesView(result.Preferences),
	})
}
