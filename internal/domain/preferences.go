package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ChatRoleAssistant = "assistant"
	ChatRoleUser      = "user"
)

type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// UserPreferences holds the housing profile collected during onboarding.
// One record per user; list fields and the chat transcript live in jsonb.
type UserPreferences struct {
	ID                    uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID                uuid.UUID      `json:"userId" gorm:"type:uuid;uniqueIndex;not null"`
	Nationality           *string        `json:"nationality"`
	Age                   *int           `json:"age"`
	Lifestyle             datatypes.JSON `json:"lifestyle" gorm:"type:jsonb;default:'[]'"`
	BudgetMin             *int           `json:"budgetMin"`
	BudgetMax             *int           `json:"budgetMax"`
	HousingType           datatypes.JSON `json:"housingType" gorm:"type:jsonb;default:'[]'"`
	Amenities             datatypes.JSON `json:"amenities" gorm:"type:jsonb;default:'[]'"`
	PetFriendly           bool           `json:"petFriendly" gorm:"not null;default:false"`
	SmokingAllowed        bool           `json:"smokingAllowed" gorm:"not null;default:false"`
	InternationalFriendly bool           `json:"internationalFriendly" gorm:"not null;default:false"`
	ChatHistory           datatypes.JSON `json:"chatHistory" gorm:"type:jsonb;default:'[]'"`
	CreatedAt             time.Time      `json:"createdAt"`
	UpdatedAt             time.Time      `json:"updatedAt"`
}

// History decodes the stored chat transcript. A missing or malformed
// transcript reads as empty rather than failing the request.
func (p *UserPreferences) History() []ChatMessage {
	if p == nil || len(p.ChatHistory) == 0 {
		return []ChatMessage{}
	}
	var msgs []ChatMessage
	if err := json.Unmarshal(p.ChatHistory, &msgs); err != nil {
		return []ChatMessage{}
	}
	return msgs
}

// SetHistory replaces the stored transcript wholesale.
func (p *UserPreferences) SetHistory(msgs []ChatMessage) error {
	if msgs == nil {
		msgs = []ChatMessage{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	p.ChatHistory = datatypes.JSON(raw)
	return nil
}

// StringList decodes a jsonb string-array column.
func StringList(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return []string{}
	}
	return list
}

// JSONList encodes a string slice for a jsonb column; nil becomes [].
func JSONList(list []string) datatypes.JSON {
	if list == nil {
		list = []string{}
	}
	raw, _ := json.Marshal(list)
	return datatypes.JSON(raw)
}

// PreferencePatch is a partial preference update. Pointer fields distinguish
// "absent" from explicit zero values, so petFriendly=false survives a merge.
type PreferencePatch struct {
	Nationality           *string  `json:"nationality,omitempty"`
	Age                   *int     `json:"age,omitempty"`
	Lifestyle             []string `json:"lifestyle,omitempty"`
	BudgetMin             *int     `json:"budgetMin,omitempty"`
	BudgetMax             *int     `json:"budgetMax,omitempty"`
	HousingType           []string `json:"housingType,omitempty"`
	Amenities             []string `json:"amenities,omitempty"`
	PetFriendly           *bool    `json:"petFriendly,omitempty"`
	SmokingAllowed        *bool    `json:"smokingAllowed,omitempty"`
	InternationalFriendly *bool    `json:"internationalFriendly,omitempty"`
}

// Overlay returns p with every field present in next overwriting p's value.
func (p PreferencePatch) Overlay(next PreferencePatch) PreferencePatch {
	if next.Nationality != nil {
		p.Nationality = next.Nationality
	}
	if next.Age != nil {
		p.Age = next.Age
	}
	if next.Lifestyle != nil {
		p.Lifestyle = next.Lifestyle
	}
	if next.BudgetMin != nil {
		p.BudgetMin = next.BudgetMin
	}
	if next.BudgetMax != nil {
		p.BudgetMax = next.BudgetMax
	}
	if next.HousingType != nil {
		p.HousingType = next.HousingType
	}
	if next.Amenities != nil {
		p.Amenities = next.Amenities
	}
	if next.PetFriendly != nil {
		p.PetFriendly = next.PetFriendly
	}
	if next.SmokingAllowed != nil {
		p.SmokingAllowed = next.SmokingAllowed
	}
	if next.InternationalFriendly != nil {
		p.InternationalFriendly = next.InternationalFriendly
	}
	return p
}
