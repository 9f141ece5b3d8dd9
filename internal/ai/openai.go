package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vybr/vybr-backend/internal/domain"
)

const conversationSystemPrompt = `You are VYBR's friendly AI assistant helping new students complete their housing preferences profile.

Your goal is to collect the following information through a natural, conversational flow:
1. Nationality/Country of origin
2. Age (if comfortable sharing)
3. Lifestyle preferences (quiet/social/studious/party-friendly/etc)
4. Budget range for housing ($XXX - $XXX per month)
5. Housing type preferences (off-campus apartments, on-campus dorms)
6. Important amenities (gym, pool, parking, furnished, etc)
7. Special needs (pet-friendly, smoking allowed, international student support)

Guidelines:
- Be warm, friendly, and conversational
- Ask one question at a time to avoid overwhelming the user
- Acknowledge their responses before moving to the next question
- Keep responses concise (1-2 sentences max)
- At the end, summarize their preferences and confirm

Respond with ONLY a JSON object: {"message": string, "isComplete": boolean, "extractedPreferences": object}.`

const extractionSystemPrompt = `Analyze the conversation and extract user preferences. Return ONLY a JSON object with these fields:
{
  "nationality": "string or null",
  "age": "number or null",
  "lifestyle": "array of strings or null",
  "budgetMin": "number or null",
  "budgetMax": "number or null",
  "housingType": "array of strings (off_campus/on_campus) or null",
  "amenities": "array of strings or null",
  "petFriendly": "boolean or null",
  "smokingAllowed": "boolean or null",
  "internationalFriendly": "boolean or null"
}`

// OpenAIEngine calls any OpenAI-compatible /v1/chat/completions endpoint.
// baseURL should include the /v1 prefix; apiKey may be empty for local models.
type OpenAIEngine struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIEngine(baseURL, apiKey, model string) *OpenAIEngine {
	return &OpenAIEngine{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (e *OpenAIEngine) GenerateResponse(ctx context.Context, history []domain.ChatMessage, known domain.PreferencePatch) (Reply, error) {
	messages := make([]oaiMessage, 0, len(history)+1)
	messages = append(messages, oaiMessage{Role: "system", Content: conversationSystemPrompt})
	for _, msg := range history {
		messages = append(messages, oaiMessage{Role: msg.Role, Content: msg.Content})
	}

	raw, err := e.complete(ctx, messages)
	if err != nil {
		return Reply{}, err
	}

	var parsed struct {
		Message              string                 `json:"message"`
		IsComplete           bool                   `json:"isComplete"`
		ExtractedPreferences domain.PreferencePatch `json:"extractedPreferences"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return Reply{}, fmt.Errorf("decode model reply: %w", err)
	}
	if parsed.Message == "" {
		return Reply{}, fmt.Errorf("model reply missing message")
	}
	return Reply{
		Message:     parsed.Message,
		IsComplete:  parsed.IsComplete,
		Preferences: known.Overlay(parsed.ExtractedPreferences),
	}, nil
}

func (e *OpenAIEngine) ExtractPreferences(ctx context.Context, history []domain.ChatMessage) (domain.PreferencePatch, error) {
	var transcript strings.Builder
	for _, msg := range history {
		transcript.WriteString(strings.ToUpper(msg.Role))
		transcript.WriteString(": ")
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}

	raw, err := e.complete(ctx, []oaiMessage{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: transcript.String()},
	})
	if err != nil {
		return domain.PreferencePatch{}, err
	}

	var patch domain.PreferencePatch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		return domain.PreferencePatch{}, fmt.Errorf("decode extracted preferences: %w", err)
	}
	return patch, nil
}

func (e *OpenAIEngine) complete(ctx context.Context, messages []oaiMessage) (string, error) {
	if e.model == "" {
		return "", fmt.Errorf("generation model required")
	}

	reqBody := oaiChatRequest{
		Model:          e.model,
		Messages:       messages,
		ResponseFormat: &oaiResponseFormat{Type: "json_object"},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := e.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completions request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp oaiErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Error.Message != "" {
			return "", fmt.Errorf("chat completions api error: %s", errResp.Error.Message)
		}
		return "", fmt.Errorf("chat completions api error: %s", resp.Status)
	}

	var chatResp oaiChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("chat completions decode: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from chat completions api")
	}
	text := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("empty response from chat completions api")
	}
	return text, nil
}

// OpenAI-compatible request/response types.

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiResponseFormat struct {
	Type string `json:"type"`
}

type oaiChatRequest struct {
	Model          string             `json:"model"`
	Messages       []oaiMessage       `json:"messages"`
	ResponseFormat *oaiResponseFormat `json:"response_format,omitempty"`
}

type oaiChatResponse struct {
	Choices []struct {
		Message oaiMessage `json:"message"`
	} `json:"choices"`
}

type oaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}
