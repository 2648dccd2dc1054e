// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Janus Core playground backend.
package api

import (
	"github.com/januscore/janus-cli/internal/model"
)

// =============================================================================
// WIRE TYPES
// =============================================================================

// WireTurn is the message representation the backend exchanges.
type WireTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
}

// WireConversation is a saved conversation as listed by the backend.
type WireConversation struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title"`
	Messages []WireTurn `json:"messages"`
}

// loginRequest is the body for POST /auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the success body of POST /auth/login.
type loginResponse struct {
	Token string `json:"token"`
}

// registerRequest is the body for POST /auth/register.
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// promptsResponse is the body of GET /api/prompts.
type promptsResponse struct {
	Prompts []model.PromptTemplate `json:"prompts"`
}

// createPromptRequest is the body for POST /api/prompts.
type createPromptRequest struct {
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
}

// conversationsResponse is the body of GET /api/conversations.
type conversationsResponse struct {
	Conversations []WireConversation `json:"conversations"`
}

// createConversationRequest is the body for POST /api/conversations.
// Title is a pointer so an empty title serializes as null, which tells the
// backend to generate a default title.
type createConversationRequest struct {
	Messages []WireTurn `json:"messages"`
	Title    *string    `json:"title"`
}

// conversationRef is the {id, title} pair returned by create and fork.
type conversationRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// forkRequest is the body for POST /api/conversations/:id/fork.
type forkRequest struct {
	ForkIndex int `json:"forkIndex"`
}

// messageResponse is the generic {message} acknowledgement body.
type messageResponse struct {
	Message string `json:"message"`
}

// generateResponse is the success body of POST /api/generate.
type generateResponse struct {
	Response string `json:"response"`
}

// apiErrorBody is the error payload the backend attaches to non-2xx
// responses. Some routes use "error", others "message".
type apiErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// text returns whichever error field the backend populated.
func (b apiErrorBody) text() string {
	if b.Error != "" {
		return b.Error
	}
	return b.Message
}

// =============================================================================
// GENERATE REQUEST
// =============================================================================

// GenerateRequest carries everything the generate endpoint needs. The
// sampling parameters are flattened into the JSON body alongside the prompt
// fields, matching the backend contract.
type GenerateRequest struct {
	Model        string     `json:"model"`
	SystemPrompt string     `json:"systemPrompt"`
	UserPrompt   string     `json:"userPrompt"`
	Conversation []WireTurn `json:"conversation"`

	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	TopP             float64 `json:"topP"`
	FrequencyPenalty float64 `json:"frequencyPenalty,omitempty"`
	PresencePenalty  float64 `json:"presencePenalty,omitempty"`
}

// NewGenerateRequest builds a GenerateRequest from domain types.
func NewGenerateRequest(modelID, systemPrompt, userPrompt string, history []*model.Turn, params model.SamplingParams) GenerateRequest {
	return GenerateRequest{
		Model:            modelID,
		SystemPrompt:     systemPrompt,
		UserPrompt:       userPrompt,
		Conversation:     TurnsToWire(history),
		Temperature:      params.Temperature,
		MaxTokens:        params.MaxTokens,
		TopP:             params.TopP,
		FrequencyPenalty: params.FrequencyPenalty,
		PresencePenalty:  params.PresencePenalty,
	}
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// TurnsToWire converts domain turns to the wire representation.
func TurnsToWire(turns []*model.Turn) []WireTurn {
	wire := make([]WireTurn, 0, len(turns))
	for _, t := range turns {
		wire = append(wire, WireTurn{
			Role:    t.Role.String(),
			Content: t.Content,
			Model:   t.Model,
		})
	}
	return wire
}

// WireToTurns converts wire messages to domain turns, generating fresh
// turn IDs. Unknown roles are preserved as-is so a listing never drops data.
func WireToTurns(wire []WireTurn) []*model.Turn {
	turns := make([]*model.Turn, 0, len(wire))
	for _, w := range wire {
		t := model.NewTurn(model.Role(w.Role), w.Content)
		t.Model = w.Model
		turns = append(turns, t)
	}
	return turns
}

// WireToConversation converts a listed conversation to a domain conversation.
func WireToConversation(w WireConversation) *model.Conversation {
	conv := model.NewConversation()
	conv.ID = w.ID
	conv.Title = w.Title
	conv.Turns = WireToTurns(w.Messages)
	return conv
}
