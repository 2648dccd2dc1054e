// Copyright (c) 2025 Janus Core contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and turns.
package model

// =============================================================================
// SAMPLING PARAMETERS
// =============================================================================

// SamplingParams holds generation-control values passed to the inference
// backend. Each model identifier has its own independently tracked set.
type SamplingParams struct {
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"maxTokens"`
	TopP             float64 `json:"topP"`
	FrequencyPenalty float64 `json:"frequencyPenalty,omitempty"`
	PresencePenalty  float64 `json:"presencePenalty,omitempty"`
}

// DefaultSamplingParams returns the default parameter set for a model the
// first time it is selected. The max-token default follows the model's
// context class: 4096 for the large-context models in the catalog, 2048
// otherwise.
func DefaultSamplingParams(modelID string) SamplingParams {
	return SamplingParams{
		Temperature:      0.7,
		MaxTokens:        defaultMaxTokens(modelID),
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
	}
}

// ModelSettings tracks sampling parameters per model identifier with
// default construction on first access.
type ModelSettings map[string]SamplingParams

// For returns the parameter set for the given model, creating the default
// set on first access.
func (m ModelSettings) For(modelID string) SamplingParams {
	if p, ok := m[modelID]; ok {
		return p
	}
	p := DefaultSamplingParams(modelID)
	m[modelID] = p
	return p
}

// Set replaces the parameter set for the given model.
func (m ModelSettings) Set(modelID string, p SamplingParams) {
	m[modelID] = p
}

// =============================================================================
// MODEL CATALOG
// =============================================================================

// KnownModels lists the model identifiers the playground backend serves,
// with their max-token default class. Unknown models are still accepted and
// fall back to the generic default.
var KnownModels = map[string]int{
	"gpt-4":                    2048,
	"gpt-4-turbo-preview":      4096,
	"gpt-3.5-turbo":            2048,
	"claude-3-opus-20240229":   4096,
	"claude-3-sonnet-20240229": 4096,
	"claude-3.5-sonnet":        4096,
	"claude-3-haiku-20240307":  4096,
	"claude-2.1":               4096,
	"claude-instant-1.2":       4096,
}

// DefaultModel is the model selected when none is configured.
const DefaultModel = "gpt-4"

// defaultMaxTokens returns the max-token default for a model identifier.
func defaultMaxTokens(modelID string) int {
	if n, ok := KnownModels[modelID]; ok {
		return n
	}
	return 2048
}

// ModelIDs returns the catalog model identifiers in stable display order.
func ModelIDs() []string {
	return []string{
		"gpt-4",
		"gpt-4-turbo-preview",
		"gpt-3.5-turbo",
		"claude-3-opus-20240229",
		"claude-3-sonnet-20240229",
		"claude-3.5-sonnet",
		"claude-3-haiku-20240307",
		"claude-2.1",
		"claude-instant-1.2",
	}
}

// =============================================================================
// PROMPT TEMPLATE
// =============================================================================

// PromptTemplate is a reusable system/user prompt pair persisted
// independently of conversations.
type PromptTemplate struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SystemPrompt string `json:"systemPrompt"`
	UserPrompt   string `json:"userPrompt"`
}
