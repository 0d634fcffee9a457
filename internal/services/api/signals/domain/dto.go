// Package domain holds DTOs for signals http and service contracts
package domain

import "signalkit/internal/core/signal"

// ExtractInput is one evidence bundle to classify
type ExtractInput struct {
	Evidence map[string]any `json:"evidence" validate:"required"`
	Detailed bool           `json:"detailed,omitempty"`
	Only     []string       `json:"only,omitempty" validate:"omitempty,max=16,dive,signal_name" example:"user_feature_request"`
}

// ExtractOutput is the classification of one bundle
type ExtractOutput struct {
	Signals []string        `json:"signals"`
	Details []signal.Signal `json:"details,omitempty"`
}

// BatchInput is a list of bundles classified concurrently.
// The upper bound is configuration (CORE_SIGNALS_MAX_BATCH) and is checked by the service
type BatchInput struct {
	Items    []map[string]any `json:"items" validate:"required,min=1"`
	Detailed bool             `json:"detailed,omitempty"`
	Only     []string         `json:"only,omitempty" validate:"omitempty,max=16,dive,signal_name"`
}

// BatchOutput keeps results in input order
type BatchOutput struct {
	Results [][]string        `json:"results"`
	Details [][]signal.Signal `json:"details,omitempty"`
}

// VocabularyEntry describes one signal and how many rules feed it
type VocabularyEntry struct {
	Name        signal.Name    `json:"name"`
	Description string         `json:"description"`
	Rules       map[string]int `json:"rules"`
	Total       int            `json:"total"`
}

// Vocabulary is the loaded rule pack as seen by clients
type Vocabulary struct {
	PackVersion  int               `json:"pack_version"`
	ExcerptLimit int               `json:"excerpt_limit"`
	Languages    []string          `json:"languages"`
	Signals      []VocabularyEntry `json:"signals"`
}
