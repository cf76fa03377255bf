// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AIConfig holds settings for the AI matching backend.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds a single completion request (default 8s). A slow or
	// unreachable service must never stall a match call indefinitely.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// MaxRetries is the retry budget for rate-limited requests (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// CacheTTL is how long identical queries reuse a cached answer
	// (default 5m). Zero disables the cache.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`
}

// KnowledgeBaseConfig holds settings for the anatomical knowledge base.
type KnowledgeBaseConfig struct {
	// Path is the knowledge document location. Empty selects the built-in
	// default knowledge set.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// MatchConfig holds settings for the match engine.
type MatchConfig struct {
	// MaxResults limits the returned match list (default 30).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// MinAIResults is the smallest AI result set accepted without merging
	// in local matches (default 1).
	MinAIResults int `json:"min_ai_results" yaml:"min_ai_results"`
}

// LearningConfig holds settings for the learning store.
type LearningConfig struct {
	// DBPath is the SQLite database location for learned records. Empty
	// keeps learning in memory only.
	DBPath string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// AppConfig groups all component configurations.
type AppConfig struct {
	AI            AIConfig            `json:"ai" yaml:"ai"`
	KnowledgeBase KnowledgeBaseConfig `json:"knowledge_base" yaml:"knowledge_base"`
	Match         MatchConfig         `json:"match" yaml:"match"`
	Learning      LearningConfig      `json:"learning" yaml:"learning"`
}
