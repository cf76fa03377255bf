// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery reports an empty or otherwise unusable body-part phrase.
// It is the only matcher error surfaced to callers of the match engine.
var ErrInvalidQuery = errors.New("invalid query: body part phrase is empty")

// ErrAIUnavailable reports that the AI completion service could not be
// reached (network, auth, timeout, or rate-limit exhaustion). The engine
// absorbs it and falls back to local matching.
var ErrAIUnavailable = errors.New("ai matcher unavailable")

// ErrAIInconclusive reports that the AI service answered but no response
// line mapped to a known candidate mesh. Absorbed like ErrAIUnavailable.
var ErrAIInconclusive = errors.New("ai matcher inconclusive")

// KnowledgeBaseError reports a malformed knowledge document at load time.
// It is fatal at startup; the engine must not initialize with a half-loaded
// knowledge base.
type KnowledgeBaseError struct {
	Source string
	Reason string
}

func (e *KnowledgeBaseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("knowledge base: %s", e.Reason)
	}
	return fmt.Sprintf("knowledge base %s: %s", e.Source, e.Reason)
}
