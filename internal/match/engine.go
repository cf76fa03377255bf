// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match maps normalized body-part phrases to mesh identifiers from
// a 3D anatomical model. The engine tries the AI backend first when one is
// configured and falls back to the deterministic local matcher; matcher
// failures never reach the caller.
package match

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/anatomy-mapper/internal/kb"
	"github.com/pdiddy/anatomy-mapper/internal/learn"
	"github.com/pdiddy/anatomy-mapper/internal/normalize"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// crossSidePenalty discounts matches returned from a side-filter retry
// without the filter: a wrong-side suggestion beats none, at reduced
// confidence.
const crossSidePenalty = 0.7

const defaultMaxResults = 30

// Engine is the public matching façade combining normalization, the AI
// backend, the local matcher, side filtering, and the learning store.
type Engine struct {
	kb    *kb.Base
	learn *learn.Store
	local *Local
	ai    Backend
	cache *answerCache
	cfg   types.MatchConfig

	// recent remembers the last result set per term key for the soft
	// validation in ConfirmMatch.
	mu     sync.Mutex
	recent map[string][]string
}

// NewEngine wires an engine from its collaborators. The AI backend is
// enabled only when an API key is configured; without one the engine is
// fully local.
func NewEngine(base *kb.Base, store *learn.Store, cfg types.AppConfig) *Engine {
	e := &Engine{
		kb:     base,
		learn:  store,
		local:  &Local{KB: base, Learn: store},
		cfg:    cfg.Match,
		recent: map[string][]string{},
	}
	if cfg.AI.APIKey != "" {
		e.ai = NewClaude(cfg.AI)
		e.cache = newAnswerCache(cfg.AI.CacheTTL)
	}
	return e
}

// WithBackend replaces the AI backend. Used by tests and by callers that
// bring their own completion service.
func (e *Engine) WithBackend(b Backend) *Engine {
	e.ai = b
	return e
}

// FindMatchingMeshes resolves a body-part phrase against the candidate
// mesh list and returns the ranked matches. Only an empty phrase is an
// error; an empty result is the valid "no confident mapping" outcome.
func (e *Engine) FindMatchingMeshes(ctx context.Context, bodyPart string, candidates []string, side types.Side) ([]types.MeshMatch, error) {
	n, err := normalize.Phrase(e.kb, bodyPart)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// An explicit side argument wins over one detected in the phrase.
	if side == types.SideNone {
		side = n.Side
	}

	aiMatches := e.tryAI(ctx, types.MatchQuery{
		BodyPart:        n.Cleaned,
		Side:            side,
		CandidateMeshes: candidates,
	})
	localMatches := e.local.Match(n, side, candidates)

	minAI := e.cfg.MinAIResults
	if minAI <= 0 {
		minAI = 1
	}

	var results []types.MeshMatch
	switch {
	case len(aiMatches) >= minAI:
		results = aiMatches
	case len(aiMatches) > 0:
		results = mergeMatches(aiMatches, localMatches)
	default:
		results = localMatches
	}

	results = e.applySideFilter(results, side)

	maxResults := e.cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	e.remember(termKey(n), results)
	return results, nil
}

// ConfirmMatch records that a phrase/side resolved correctly to a mesh,
// boosting that mesh in future local matches. A mesh outside the most
// recent result set for the phrase is accepted with a warning; operators
// may confirm meshes found by other means.
func (e *Engine) ConfirmMatch(bodyPart string, side types.Side, mesh string) error {
	n, err := normalize.Phrase(e.kb, bodyPart)
	if err != nil {
		return err
	}
	if mesh == "" {
		return types.ErrInvalidQuery
	}
	if side == types.SideNone {
		side = n.Side
	}

	key := termKey(n)
	if !e.wasRecent(key, mesh) {
		log.Warn("confirming a mesh outside the last result set",
			"term", key, "mesh", mesh)
	}

	if _, err := e.learn.Confirm(key, side, mesh); err != nil {
		return err
	}
	return nil
}

// tryAI attempts the AI backend through the cache. Unavailability and
// inconclusive answers degrade to the local matcher with a warning.
func (e *Engine) tryAI(ctx context.Context, q types.MatchQuery) []types.MeshMatch {
	if e.ai == nil {
		return nil
	}

	if cached, ok := e.cache.get(q); ok {
		return cached
	}

	matches, err := e.ai.Rank(ctx, q)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrAIInconclusive):
			log.Warn("ai matcher inconclusive, falling back to local", "body_part", q.BodyPart)
		default:
			log.Warn("ai matcher unavailable, falling back to local",
				"body_part", q.BodyPart, "err", err)
		}
		return nil
	}

	e.cache.put(q, matches)
	return matches
}

// applySideFilter drops contradicting sides; if that would empty the
// result, it retries without the filter at reduced confidence.
func (e *Engine) applySideFilter(results []types.MeshMatch, side types.Side) []types.MeshMatch {
	if side == types.SideNone || len(results) == 0 {
		return results
	}

	filtered := filterBySide(results, side)
	if len(filtered) > 0 {
		return filtered
	}

	discounted := make([]types.MeshMatch, len(results))
	for i, m := range results {
		m.Confidence *= crossSidePenalty
		discounted[i] = m
	}
	return discounted
}

// mergeMatches unions AI and local results. Duplicate meshes keep the
// higher-confidence entry; ordering is confidence descending with AI
// entries ahead of local at equal confidence, mesh name as final tiebreak.
func mergeMatches(ai, local []types.MeshMatch) []types.MeshMatch {
	byMesh := map[string]types.MeshMatch{}
	for _, m := range local {
		byMesh[m.Mesh] = m
	}
	for _, m := range ai {
		if prev, ok := byMesh[m.Mesh]; !ok || m.Confidence >= prev.Confidence {
			byMesh[m.Mesh] = m
		}
	}

	merged := make([]types.MeshMatch, 0, len(byMesh))
	for _, m := range byMesh {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Confidence != merged[j].Confidence {
			return merged[i].Confidence > merged[j].Confidence
		}
		if (merged[i].Source == types.SourceAI) != (merged[j].Source == types.SourceAI) {
			return merged[i].Source == types.SourceAI
		}
		return merged[i].Mesh < merged[j].Mesh
	})
	return merged
}

// termKey picks the learning and recency key for a normalized phrase: the
// best canonical term, or the cleaned phrase when the knowledge base had
// no match.
func termKey(n normalize.Normalized) string {
	if len(n.Terms) > 0 {
		return n.Terms[0].Term
	}
	return n.Cleaned
}

func (e *Engine) remember(key string, results []types.MeshMatch) {
	meshes := make([]string, len(results))
	for i, m := range results {
		meshes[i] = m.Mesh
	}
	e.mu.Lock()
	e.recent[key] = meshes
	e.mu.Unlock()
}

func (e *Engine) wasRecent(key, mesh string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range e.recent[key] {
		if m == mesh {
			return true
		}
	}
	return false
}
