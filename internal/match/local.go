// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"sort"
	"strings"

	"github.com/pdiddy/anatomy-mapper/internal/kb"
	"github.com/pdiddy/anatomy-mapper/internal/learn"
	"github.com/pdiddy/anatomy-mapper/internal/normalize"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// Scoring weights for the local matcher. Each qualifying signal is summed
// per mesh; the learned boost is scaled to at most learnedBoost.
const (
	termScore     = 3.0
	synonymScore  = 2.0
	relatedScore  = 1.0
	tokenScore    = 1.0
	regionScore   = 1.0
	patternScore  = 0.5
	learnedBoost  = 1.0
	maxRegionHits = 100
	maxPatternHit = 30
)

// Local is the deterministic fallback matcher. It works entirely from the
// knowledge base and the learning store: no network, no external service.
type Local struct {
	KB    *kb.Base
	Learn *learn.Store
}

// Match scores every candidate mesh against the normalized term set and
// returns the positive-scoring ones ranked best-first with confidences
// normalized to [0,1]. It never fails; an empty result means nothing
// scored above zero.
func (l *Local) Match(n normalize.Normalized, side types.Side, candidates []string) []types.MeshMatch {
	scores := make([]float64, len(candidates))
	learned := make([]bool, len(candidates))

	for _, tm := range n.Terms {
		syns := l.KB.SynonymsOf(tm.Term)
		related := append(append([]string{}, l.KB.RelatedTo(tm.Term)...),
			l.KB.ReverseRelated(tm.Term)...)

		for i, mesh := range candidates {
			lower := strings.ToLower(mesh)

			if strings.Contains(lower, tm.Term) {
				scores[i] += termScore
			}
			if containsAny(lower, syns) {
				scores[i] += synonymScore
			}
			if containsAny(lower, related) {
				scores[i] += relatedScore
			}
			if boost := l.learnedWeight(tm.Term, side, mesh); boost > 0 {
				scores[i] += boost
				learned[i] = true
			}
		}
	}

	if len(n.Terms) == 0 {
		tokens := strings.Fields(n.Cleaned)
		for i, mesh := range candidates {
			lower := strings.ToLower(mesh)
			for _, tok := range tokens {
				if strings.Contains(lower, tok) {
					scores[i] += tokenScore
				}
			}
			if boost := l.learnedWeight(n.Cleaned, side, mesh); boost > 0 {
				scores[i] += boost
				learned[i] = true
			}
		}
	}

	if !anyPositive(scores) {
		l.scoreByRegion(n.Cleaned, candidates, scores)
	}
	if !anyPositive(scores) {
		l.scoreByPatterns(n.Cleaned, candidates, scores)
	}

	return rank(candidates, scores, learned)
}

// learnedWeight returns the capped, scaled learning boost for a record.
func (l *Local) learnedWeight(term string, side types.Side, mesh string) float64 {
	if l.Learn == nil {
		return 0
	}
	w := l.Learn.Weight(term, side, mesh)
	if w <= 0 {
		return 0
	}
	if w > learn.WeightCap {
		w = learn.WeightCap
	}
	return learnedBoost * w / learn.WeightCap
}

// scoreByRegion applies the body-region vocabulary when knowledge-base
// matching found nothing. Hits are capped so a broad region cannot flood
// the result.
func (l *Local) scoreByRegion(phrase string, candidates []string, scores []float64) {
	region := regionFor(phrase)
	if region == "" {
		return
	}

	exclusions := regionExclusions[region]
	hits := 0
	for i, mesh := range candidates {
		if hits >= maxRegionHits {
			break
		}
		lower := strings.ToLower(mesh)
		if containsAny(lower, exclusions) {
			continue
		}
		if containsAny(lower, bodyRegions[region]) {
			scores[i] += regionScore
			hits++
		}
	}
}

// scoreByPatterns is the last resort: coarse per-region name patterns.
func (l *Local) scoreByPatterns(phrase string, candidates []string, scores []float64) {
	patterns := patternsFor(phrase)
	if len(patterns) == 0 {
		return
	}

	hits := 0
	for i, mesh := range candidates {
		if hits >= maxPatternHit {
			break
		}
		if containsAny(strings.ToLower(mesh), patterns) {
			scores[i] += patternScore
			hits++
		}
	}
}

// rank keeps positive-scoring meshes, orders them (score desc, shorter
// name, lexical), and normalizes confidences by the best score.
func rank(candidates []string, scores []float64, learned []bool) []types.MeshMatch {
	type scored struct {
		mesh    string
		score   float64
		learned bool
	}

	var kept []scored
	best := 0.0
	for i, s := range scores {
		if s <= 0 {
			continue
		}
		kept = append(kept, scored{mesh: candidates[i], score: s, learned: learned[i]})
		if s > best {
			best = s
		}
	}
	if len(kept) == 0 {
		return nil
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].score != kept[j].score {
			return kept[i].score > kept[j].score
		}
		if len(kept[i].mesh) != len(kept[j].mesh) {
			return len(kept[i].mesh) < len(kept[j].mesh)
		}
		return kept[i].mesh < kept[j].mesh
	})

	matches := make([]types.MeshMatch, len(kept))
	for i, s := range kept {
		source := types.SourceLocal
		if s.learned {
			source = types.SourceLearned
		}
		matches[i] = types.MeshMatch{
			Mesh:       s.mesh,
			Confidence: s.score / best,
			Source:     source,
		}
	}
	return matches
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

func anyPositive(scores []float64) bool {
	for _, s := range scores {
		if s > 0 {
			return true
		}
	}
	return false
}
