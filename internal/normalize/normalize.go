// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns free-text body-part phrases into canonical term
// sets for matching. It is purely lexical: lower-casing, punctuation
// stripping, side-token detection, and knowledge-base expansion.
package normalize

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/anatomy-mapper/internal/kb"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// Tier ranks how a canonical term was matched. Lower is stronger.
type Tier int

const (
	// TierExact is a cleaned phrase equal to a canonical key.
	TierExact Tier = iota + 1
	// TierSubstring is mutual containment between the phrase and a key or
	// synonym ("hamstring strain" carries the key "hamstring").
	TierSubstring
	// TierTokens is full token overlap: every phrase word appears among
	// the term's key and synonym vocabulary.
	TierTokens
)

// TermMatch is one canonical term with the tier it matched at.
type TermMatch struct {
	Term string
	Tier Tier
}

// Normalized is the outcome of phrase normalization. Terms is ordered
// best-first and may be empty; Cleaned is always usable as a last-resort
// literal for substring matching against mesh names.
type Normalized struct {
	Terms   []TermMatch
	Side    types.Side
	Cleaned string
}

// Phrase normalizes a raw body-part phrase against the knowledge base.
// An empty phrase is the caller's error; everything after that degrades
// gracefully to an empty term set.
func Phrase(base *kb.Base, raw string) (Normalized, error) {
	cleaned := clean(raw)
	if cleaned == "" {
		return Normalized{}, types.ErrInvalidQuery
	}

	cleaned, side := extractSide(cleaned)
	if cleaned == "" {
		// The phrase was nothing but side qualifiers ("left side").
		return Normalized{}, types.ErrInvalidQuery
	}

	n := Normalized{Side: side, Cleaned: cleaned}

	best := map[string]Tier{}
	record := func(term string, tier Tier) {
		if prev, ok := best[term]; !ok || tier < prev {
			best[term] = tier
		}
	}

	phraseTokens := strings.Fields(cleaned)

	for _, term := range base.Terms() {
		if cleaned == term {
			record(term, TierExact)
			continue
		}

		if containsEither(cleaned, term) {
			record(term, TierSubstring)
			continue
		}
		matched := false
		for _, syn := range base.SynonymsOf(term) {
			if containsEither(cleaned, strings.ToLower(syn)) {
				record(term, TierSubstring)
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if coversTokens(phraseTokens, term, base.SynonymsOf(term)) {
			record(term, TierTokens)
		}
	}

	n.Terms = orderTerms(best)
	return n, nil
}

// clean lower-cases and strips punctuation, collapsing runs of whitespace.
func clean(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// extractSide removes a leading or trailing side token and a trailing
// literal "side" word ("right knee", "knee left", "hamstring right side").
func extractSide(phrase string) (string, types.Side) {
	words := strings.Fields(phrase)

	// Drop a trailing "side" word first so "left side" parses as a side.
	if len(words) > 0 && words[len(words)-1] == "side" {
		words = words[:len(words)-1]
	}

	side := types.SideNone
	if len(words) > 0 {
		if s := sideToken(words[0]); s != types.SideNone {
			side = s
			words = words[1:]
		}
	}
	if side == types.SideNone && len(words) > 0 {
		if s := sideToken(words[len(words)-1]); s != types.SideNone {
			side = s
			words = words[:len(words)-1]
		}
	}

	return strings.Join(words, " "), side
}

// sideToken recognizes whole-word side qualifiers only.
func sideToken(word string) types.Side {
	switch word {
	case "left", "l":
		return types.SideLeft
	case "right", "r":
		return types.SideRight
	default:
		return types.SideNone
	}
}

func containsEither(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// coversTokens reports whether every phrase token appears somewhere in the
// term's key or synonym vocabulary.
func coversTokens(phraseTokens []string, term string, synonyms []string) bool {
	if len(phraseTokens) == 0 {
		return false
	}
	vocab := term
	for _, syn := range synonyms {
		vocab += " " + strings.ToLower(syn)
	}
	for _, tok := range phraseTokens {
		if !strings.Contains(vocab, tok) {
			return false
		}
	}
	return true
}

// orderTerms sorts matches best tier first, lexically within a tier, so
// repeated calls produce identical ordering.
func orderTerms(best map[string]Tier) []TermMatch {
	terms := make([]TermMatch, 0, len(best))
	for term, tier := range best {
		terms = append(terms, TermMatch{Term: term, Tier: tier})
	}
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].Tier != terms[j].Tier {
			return terms[i].Tier < terms[j].Tier
		}
		return terms[i].Term < terms[j].Term
	})
	return terms
}
