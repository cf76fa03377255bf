// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package kb loads and queries the anatomical knowledge document: canonical
// terms, their synonyms, and their related structures. The document is read
// once at startup and is read-only at match time; reads need no locking.
package kb

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// reserved top-level sections interpreted by this package. Anything else in
// the document (the embeddings section in particular) is preserved opaquely
// through load and export.
const (
	sectionSynonyms      = "synonyms"
	sectionRelationships = "relationships"
)

// Base is the loaded anatomical knowledge base.
type Base struct {
	synonyms      map[string][]string
	relationships map[string][]string

	// extras holds unrecognized top-level sections as raw YAML nodes, in
	// document order, so exports round-trip them untouched.
	extras []extraSection
}

type extraSection struct {
	key  string
	node *yaml.Node
}

// Load reads and validates a knowledge document from path.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.KnowledgeBaseError{Source: path, Reason: err.Error()}
	}
	b, err := Parse(data)
	if err != nil {
		if kbErr, ok := err.(*types.KnowledgeBaseError); ok {
			kbErr.Source = path
		}
		return nil, err
	}
	return b, nil
}

// Parse validates and decodes a knowledge document. The document must be a
// mapping whose synonyms and relationships sections map terms to non-empty
// string sequences, and both sections must carry the same term set: a term
// appears in both or in neither.
func Parse(data []byte) (*Base, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &types.KnowledgeBaseError{Reason: fmt.Sprintf("parse error: %v", err)}
	}
	if len(doc.Content) == 0 {
		return nil, &types.KnowledgeBaseError{Reason: "document is empty"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &types.KnowledgeBaseError{Reason: "document is not a mapping"}
	}

	b := &Base{
		synonyms:      map[string][]string{},
		relationships: map[string][]string{},
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]

		switch key {
		case sectionSynonyms:
			if err := decodeTermMap(key, value, b.synonyms); err != nil {
				return nil, err
			}
		case sectionRelationships:
			if err := decodeTermMap(key, value, b.relationships); err != nil {
				return nil, err
			}
		default:
			b.extras = append(b.extras, extraSection{key: key, node: value})
		}
	}

	if err := b.validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// decodeTermMap decodes a term → sequence-of-strings mapping, lower-casing
// term keys for case-insensitive lookup.
func decodeTermMap(section string, node *yaml.Node, into map[string][]string) error {
	if node.Kind != yaml.MappingNode {
		return &types.KnowledgeBaseError{
			Reason: fmt.Sprintf("section %q is not a mapping", section),
		}
	}
	var raw map[string][]string
	if err := node.Decode(&raw); err != nil {
		return &types.KnowledgeBaseError{
			Reason: fmt.Sprintf("section %q: a term maps to a non-sequence: %v", section, err),
		}
	}
	for term, values := range raw {
		if len(values) == 0 {
			return &types.KnowledgeBaseError{
				Reason: fmt.Sprintf("section %q: term %q has an empty sequence", section, term),
			}
		}
		into[strings.ToLower(term)] = values
	}
	return nil
}

// validate enforces that the synonym and relationship sections carry the
// same term set, so no term is a partial orphan.
func (b *Base) validate() error {
	for term := range b.synonyms {
		if _, ok := b.relationships[term]; !ok {
			return &types.KnowledgeBaseError{
				Reason: fmt.Sprintf("term %q has synonyms but no relationships", term),
			}
		}
	}
	for term := range b.relationships {
		if _, ok := b.synonyms[term]; !ok {
			return &types.KnowledgeBaseError{
				Reason: fmt.Sprintf("term %q has relationships but no synonyms", term),
			}
		}
	}
	return nil
}

// SynonymsOf returns the synonym list for a term, case-insensitively. An
// unknown term returns nil; free-text queries routinely miss the base.
func (b *Base) SynonymsOf(term string) []string {
	return b.synonyms[strings.ToLower(strings.TrimSpace(term))]
}

// RelatedTo returns the related-structure list for a term, case-insensitively.
func (b *Base) RelatedTo(term string) []string {
	return b.relationships[strings.ToLower(strings.TrimSpace(term))]
}

// ReverseRelated returns the canonical terms whose relationship lists
// mention term. Relationships are authored directed, but matching treats
// them symmetrically: a query for "patella" still benefits from
// "quadriceps" listing it.
func (b *Base) ReverseRelated(term string) []string {
	needle := strings.ToLower(strings.TrimSpace(term))
	var terms []string
	for _, t := range b.Terms() {
		for _, rel := range b.relationships[t] {
			if strings.ToLower(rel) == needle {
				terms = append(terms, t)
				break
			}
		}
	}
	return terms
}

// Has reports whether term is a canonical key in the base.
func (b *Base) Has(term string) bool {
	_, ok := b.synonyms[strings.ToLower(strings.TrimSpace(term))]
	return ok
}

// Terms returns the sorted canonical term keys.
func (b *Base) Terms() []string {
	terms := make([]string, 0, len(b.synonyms))
	for t := range b.synonyms {
		terms = append(terms, t)
	}
	sort.Strings(terms)
	return terms
}

// Expand merges another validated knowledge base into this one, appending
// synonyms and relationships that are not already present. The incoming
// base has already passed validation, so the merged term set keeps the
// both-sections invariant.
func (b *Base) Expand(other *Base) {
	for term, syns := range other.synonyms {
		b.synonyms[term] = appendMissing(b.synonyms[term], syns)
	}
	for term, rels := range other.relationships {
		b.relationships[term] = appendMissing(b.relationships[term], rels)
	}
}

func appendMissing(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, v := range dst {
		seen[strings.ToLower(v)] = true
	}
	for _, v := range src {
		if !seen[strings.ToLower(v)] {
			dst = append(dst, v)
			seen[strings.ToLower(v)] = true
		}
	}
	return dst
}
