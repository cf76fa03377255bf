// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"
)

// Marshal serializes the base back into a knowledge document. Term keys
// are emitted sorted for stable output; unrecognized top-level sections are
// re-attached untouched, so a load → export round trip is lossless.
func (b *Base) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	appendSection(root, sectionSynonyms, b.synonyms)
	appendSection(root, sectionRelationships, b.relationships)

	for _, extra := range b.extras {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: extra.key},
			extra.node,
		)
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshaling knowledge document: %w", err)
	}
	return data, nil
}

func appendSection(root *yaml.Node, name string, terms map[string][]string) {
	section := &yaml.Node{Kind: yaml.MappingNode}

	keys := make([]string, 0, len(terms))
	for k := range terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, term := range keys {
		values := &yaml.Node{Kind: yaml.SequenceNode}
		for _, v := range terms[term] {
			values.Content = append(values.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: v})
		}
		section.Content = append(section.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: term},
			values,
		)
	}

	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: name},
		section,
	)
}

// ExportYAML writes the knowledge document to path.
func (b *Base) ExportYAML(path string) error {
	data, err := b.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the synonym and relationship sections to path as JSON.
// Opaque sections are skipped; JSON export is a reporting convenience, the
// YAML document remains the source of truth.
func (b *Base) ExportJSON(path string) error {
	doc := struct {
		Synonyms      map[string][]string `json:"synonyms"`
		Relationships map[string][]string `json:"relationships"`
	}{
		Synonyms:      b.synonyms,
		Relationships: b.relationships,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
