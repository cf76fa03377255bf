// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

const sampleDoc = `synonyms:
  quadriceps: [quads, thigh muscle, quadriceps femoris]
  biceps: [biceps brachii, upper arm]
relationships:
  quadriceps: [vastus lateralis, rectus femoris, patella]
  biceps: [brachialis, humerus]
embeddings:
  quadriceps: [0.12, 0.4, -0.7]
`

func TestParse_ValidDocument(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"biceps", "quadriceps"}, base.Terms())
	assert.Equal(t, []string{"quads", "thigh muscle", "quadriceps femoris"}, base.SynonymsOf("quadriceps"))
	assert.Equal(t, []string{"brachialis", "humerus"}, base.RelatedTo("biceps"))
}

func TestParse_CaseInsensitiveLookup(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, base.SynonymsOf("quadriceps"), base.SynonymsOf("Quadriceps"))
	assert.Equal(t, base.RelatedTo("biceps"), base.RelatedTo("  BICEPS "))
	assert.True(t, base.Has("QUADRICEPS"))
}

func TestParse_UnknownTermIsNotAnError(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Empty(t, base.SynonymsOf("elbow"))
	assert.Empty(t, base.RelatedTo("elbow"))
	assert.False(t, base.Has("elbow"))
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not a mapping", `- quadriceps`},
		{"section not a mapping", "synonyms: [quads]\nrelationships: {}"},
		{"term maps to a non-sequence", "synonyms:\n  quadriceps: quads\nrelationships:\n  quadriceps: [patella]"},
		{"empty sequence", "synonyms:\n  quadriceps: []\nrelationships:\n  quadriceps: [patella]"},
		{"orphaned synonyms entry", "synonyms:\n  quadriceps: [quads]\nrelationships: {}"},
		{"orphaned relationships entry", "synonyms: {}\nrelationships:\n  quadriceps: [patella]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			var kbErr *types.KnowledgeBaseError
			assert.ErrorAs(t, err, &kbErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	var kbErr *types.KnowledgeBaseError
	require.ErrorAs(t, err, &kbErr)
	assert.Contains(t, kbErr.Source, "nope.yaml")
}

func TestRoundTrip_PreservesEverything(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "knowledge.yaml")
	require.NoError(t, base.ExportYAML(path))

	reloaded, err := Load(path)
	require.NoError(t, err)

	for _, term := range base.Terms() {
		assert.Equal(t, base.SynonymsOf(term), reloaded.SynonymsOf(term), term)
		assert.Equal(t, base.RelatedTo(term), reloaded.RelatedTo(term), term)
	}

	// The opaque embeddings section survives the round trip untouched.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "embeddings:")
	assert.Contains(t, string(data), "0.12")
}

func TestExportJSON(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, base.ExportJSON(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"quadriceps"`)
	assert.Contains(t, string(data), `"vastus lateralis"`)
}

func TestExpand_MergesWithoutDuplicates(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	incoming, err := Parse([]byte(`synonyms:
  quadriceps: [quads, front of thigh]
  hamstring: [hamstrings]
relationships:
  quadriceps: [patella, femur]
  hamstring: [biceps femoris]
`))
	require.NoError(t, err)

	base.Expand(incoming)

	assert.Equal(t,
		[]string{"quads", "thigh muscle", "quadriceps femoris", "front of thigh"},
		base.SynonymsOf("quadriceps"))
	assert.Equal(t,
		[]string{"vastus lateralis", "rectus femoris", "patella", "femur"},
		base.RelatedTo("quadriceps"))
	assert.True(t, base.Has("hamstring"))
	assert.NotEmpty(t, base.RelatedTo("hamstring"))
}

func TestReverseRelated(t *testing.T) {
	base, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"quadriceps"}, base.ReverseRelated("patella"))
	assert.Empty(t, base.ReverseRelated("femur"))
}

func TestDefault_SatisfiesLoadInvariants(t *testing.T) {
	base := Default()
	require.NoError(t, base.validate())

	for _, term := range base.Terms() {
		assert.NotEmpty(t, base.SynonymsOf(term), term)
		assert.NotEmpty(t, base.RelatedTo(term), term)
	}
}

func TestDefault_RoundTrip(t *testing.T) {
	base := Default()

	path := filepath.Join(t.TempDir(), "default.yaml")
	require.NoError(t, base.ExportYAML(path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, base.Terms(), reloaded.Terms())
}
