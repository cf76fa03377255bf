// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/charmbracelet/log"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// rankingPromptTmpl instructs the model to select and rank meshes for a
// body part. The full candidate list is always enumerated; silently
// truncating it would hide meshes the caller expects to be considered.
var rankingPromptTmpl = template.Must(template.New("ranking").Parse(`You are an expert anatomist and 3D medical visualization specialist. Your task is to select the meshes from a 3D anatomical model that correspond to a body part mentioned in an injury report.

BODY PART: {{.BodyPart}}
SIDE: {{if .Side}}{{.Side}}{{else}}not specified{{end}}

AVAILABLE MESHES IN THE 3D MODEL:
{{range .Candidates}}{{.}}
{{end}}
INSTRUCTIONS:
1. Select only meshes that anatomically represent the body part; do not include unrelated surrounding structures.
2. Pay attention to side markers in mesh names (e.g. ".l", ".r", "left", "right"). If a side is specified, prefer meshes matching that side.
3. Use only exact mesh names from the list above.
4. Rank the selected meshes from most to least relevant.

Respond with one line per selected mesh in the form:

mesh name | confidence

where confidence is a number between 0.0 and 1.0. Do not include any other text.
`))

// renderRankingPrompt executes the ranking prompt for a match query.
func renderRankingPrompt(q types.MatchQuery) (string, error) {
	var buf bytes.Buffer
	err := rankingPromptTmpl.Execute(&buf, struct {
		BodyPart   string
		Side       types.Side
		Candidates []string
	}{q.BodyPart, q.Side, q.CandidateMeshes})
	if err != nil {
		return "", fmt.Errorf("rendering ranking prompt: %w", err)
	}
	return buf.String(), nil
}

// parseRankedLines extracts "mesh | confidence" lines from a model answer,
// tolerating surrounding prose, bullets, and numbering. A line naming a
// mesh outside the candidate list is a hallucination: logged and dropped,
// never propagated. A bare mesh name without a confidence is accepted at a
// rank-decayed confidence, matching models that answer with a plain list.
func parseRankedLines(answer string, candidates []string) []types.MeshMatch {
	exact := make(map[string]string, len(candidates))
	folded := make(map[string]string, len(candidates))
	for _, c := range candidates {
		exact[c] = c
		folded[strings.ToLower(c)] = c
	}

	resolve := func(name string) (string, bool) {
		if m, ok := exact[name]; ok {
			return m, true
		}
		m, ok := folded[strings.ToLower(name)]
		return m, ok
	}

	var matches []types.MeshMatch
	seen := map[string]bool{}

	for _, line := range strings.Split(answer, "\n") {
		line = stripListPrefix(strings.TrimSpace(line))
		if line == "" {
			continue
		}

		name := line
		confidence := -1.0
		if idx := strings.LastIndex(line, "|"); idx >= 0 {
			name = strings.TrimSpace(line[:idx])
			c, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
			if err == nil {
				confidence = clamp01(c)
			}
		}

		mesh, ok := resolve(name)
		if !ok {
			if strings.Contains(line, "|") {
				log.Warn("discarding hallucinated mesh from AI answer", "mesh", name)
			}
			continue
		}
		if seen[mesh] {
			continue
		}
		seen[mesh] = true

		if confidence < 0 {
			confidence = rankDecay(len(matches))
		}
		matches = append(matches, types.MeshMatch{
			Mesh:       mesh,
			Confidence: confidence,
			Source:     types.SourceAI,
		})
	}

	// Stable order for equal confidences so results are reproducible.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Confidence != matches[j].Confidence {
			return matches[i].Confidence > matches[j].Confidence
		}
		return matches[i].Mesh < matches[j].Mesh
	})
	return matches
}

// stripListPrefix removes bullet and numbering decoration models add
// despite instructions.
func stripListPrefix(line string) string {
	line = strings.TrimLeft(line, "-*• \t")
	if idx := strings.Index(line, ". "); idx > 0 && idx <= 3 {
		if _, err := strconv.Atoi(line[:idx]); err == nil {
			line = line[idx+2:]
		}
	}
	return strings.TrimSpace(line)
}

// rankDecay assigns confidence by position for answers without explicit
// confidences: 1.0, 0.9, 0.8, ... floored at 0.1.
func rankDecay(position int) float64 {
	c := 1.0 - 0.1*float64(position)
	if c < 0.1 {
		c = 0.1
	}
	return c
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
