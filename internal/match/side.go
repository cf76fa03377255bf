// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"strings"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// DetectSide reads the laterality marker from a mesh name. Recognized
// markers are ".l"/".r" and "_l"/"_r" suffixes and whole-word "left"/
// "right" tokens, case-insensitively. A name with no marker is neutral.
func DetectSide(mesh string) types.Side {
	lower := strings.ToLower(mesh)

	switch {
	case strings.HasSuffix(lower, ".l"), strings.HasSuffix(lower, "_l"), strings.HasSuffix(lower, " l"):
		return types.SideLeft
	case strings.HasSuffix(lower, ".r"), strings.HasSuffix(lower, "_r"), strings.HasSuffix(lower, " r"):
		return types.SideRight
	}

	for _, tok := range strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '.' || r == '_' || r == '-'
	}) {
		switch tok {
		case "left":
			return types.SideLeft
		case "right":
			return types.SideRight
		}
	}

	return types.SideNone
}

// filterBySide drops matches whose detected side contradicts the requested
// one. Neutral meshes always survive; they are the fallback when no
// correctly-sided mesh exists.
func filterBySide(matches []types.MeshMatch, side types.Side) []types.MeshMatch {
	if side == types.SideNone {
		return matches
	}

	kept := make([]types.MeshMatch, 0, len(matches))
	for _, m := range matches {
		if s := DetectSide(m.Mesh); s == types.SideNone || s == side {
			kept = append(kept, m)
		}
	}
	return kept
}
