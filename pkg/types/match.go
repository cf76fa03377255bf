// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the value types and configuration shared across the
// anatomy-mapper components.
package types

import "strings"

// Side is the laterality qualifier of a query or a mesh name.
type Side string

const (
	SideNone  Side = ""
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide normalizes a free-form side string. Unrecognized values map to
// SideNone rather than failing; side is an optional qualifier everywhere.
func ParseSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return SideLeft
	case "right", "r":
		return SideRight
	default:
		return SideNone
	}
}

// Opposite returns the contralateral side, or SideNone for SideNone.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return SideNone
	}
}

// MatchSource identifies which matcher produced a result entry.
type MatchSource string

const (
	SourceAI      MatchSource = "ai"
	SourceLocal   MatchSource = "local"
	SourceLearned MatchSource = "learned"
)

// MeshMatch is one ranked entry in a match result. Confidence is in [0,1]
// and reflects matcher certainty, not a probability.
type MeshMatch struct {
	Mesh       string      `json:"mesh" yaml:"mesh"`
	Confidence float64     `json:"confidence" yaml:"confidence"`
	Source     MatchSource `json:"source" yaml:"source"`
}

// MatchQuery is the per-request value object handed to the match engine.
type MatchQuery struct {
	// BodyPart is the free-text anatomical phrase from the report.
	BodyPart string `json:"body_part" yaml:"body_part"`

	// Side is the optional laterality qualifier.
	Side Side `json:"side,omitempty" yaml:"side,omitempty"`

	// CandidateMeshes is the mesh name list supplied by the 3D model loader.
	CandidateMeshes []string `json:"candidate_meshes" yaml:"candidate_meshes"`
}

// LearningRecord is a persisted association between a normalized term/side
// and a mesh, accumulated from confirmed correct matches.
type LearningRecord struct {
	Term   string  `json:"term" yaml:"term"`
	Side   Side    `json:"side,omitempty" yaml:"side,omitempty"`
	Mesh   string  `json:"mesh" yaml:"mesh"`
	Weight float64 `json:"weight" yaml:"weight"`
}
