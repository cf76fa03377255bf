// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/anatomy-mapper/internal/learn"
	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// stubBackend returns canned rankings and counts invocations.
type stubBackend struct {
	calls   int
	matches []types.MeshMatch
	err     error
}

func (s *stubBackend) Name() string { return "stub" }

func (s *stubBackend) Rank(ctx context.Context, q types.MatchQuery) ([]types.MeshMatch, error) {
	s.calls++
	return s.matches, s.err
}

func newTestEngine(t *testing.T, cfg types.AppConfig) (*Engine, *learn.Store) {
	t.Helper()
	store, err := learn.Open(types.LearningConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewEngine(testBase(t), store, cfg), store
}

func TestEngine_EmptyPhraseIsInvalid(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})

	_, err := e.FindMatchingMeshes(context.Background(), "   ", []string{"Sternum"}, types.SideNone)
	assert.ErrorIs(t, err, types.ErrInvalidQuery)

	_, err = e.FindMatchingMeshes(context.Background(), "left side", []string{"Sternum"}, types.SideNone)
	assert.ErrorIs(t, err, types.ErrInvalidQuery)
}

func TestEngine_EmptyCandidatesIsEmptyResult(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})

	matches, err := e.FindMatchingMeshes(context.Background(), "hamstring", nil, types.SideNone)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestEngine_LocalMatchingWithSideFromPhrase(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})

	matches, err := e.FindMatchingMeshes(context.Background(), "Right Hamstring",
		[]string{"Biceps femoris.r", "Biceps femoris.l", "Semitendinosus.r"}, types.SideNone)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "Biceps femoris.r", matches[0].Mesh)
	assert.Equal(t, "Semitendinosus.r", matches[1].Mesh)
}

func TestEngine_ExplicitSideWinsOverPhrase(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})

	matches, err := e.FindMatchingMeshes(context.Background(), "left hamstring",
		[]string{"Biceps femoris.r", "Biceps femoris.l"}, types.SideRight)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "Biceps femoris.r", matches[0].Mesh)
}

func TestEngine_CrossSideRetryDiscountsConfidence(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})

	// Every candidate contradicts the requested side; a discounted
	// wrong-side suggestion beats returning nothing.
	matches, err := e.FindMatchingMeshes(context.Background(), "hamstring",
		[]string{"Biceps femoris.l"}, types.SideRight)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "Biceps femoris.l", matches[0].Mesh)
	assert.InDelta(t, crossSidePenalty, matches[0].Confidence, 1e-9)
}

func TestEngine_AIRankingPreferred(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})
	stub := &stubBackend{matches: []types.MeshMatch{
		{Mesh: "Semitendinosus.r", Confidence: 0.9, Source: types.SourceAI},
	}}
	e.WithBackend(stub)

	matches, err := e.FindMatchingMeshes(context.Background(), "right hamstring",
		[]string{"Biceps femoris.r", "Semitendinosus.r"}, types.SideNone)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "Semitendinosus.r", matches[0].Mesh)
	assert.Equal(t, types.SourceAI, matches[0].Source)
	assert.Equal(t, 1, stub.calls)
}

func TestEngine_AIFailureFallsBackToLocal(t *testing.T) {
	failing, _ := newTestEngine(t, types.AppConfig{})
	failing.WithBackend(&stubBackend{err: fmt.Errorf("%w: connection refused", types.ErrAIUnavailable)})

	localOnly, _ := newTestEngine(t, types.AppConfig{})

	candidates := []string{"Biceps femoris.r", "Semitendinosus.r", "Sternum"}
	got, err := failing.FindMatchingMeshes(context.Background(), "right hamstring", candidates, types.SideNone)
	require.NoError(t, err)

	want, err := localOnly.FindMatchingMeshes(context.Background(), "right hamstring", candidates, types.SideNone)
	require.NoError(t, err)

	assert.Equal(t, want, got)
	assert.NotEmpty(t, got)
}

func TestEngine_AIInconclusiveFallsBackToLocal(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})
	e.WithBackend(&stubBackend{err: fmt.Errorf("%w: empty answer", types.ErrAIInconclusive)})

	matches, err := e.FindMatchingMeshes(context.Background(), "hamstring",
		[]string{"Biceps femoris.r"}, types.SideNone)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, types.SourceLocal, matches[0].Source)
}

func TestEngine_MergesWhenAIBelowMinimum(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{
		Match: types.MatchConfig{MinAIResults: 2},
	})
	e.WithBackend(&stubBackend{matches: []types.MeshMatch{
		{Mesh: "Semitendinosus.r", Confidence: 1.0, Source: types.SourceAI},
	}})

	matches, err := e.FindMatchingMeshes(context.Background(), "hamstring",
		[]string{"Biceps femoris.r", "Semitendinosus.r"}, types.SideNone)
	require.NoError(t, err)

	// The single AI match is below the minimum, so the local results are
	// merged in; at equal confidence the AI entry ranks first.
	require.Len(t, matches, 2)
	assert.Equal(t, "Semitendinosus.r", matches[0].Mesh)
	assert.Equal(t, types.SourceAI, matches[0].Source)
	assert.Equal(t, "Biceps femoris.r", matches[1].Mesh)
	assert.Equal(t, types.SourceLocal, matches[1].Source)
}

func TestEngine_MaxResultsTruncation(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{
		Match: types.MatchConfig{MaxResults: 1},
	})

	matches, err := e.FindMatchingMeshes(context.Background(), "hamstring",
		[]string{"Biceps femoris.r", "Semitendinosus.r", "Semimembranosus.r"}, types.SideNone)
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestEngine_CacheAvoidsRepeatBackendCalls(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{
		AI: types.AIConfig{APIKey: "test-key", CacheTTL: time.Minute},
	})
	stub := &stubBackend{matches: []types.MeshMatch{
		{Mesh: "Biceps femoris.r", Confidence: 0.9, Source: types.SourceAI},
	}}
	e.WithBackend(stub)

	for i := 0; i < 3; i++ {
		matches, err := e.FindMatchingMeshes(context.Background(), "hamstring",
			[]string{"Biceps femoris.r"}, types.SideNone)
		require.NoError(t, err)
		require.Len(t, matches, 1)
	}
	assert.Equal(t, 1, stub.calls)
}

func TestEngine_ConfirmImprovesRanking(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})
	candidates := []string{"Vastus lateralis.l", "Vastus medialis.l"}

	before, err := e.FindMatchingMeshes(context.Background(), "left quadriceps", candidates, types.SideNone)
	require.NoError(t, err)
	require.Len(t, before, 2)
	assert.Equal(t, "Vastus medialis.l", before[0].Mesh)

	require.NoError(t, e.ConfirmMatch("left quadriceps", types.SideNone, "Vastus lateralis.l"))

	after, err := e.FindMatchingMeshes(context.Background(), "left quadriceps", candidates, types.SideNone)
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, "Vastus lateralis.l", after[0].Mesh)
	assert.Equal(t, types.SourceLearned, after[0].Source)
}

func TestEngine_ConfirmValidation(t *testing.T) {
	e, _ := newTestEngine(t, types.AppConfig{})

	assert.ErrorIs(t, e.ConfirmMatch("", types.SideLeft, "Biceps femoris.l"), types.ErrInvalidQuery)
	assert.ErrorIs(t, e.ConfirmMatch("hamstring", types.SideLeft, ""), types.ErrInvalidQuery)
}

func TestEngine_ConfirmOutsideRecentResultsIsAccepted(t *testing.T) {
	e, store := newTestEngine(t, types.AppConfig{})

	// No prior FindMatchingMeshes call for this phrase: accepted anyway.
	require.NoError(t, e.ConfirmMatch("hamstring", types.SideLeft, "Biceps femoris.l"))
	assert.Equal(t, 1.0, store.Weight("hamstring", types.SideLeft, "Biceps femoris.l"))
}
