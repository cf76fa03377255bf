// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package match

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/pdiddy/anatomy-mapper/pkg/types"
)

// answerCache memoizes AI rankings for identical queries within a TTL
// window. The AI call is the only expensive operation in a match; repeated
// reports about the same body part are common within a session. Stale hits
// inside the window are acceptable.
type answerCache struct {
	c *gocache.Cache
}

func newAnswerCache(ttl time.Duration) *answerCache {
	if ttl <= 0 {
		return nil
	}
	return &answerCache{c: gocache.New(ttl, 2*ttl)}
}

// key derives the cache key from the phrase, side, and a digest of the
// sorted candidate list, so the same model loaded in a different mesh
// order still hits.
func (a *answerCache) key(q types.MatchQuery) string {
	sorted := append([]string{}, q.CandidateMeshes...)
	sort.Strings(sorted)
	digest := sha256.Sum256([]byte(strings.Join(sorted, "\x00")))
	return fmt.Sprintf("%s|%s|%x", strings.ToLower(q.BodyPart), q.Side, digest[:12])
}

func (a *answerCache) get(q types.MatchQuery) ([]types.MeshMatch, bool) {
	if a == nil {
		return nil, false
	}
	v, ok := a.c.Get(a.key(q))
	if !ok {
		return nil, false
	}
	matches, ok := v.([]types.MeshMatch)
	return matches, ok
}

func (a *answerCache) put(q types.MatchQuery, matches []types.MeshMatch) {
	if a == nil {
		return
	}
	a.c.SetDefault(a.key(q), matches)
}
