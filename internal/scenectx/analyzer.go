package scenectx

import (
	"context"
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// Analyzer pulls the current Scene Context from the host and caches it with
// a short TTL (spec §4.6). Cache entries are keyed per session so that two
// Supervisor instances (spec §5, "share no mutable state") never see each
// other's snapshot.
//
// The cache itself is an expirable LRU rather than the hand-rolled
// map+mutex+timestamp the teacher's internal/session/store.go uses for an
// analogous TTL problem — same shape of problem, library-backed this time
// (see DESIGN.md).
type Analyzer struct {
	host  Host
	cache *lru.LRU[string, SceneContext]
	ttl   time.Duration
}

// NewAnalyzer creates an Analyzer. ttl <= 0 disables caching: every Analyze
// call hits the host. maxSessions bounds the cache's memory footprint;
// 0 falls back to a sensible default.
func NewAnalyzer(host Host, ttl time.Duration, maxSessions int) *Analyzer {
	if maxSessions <= 0 {
		maxSessions = 256
	}
	cacheTTL := ttl
	if cacheTTL <= 0 {
		cacheTTL = time.Millisecond // expirable.NewLRU requires > 0; effectively disables reuse
	}
	return &Analyzer{
		host:  host,
		cache: lru.NewLRU[string, SceneContext](maxSessions, nil, cacheTTL),
		ttl:   ttl,
	}
}

// Analyze returns the Scene Context for sessionKey, reusing a cached
// snapshot younger than the TTL unless forceRefresh is set. On host error
// it returns a minimal context (OBJECT mode, empty collections) rather than
// failing the pipeline (spec §4.6, §7).
func (a *Analyzer) Analyze(ctx context.Context, sessionKey string, forceRefresh bool) SceneContext {
	if !forceRefresh && a.ttl > 0 {
		if cached, ok := a.cache.Get(sessionKey); ok {
			return cached
		}
	}

	snap, err := a.host.FetchScene(ctx)
	if err != nil {
		log.Printf("[Analyzer] host FetchScene failed, degrading to minimal context: %v", err)
		sc := Minimal(time.Now())
		if a.ttl > 0 {
			a.cache.Add(sessionKey, sc)
		}
		return sc
	}

	sc := fromSnapshot(snap)
	if a.ttl > 0 {
		a.cache.Add(sessionKey, sc)
	}
	return sc
}

// Invalidate drops the cached entry for sessionKey (explicit
// invalidate_cache, or a host change notification).
func (a *Analyzer) Invalidate(sessionKey string) {
	a.cache.Remove(sessionKey)
}

func fromSnapshot(snap Snapshot) SceneContext {
	sc := SceneContext{
		Mode:            snap.Mode,
		ActiveObject:    snap.ActiveObject,
		SelectedObjects: snap.SelectedObjects,
		Objects:         snap.Objects,
		Topology:        snap.Topology,
		Materials:       snap.Materials,
		Modifiers:       snap.Modifiers,
		Timestamp:       time.Now(),
	}
	if sc.Mode == "" {
		sc.Mode = ModeObject
	}
	if obj, ok := sc.ActiveObjectInfo(); ok {
		p := DeriveProportions(obj.Dimensions[0], obj.Dimensions[1], obj.Dimensions[2])
		sc.Proportions = &p
	}
	return sc
}
