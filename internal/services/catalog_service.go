package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	cache "github.com/patrickmn/go-cache"

	"patternhub/internal/catalog"
	"patternhub/internal/models"
	"patternhub/internal/store"
)

// CatalogService orchestrates the pattern catalog: it runs the pure search
// and snippet core against the store's current snapshot, memoizes rendered
// output, records usage, and fans out refresh notifications.
type CatalogService struct {
	store     *store.PatternStore
	analytics *AnalyticsService
	pubsub    *PubSubService // optional
	rendered  *cache.Cache   // snippet + doc memoization, invalidated on refresh

	// onRefresh is invoked after every successful snapshot swap (local or
	// remote). Used by the WebSocket layer to notify connected clients.
	onRefresh func(patterns int, version string)
}

// NewCatalogService creates a catalog service over the given store
func NewCatalogService(st *store.PatternStore, analytics *AnalyticsService) *CatalogService {
	return &CatalogService{
		store:     st,
		analytics: analytics,
		rendered:  cache.New(30*time.Minute, 10*time.Minute),
	}
}

// SetPubSub wires the optional cross-instance refresh relay
func (s *CatalogService) SetPubSub(ps *PubSubService) {
	s.pubsub = ps
	ps.Subscribe(func(msg *PubSubMessage) {
		if msg.Type != "catalog_refreshed" {
			return
		}
		log.Printf("🔄 [CATALOG] Remote refresh from instance %s, reloading", msg.InstanceID)
		if err := s.store.Refresh(); err != nil {
			log.Printf("❌ [CATALOG] Reload after remote refresh failed: %v", err)
			return
		}
		s.afterRefresh(false)
	})
}

// SetOnRefresh registers a callback fired after every snapshot swap
func (s *CatalogService) SetOnRefresh(fn func(patterns int, version string)) {
	s.onRefresh = fn
}

// Search runs the filter/rank pipeline against the current snapshot and
// records the usage event.
func (s *CatalogService) Search(ctx context.Context, req models.SearchRequest, traceID string) []models.Pattern {
	start := time.Now()

	results := catalog.Search(s.store.Patterns(), catalog.Query{
		Text:       req.Query,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Limit:      req.Limit,
	})

	if m := GetMetrics(); m != nil {
		m.SearchRequests.Inc()
		m.SearchLatency.Observe(time.Since(start).Seconds())
	}
	s.analytics.Record(ctx, UsageEvent{
		EventType:   EventSearch,
		Query:       req.Query,
		ResultCount: len(results),
		TraceID:     traceID,
	})

	return results
}

// Get looks up a single pattern by id
func (s *CatalogService) Get(id string) (models.Pattern, bool) {
	return catalog.GetByID(s.store.Patterns(), id)
}

// Generate renders a snippet for the given pattern id. The rendered string
// is memoized per (id, options) since patterns only change on refresh.
// Returns catalog.ErrNotFound when the id does not exist.
func (s *CatalogService) Generate(ctx context.Context, req models.GenerateRequest, traceID string) (models.Pattern, string, error) {
	p, ok := catalog.GetByID(s.store.Patterns(), req.PatternID)
	if !ok {
		return models.Pattern{}, "", fmt.Errorf("pattern %q: %w", req.PatternID, catalog.ErrNotFound)
	}

	snippet, err := s.renderSnippet(p, req)
	if err != nil {
		return p, "", err
	}

	// Usage is recorded on every generate, cached or not.
	if m := GetMetrics(); m != nil {
		m.GenerateRequests.Inc()
	}
	s.analytics.Record(ctx, UsageEvent{
		EventType:   EventGenerate,
		PatternID:   req.PatternID,
		ResultCount: 1,
		TraceID:     traceID,
	})

	return p, snippet, nil
}

// snippetCacheKey derives the memoization key from the full request. The
// request is serialized and hashed: a plain separator join would let crafted
// field values alias each other's entries.
func snippetCacheKey(req models.GenerateRequest) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(payload)
	return "snippet:" + hex.EncodeToString(sum[:])
}

func (s *CatalogService) renderSnippet(p models.Pattern, req models.GenerateRequest) (string, error) {
	cacheKey := snippetCacheKey(req)
	if cached, found := s.rendered.Get(cacheKey); found {
		if snippet, ok := cached.(string); ok {
			return snippet, nil
		}
	}

	snippet, err := catalog.Generate(p, catalog.Options{
		Name:          req.Name,
		Input:         req.Input,
		ModuleType:    req.ModuleType,
		EffectVersion: req.EffectVersion,
	})
	if err != nil {
		return "", err
	}

	s.rendered.Set(cacheKey, snippet, cache.DefaultExpiration)
	return snippet, nil
}

// RenderDoc returns the HTML documentation page for a pattern, memoized
// until the next refresh.
func (s *CatalogService) RenderDoc(id string) (string, error) {
	p, ok := catalog.GetByID(s.store.Patterns(), id)
	if !ok {
		return "", fmt.Errorf("pattern %q: %w", id, catalog.ErrNotFound)
	}

	cacheKey := "doc:" + id
	if cached, found := s.rendered.Get(cacheKey); found {
		if html, ok := cached.(string); ok {
			return html, nil
		}
	}

	html, err := catalog.RenderDoc(p)
	if err != nil {
		return "", err
	}

	s.rendered.Set(cacheKey, html, cache.DefaultExpiration)
	return html, nil
}

// Refresh reloads the snapshot from disk and notifies local clients and,
// when pub/sub is wired, the other instances.
func (s *CatalogService) Refresh(ctx context.Context) error {
	if err := s.store.Refresh(); err != nil {
		return err
	}
	s.afterRefresh(true)

	if s.pubsub != nil {
		snap := s.store.Snapshot()
		if err := s.pubsub.Publish(ctx, PubSubMessage{
			Type:     "catalog_refreshed",
			Patterns: len(snap.Patterns),
			Version:  snap.Version,
		}); err != nil {
			log.Printf("⚠️ [CATALOG] Failed to publish refresh event: %v", err)
		}
	}

	return nil
}

// NotifyFileReload is called by the fsnotify watcher after a hot reload has
// already swapped the snapshot.
func (s *CatalogService) NotifyFileReload() {
	s.afterRefresh(true)
}

func (s *CatalogService) afterRefresh(countMetric bool) {
	s.rendered.Flush()
	if countMetric {
		if m := GetMetrics(); m != nil {
			m.CatalogRefreshes.Inc()
		}
	}
	if s.onRefresh != nil {
		snap := s.store.Snapshot()
		s.onRefresh(len(snap.Patterns), snap.Version)
	}
}

// Count returns the number of patterns in the current snapshot
func (s *CatalogService) Count() int {
	return s.store.Count()
}

// Snapshot exposes the current snapshot for read-only use
func (s *CatalogService) Snapshot() *store.Snapshot {
	return s.store.Snapshot()
}
