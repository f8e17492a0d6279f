// Package search runs the query pipeline: intent extraction, deterministic
// filtering, bounded fallback, and LLM re-ranking with graceful degradation.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/treadline/tiredex/internal/domain/catalog"
	"github.com/treadline/tiredex/internal/domain/query"
	"github.com/treadline/tiredex/internal/logger"
	"github.com/treadline/tiredex/internal/metrics"
)

const (
	// DefaultMaxResults bounds the final result list.
	DefaultMaxResults = 20
	// fallbackCap bounds the candidate set when the deterministic filter
	// matches nothing. Independent of the final result cap.
	fallbackCap = 50
)

// Service answers free-text queries against the catalog.
type Service struct {
	catalog    CatalogSource
	ranker     Ranker
	maxResults int
}

// New creates a search service.
func New(catalog CatalogSource, ranker Ranker) *Service {
	return &Service{catalog: catalog, ranker: ranker, maxResults: DefaultMaxResults}
}

// WithMaxResults overrides the result cap.
func (s *Service) WithMaxResults(n int) *Service {
	if n > 0 {
		s.maxResults = n
	}
	return s
}

// Search runs the full pipeline for one query. Only catalog-load errors are
// returned; ranking failures degrade to the deterministic candidate order.
// The returned list is at most maxResults long.
func (s *Service) Search(ctx context.Context, raw string) ([]catalog.Item, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	intent := query.ParseIntent(raw, snap.Taxonomy())

	candidates := filterItems(snap.Items(), intent)
	if len(candidates) == 0 {
		candidates = fallbackCandidates(snap.Items())
		metrics.RankingFallbackTotal.WithLabelValues("empty_filter").Inc()
	}

	log := logger.FromContext(ctx)

	ranked, err := s.ranker.Rank(ctx, raw, candidates, s.maxResults)
	if err != nil {
		// Ranking never fails the query: deterministic order is the floor.
		log.Warn("ranking failed, using deterministic order",
			zap.Error(err),
			zap.Int("candidates", len(candidates)),
		)
		metrics.RankingFallbackTotal.WithLabelValues("ranking_failed").Inc()
		return truncate(candidates, s.maxResults), nil
	}

	return truncate(ranked, s.maxResults), nil
}

// fallbackCandidates returns the head of the unfiltered catalog in original
// order. A safety net, not a relaxed re-filter.
func fallbackCandidates(items []catalog.Item) []catalog.Item {
	return truncate(items, fallbackCap)
}

func truncate(items []catalog.Item, limit int) []catalog.Item {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
