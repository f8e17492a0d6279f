package search

import (
	"context"

	"github.com/treadline/tiredex/internal/domain/catalog"
)

// CatalogSource provides immutable catalog snapshots.
type CatalogSource interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
}

// Ranker reorders candidates by relevance to the query, returning at most
// limit items. An error means the ranking capability failed; callers fall
// back to the candidate order.
type Ranker interface {
	Rank(ctx context.Context, query string, candidates []catalog.Item, limit int) ([]catalog.Item, error)
}
