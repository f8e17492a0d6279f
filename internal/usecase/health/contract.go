package health

import (
	"context"

	"github.com/treadline/tiredex/internal/domain/catalog"
)

// CatalogChecker verifies the catalog resource can be loaded.
type CatalogChecker interface {
	Snapshot(ctx context.Context) (catalog.Snapshot, error)
}

// RankingChecker checks ranking provider availability.
type RankingChecker interface {
	HealthCheck(ctx context.Context) error
}
