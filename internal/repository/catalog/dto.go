package catalog

import (
	"fmt"

	"github.com/treadline/tiredex/internal/domain"
	domcat "github.com/treadline/tiredex/internal/domain/catalog"
)

// catalogFile mirrors the on-disk resource: an item collection plus the
// keyword taxonomy. Pointers distinguish absent fields from empty ones —
// a present-but-empty "tires" list is valid, a missing one is not.
type catalogFile struct {
	Tires          *[]domcat.Item       `json:"tires"`
	KeywordMapping *map[string][]string `json:"keyword_mapping"`
}

func (f *catalogFile) toSnapshot() (domcat.Snapshot, error) {
	if f.Tires == nil {
		return domcat.Snapshot{}, fmt.Errorf("%w: missing %q collection", domain.ErrInvalidSchema, "tires")
	}
	if f.KeywordMapping == nil {
		return domcat.Snapshot{}, fmt.Errorf("%w: missing %q", domain.ErrInvalidSchema, "keyword_mapping")
	}

	taxonomy, err := domcat.NewTaxonomy(*f.KeywordMapping)
	if err != nil {
		return domcat.Snapshot{}, err
	}

	return domcat.NewSnapshot(*f.Tires, taxonomy), nil
}
