package catalog

import (
	"fmt"
	"sort"

	"github.com/treadline/tiredex/internal/domain"
)

// Reserved taxonomy entry names. "brand" holds the brand trigger list,
// "size" is reserved for the size pattern and never matched as a category.
const (
	ReservedBrand = "brand"
	ReservedSize  = "size"
)

// Taxonomy maps category names to ordered trigger-word lists.
// Immutable after construction.
type Taxonomy struct {
	entries map[string][]string
}

// NewTaxonomy validates and creates a Taxonomy. The mapping must contain a
// "brand" entry and at least one general (non-reserved) category.
func NewTaxonomy(entries map[string][]string) (Taxonomy, error) {
	if _, ok := entries[ReservedBrand]; !ok {
		return Taxonomy{}, fmt.Errorf("%w: taxonomy has no %q entry", domain.ErrInvalidSchema, ReservedBrand)
	}

	general := 0
	for name := range entries {
		if name != ReservedBrand && name != ReservedSize {
			general++
		}
	}
	if general == 0 {
		return Taxonomy{}, fmt.Errorf("%w: taxonomy has no general category mapping", domain.ErrInvalidSchema)
	}

	cloned := make(map[string][]string, len(entries))
	for name, words := range entries {
		cloned[name] = cloneStrings(words)
	}
	return Taxonomy{entries: cloned}, nil
}

// Brands returns the brand trigger list in its declared order.
func (t *Taxonomy) Brands() []string {
	return t.entries[ReservedBrand]
}

// Categories returns the general category names, sorted for determinism.
// Order is irrelevant to matching; sorting just keeps logs and tests stable.
func (t *Taxonomy) Categories() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		if name == ReservedBrand || name == ReservedSize {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Triggers returns the trigger words for a category.
func (t *Taxonomy) Triggers(category string) []string {
	return t.entries[category]
}
