package search

import (
	"strings"

	"github.com/treadline/tiredex/internal/domain/catalog"
	"github.com/treadline/tiredex/internal/domain/query"
)

// filterItems partitions the catalog by the extracted intent: an AND of
// three predicates, each vacuously true when its intent field is absent.
// Stable: survivors keep their original catalog order. No scoring happens
// here; ranking is a separate step.
func filterItems(items []catalog.Item, intent query.Intent) []catalog.Item {
	var result []catalog.Item
	for i := range items {
		if matchesIntent(&items[i], intent) {
			result = append(result, items[i])
		}
	}
	return result
}

func matchesIntent(item *catalog.Item, intent query.Intent) bool {
	// Brand: the raw-cased trigger against the raw item fields. Detection
	// already lower-cased both sides; filtering intentionally does not.
	if brand, ok := intent.Brand(); ok {
		if !strings.Contains(item.BrandLocalized(), brand) &&
			!strings.Contains(item.BrandCommon(), brand) {
			return false
		}
	}

	if size, ok := intent.Size(); ok {
		if !strings.Contains(strings.ToUpper(item.Size()), size) {
			return false
		}
	}

	// Categories: at least one shared category (OR across the set).
	if cats := intent.Categories(); len(cats) > 0 {
		shared := false
		for _, c := range cats {
			if item.HasCategory(c) {
				shared = true
				break
			}
		}
		if !shared {
			return false
		}
	}

	return true
}
