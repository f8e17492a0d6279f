package catalog

import (
	"errors"
	"reflect"
	"testing"

	"github.com/treadline/tiredex/internal/domain"
)

func TestNewTaxonomy(t *testing.T) {
	tax, err := NewTaxonomy(map[string][]string{
		"brand":   {"Brand1", "Brand2"},
		"comfort": {"quiet"},
		"sport":   {"sport"},
	})
	if err != nil {
		t.Fatalf("NewTaxonomy: %v", err)
	}

	if got := tax.Brands(); !reflect.DeepEqual(got, []string{"Brand1", "Brand2"}) {
		t.Errorf("Brands() = %v", got)
	}
	if got := tax.Categories(); !reflect.DeepEqual(got, []string{"comfort", "sport"}) {
		t.Errorf("Categories() = %v", got)
	}
	if got := tax.Triggers("comfort"); !reflect.DeepEqual(got, []string{"quiet"}) {
		t.Errorf("Triggers(comfort) = %v", got)
	}
}

func TestNewTaxonomy_MissingBrand(t *testing.T) {
	_, err := NewTaxonomy(map[string][]string{"comfort": {"quiet"}})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestNewTaxonomy_NoGeneralCategory(t *testing.T) {
	_, err := NewTaxonomy(map[string][]string{
		"brand": {"Brand1"},
		"size":  {},
	})
	if !errors.Is(err, domain.ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestTaxonomy_ReservedNamesExcluded(t *testing.T) {
	tax, err := NewTaxonomy(map[string][]string{
		"brand": {"Brand1"},
		"size":  {},
		"suv":   {"suv"},
	})
	if err != nil {
		t.Fatalf("NewTaxonomy: %v", err)
	}
	for _, name := range tax.Categories() {
		if name == ReservedBrand || name == ReservedSize {
			t.Errorf("reserved name %q leaked into Categories()", name)
		}
	}
}
