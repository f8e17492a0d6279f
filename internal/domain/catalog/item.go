package catalog

import (
	"encoding/json"
	"fmt"
)

// Item is a single catalog record (immutable value object).
// The four named fields are the only ones the core interprets; everything
// else from the source record is carried opaquely in extra and re-emitted
// verbatim on marshal.
type Item struct {
	brandLocalized string
	brandCommon    string
	size           string
	categories     []string
	extra          map[string]json.RawMessage
}

// Known JSON field names. Anything else is pass-through.
const (
	fieldBrandLocalized = "brand_localized_name"
	fieldBrandCommon    = "brand_common_name"
	fieldSize           = "size"
	fieldCategories     = "categories"
)

// New creates an Item.
func New(brandLocalized, brandCommon, size string, categories []string) Item {
	return Item{
		brandLocalized: brandLocalized,
		brandCommon:    brandCommon,
		size:           size,
		categories:     cloneStrings(categories),
	}
}

// BrandLocalized returns the localized brand name.
func (i *Item) BrandLocalized() string { return i.brandLocalized }

// BrandCommon returns the common (latin) brand name.
func (i *Item) BrandCommon() string { return i.brandCommon }

// Size returns the free-form size token, e.g. "205/55R16".
func (i *Item) Size() string { return i.size }

// Categories returns the category names the item belongs to.
func (i *Item) Categories() []string { return i.categories }

// HasCategory reports whether the item carries the given category name.
func (i *Item) HasCategory(name string) bool {
	for _, c := range i.categories {
		if c == name {
			return true
		}
	}
	return false
}

// Extra returns the pass-through field under the given key, if present.
func (i *Item) Extra(key string) (json.RawMessage, bool) {
	v, ok := i.extra[key]
	return v, ok
}

// UnmarshalJSON hydrates the named fields and keeps every unknown field
// in the pass-through map.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("item is not an object: %w", err)
	}

	var parsed Item
	if v, ok := raw[fieldBrandLocalized]; ok {
		if err := json.Unmarshal(v, &parsed.brandLocalized); err != nil {
			return fmt.Errorf("%s: %w", fieldBrandLocalized, err)
		}
		delete(raw, fieldBrandLocalized)
	}
	if v, ok := raw[fieldBrandCommon]; ok {
		if err := json.Unmarshal(v, &parsed.brandCommon); err != nil {
			return fmt.Errorf("%s: %w", fieldBrandCommon, err)
		}
		delete(raw, fieldBrandCommon)
	}
	if v, ok := raw[fieldSize]; ok {
		if err := json.Unmarshal(v, &parsed.size); err != nil {
			return fmt.Errorf("%s: %w", fieldSize, err)
		}
		delete(raw, fieldSize)
	}
	if v, ok := raw[fieldCategories]; ok {
		if err := json.Unmarshal(v, &parsed.categories); err != nil {
			return fmt.Errorf("%s: %w", fieldCategories, err)
		}
		delete(raw, fieldCategories)
	}
	if len(raw) > 0 {
		parsed.extra = raw
	}

	*i = parsed
	return nil
}

// MarshalJSON reassembles the original record: named fields plus the
// untouched pass-through fields.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(i.extra)+4)
	for k, v := range i.extra {
		out[k] = v
	}

	var err error
	if out[fieldBrandLocalized], err = json.Marshal(i.brandLocalized); err != nil {
		return nil, err
	}
	if out[fieldBrandCommon], err = json.Marshal(i.brandCommon); err != nil {
		return nil, err
	}
	if out[fieldSize], err = json.Marshal(i.size); err != nil {
		return nil, err
	}
	cats := i.categories
	if cats == nil {
		cats = []string{}
	}
	if out[fieldCategories], err = json.Marshal(cats); err != nil {
		return nil, err
	}

	return json.Marshal(out)
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
