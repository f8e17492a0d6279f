// Package query derives structured search intent from free query text.
//
// Matching is deliberately naive substring/token matching against the
// catalog's keyword taxonomy. It is not a classifier and must stay that way:
// the downstream filter depends on these exact semantics.
package query

import (
	"regexp"
	"strings"

	"github.com/treadline/tiredex/internal/domain/catalog"
)

// sizeRegex matches a rim-diameter token: the letter R, optional whitespace,
// then a two-digit diameter in 14-19. Diameters outside that range are not
// recognized; the catalog does not carry them.
var sizeRegex = regexp.MustCompile(`r\s*(1[4-9])`)

// Intent is the structured (size, brand, categories) tuple derived from one
// raw query. Ephemeral: built fresh per query, never persisted.
type Intent struct {
	size       string
	brand      string
	categories []string
}

// ParseIntent runs all three extraction operations against the taxonomy.
func ParseIntent(raw string, taxonomy catalog.Taxonomy) Intent {
	return Intent{
		size:       ExtractSize(raw),
		brand:      ExtractBrand(raw, taxonomy.Brands()),
		categories: ExtractCategories(raw, taxonomy),
	}
}

// Size returns the normalized size token ("R16") and whether one was found.
func (in *Intent) Size() (string, bool) { return in.size, in.size != "" }

// Brand returns the matched brand trigger in its original casing and whether
// one was found.
func (in *Intent) Brand() (string, bool) { return in.brand, in.brand != "" }

// Categories returns the matched category names. May be empty.
func (in *Intent) Categories() []string { return in.categories }

// IsEmpty reports whether no intent field was extracted at all.
func (in *Intent) IsEmpty() bool {
	return in.size == "" && in.brand == "" && len(in.categories) == 0
}

// ExtractSize scans the query for a rim-diameter pattern and returns the
// normalized "R"+digits form of the first match, or "" if none.
// "r 16", "R16" and "205/55r16" all yield "R16".
func ExtractSize(raw string) string {
	m := sizeRegex.FindStringSubmatch(strings.ToLower(raw))
	if m == nil {
		return ""
	}
	return "R" + m[1]
}

// ExtractBrand returns the first brand trigger whose lower-cased form is a
// substring of the lower-cased query, or "" if none matches. Ties break on
// the trigger list's declared order, not on position in the query. The
// returned string keeps the trigger's original casing: the filter compares
// it raw against item brand fields.
func ExtractBrand(raw string, brands []string) string {
	q := strings.ToLower(raw)
	for _, b := range brands {
		if strings.Contains(q, strings.ToLower(b)) {
			return b
		}
	}
	return ""
}

// ExtractCategories returns every general taxonomy category with at least
// one trigger word contained in the lower-cased query. Reserved entries
// ("brand", "size") never participate.
func ExtractCategories(raw string, taxonomy catalog.Taxonomy) []string {
	q := strings.ToLower(raw)

	var matched []string
	for _, name := range taxonomy.Categories() {
		for _, w := range taxonomy.Triggers(name) {
			if strings.Contains(q, strings.ToLower(w)) {
				matched = append(matched, name)
				break
			}
		}
	}
	return matched
}
