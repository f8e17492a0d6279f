package catalog

// Snapshot is an immutable view of the loaded catalog: the item list in
// source order plus the keyword taxonomy. Safe to share across concurrent
// queries; no component mutates it after load.
type Snapshot struct {
	items    []Item
	taxonomy Taxonomy
}

// NewSnapshot creates a Snapshot.
func NewSnapshot(items []Item, taxonomy Taxonomy) Snapshot {
	return Snapshot{items: items, taxonomy: taxonomy}
}

// Items returns the catalog items in their original order.
func (s *Snapshot) Items() []Item { return s.items }

// Taxonomy returns the keyword taxonomy.
func (s *Snapshot) Taxonomy() Taxonomy { return s.taxonomy }

// Len returns the catalog size.
func (s *Snapshot) Len() int { return len(s.items) }
