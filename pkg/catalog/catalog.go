package catalog

import (
	"sort"
	"strings"

	"github.com/mcortez-ml/nutria/pkg/model"
)

// Catalog is the immutable in-memory food table. It is built once at startup
// and safely shared across requests without locking.
type Catalog struct {
	records    []model.FoodRecord
	categories []string
}

func New(records []model.FoodRecord) *Catalog {
	c := &Catalog{records: records}

	seen := make(map[string]bool)
	for _, r := range records {
		cat := strings.ToLower(strings.TrimSpace(r.Category))
		if cat == "" || seen[cat] {
			continue
		}
		seen[cat] = true
		c.categories = append(c.categories, cat)
	}
	sort.Strings(c.categories)

	return c
}

func (c *Catalog) Len() int {
	return len(c.records)
}

// Records returns the backing slice. Callers must treat it as read-only.
func (c *Catalog) Records() []model.FoodRecord {
	return c.records
}

// FindByName returns a copy of the first record whose name contains the given
// string (case-insensitive), or nil when there is no match.
func (c *Catalog) FindByName(name string) *model.FoodRecord {
	needle := strings.ToLower(strings.TrimSpace(name))
	for i := range c.records {
		if strings.Contains(strings.ToLower(c.records[i].Name), needle) {
			r := c.records[i]
			return &r
		}
	}
	return nil
}

// Categories returns the sorted distinct category names in lowercase.
func (c *Catalog) Categories() []string {
	return c.categories
}
