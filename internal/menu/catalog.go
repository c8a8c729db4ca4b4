package menu

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/3003mgf/harvoffe/internal/models"
	"github.com/3003mgf/harvoffe/internal/store"
)

const Table = "menu.csv"

var Fields = []string{"coffee", "price"}

// Catalog is the read-only coffee menu. The menu table is required:
// a missing or malformed table is a startup error, not an empty menu.
type Catalog struct {
	entries []models.MenuEntry
	byName  map[string]models.MenuEntry
}

func Load(s store.RecordStore) (*Catalog, error) {
	rows, err := s.ReadTable(Table)
	if err != nil {
		return nil, fmt.Errorf("load menu: %w", err)
	}

	c := &Catalog{byName: make(map[string]models.MenuEntry, len(rows))}
	for _, row := range rows {
		price, err := decimal.NewFromString(row["price"])
		if err != nil {
			return nil, fmt.Errorf("load menu: bad price for %q: %w", row["coffee"], err)
		}
		entry := models.MenuEntry{Coffee: row["coffee"], Price: price}
		c.entries = append(c.entries, entry)
		c.byName[strings.ToLower(entry.Coffee)] = entry
	}
	return c, nil
}

// Lookup is case-insensitive so "macchiato" and "Macchiato" both hit.
func (c *Catalog) Lookup(coffee string) (models.MenuEntry, bool) {
	entry, ok := c.byName[strings.ToLower(strings.TrimSpace(coffee))]
	return entry, ok
}

func (c *Catalog) Entries() []models.MenuEntry {
	return c.entries
}
