// Package catalog loads the shop's product list from a JSON file and answers
// price lookups. The catalog is an external collaborator: this package never
// invents prices, it only sums what the file declares.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
)

type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Catalog struct {
	products map[string]Product
	ordered  []Product
}

// Load reads the catalog file at path. A missing file yields an empty catalog
// (every cart then totals zero), matching the behavior of a shop deployed
// without a price list.
func Load(path string) (*Catalog, error) {
	c := &Catalog{products: make(map[string]Product)}

	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("catalog file not found, cart totals will be zero")
			return c, nil
		}
		return nil, fmt.Errorf("catalog: failed to read %s: %w", path, err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse %s: %w", path, err)
	}

	for _, p := range products {
		c.products[p.ID] = p
	}
	c.ordered = products

	return c, nil
}

// CartTotal sums quantity times catalog price over the cart. Items absent from
// the catalog contribute zero.
func (c *Catalog) CartTotal(cart map[string]int) float64 {
	var total float64
	for itemID, qty := range cart {
		if qty <= 0 {
			continue
		}
		if p, ok := c.products[itemID]; ok {
			total += float64(qty) * p.Price
		}
	}
	return total
}

// Products returns the catalog in file order.
func (c *Catalog) Products() []Product {
	return c.ordered
}
