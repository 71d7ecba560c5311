// Package cart implements the in-memory cart as a pure reducer: every
// operation returns a cart that never contains a line with quantity <= 0.
package cart

import (
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Item is a single cart line. ID is synthetic (catalog id + customizations +
// add timestamp) so two lines for the same catalog item with different
// customizations can coexist. Two items belong to the same line iff their catalog id and their
// customizations list (order-sensitive) match.
type Item struct {
	ID             string          `json:"id"`
	CatalogID      string          `json:"catalog_id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Category       string          `json:"category"`
	Customizations []string        `json:"customizations,omitempty"`
	Image          string          `json:"image,omitempty"`
}

// SameLine reports whether other merges into the same cart line as i.
func (i Item) SameLine(other Item) bool {
	if i.CatalogID != other.CatalogID {
		return false
	}
	if len(i.Customizations) != len(other.Customizations) {
		return false
	}
	for k := range i.Customizations {
		if i.Customizations[k] != other.Customizations[k] {
			return false
		}
	}
	return true
}

// LineKey returns the order-sensitive identity of a cart line.
func (i Item) LineKey() string {
	return i.CatalogID + "|" + strings.Join(i.Customizations, "|")
}

// NewItemID builds the synthetic line id from the catalog id, the
// customizations, and a timestamp. The customizations feed the id so two
// lines for the same catalog item added at the same instant stay distinct.
func NewItemID(catalogID string, customizations []string, at time.Time) string {
	if len(customizations) == 0 {
		return fmt.Sprintf("%s-%d", catalogID, at.UnixMilli())
	}
	h := fnv.New32a()
	for _, c := range customizations {
		_, _ = h.Write([]byte(c))
		_, _ = h.Write([]byte{'|'})
	}
	return fmt.Sprintf("%s-%d-%x", catalogID, at.UnixMilli(), h.Sum32())
}

// Cart is an immutable snapshot of cart lines. The zero value is an empty cart.
type Cart struct {
	items []Item
}

// New returns a cart populated by folding the given items through Add, so
// duplicate lines merge and non-positive quantities are dropped.
func New(items ...Item) Cart {
	var c Cart
	for _, item := range items {
		c = c.Add(item)
	}
	return c
}

// Items returns a copy of the cart lines.
func (c Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct lines.
func (c Cart) Len() int { return len(c.items) }

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool { return len(c.items) == 0 }

// Add merges the item into an existing line with the same catalog id and
// customizations, or appends a new line. Items with quantity <= 0 are ignored.
func (c Cart) Add(item Item) Cart {
	if item.Quantity <= 0 {
		return c
	}
	out := make([]Item, len(c.items))
	copy(out, c.items)
	for i, existing := range out {
		if existing.SameLine(item) {
			out[i].Quantity += item.Quantity
			return Cart{items: out}
		}
	}
	return Cart{items: append(out, item)}
}

// Remove drops the line with the given synthetic id.
func (c Cart) Remove(id string) Cart {
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return Cart{items: out}
}

// SetQuantity replaces the quantity of the line with the given id. A quantity
// of zero or less removes the line.
func (c Cart) SetQuantity(id string, quantity int) Cart {
	out := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if item.ID == id {
			if quantity <= 0 {
				continue
			}
			item.Quantity = quantity
		}
		out = append(out, item)
	}
	return Cart{items: out}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart { return Cart{} }

// Subtotal returns the sum of price * quantity across all lines.
func (c Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range c.items {
		sum = sum.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}
