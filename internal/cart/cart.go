package cart

import (
	"github.com/shopspring/decimal"
	"github.com/skorin/webshop/internal/models"
)

// Entry is one product line held in session state. UnitPrice is snapshotted
// when the product is first added and is not re-synced to catalog changes.
type Entry struct {
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Cart maps product ID to its entry. It is a plain value keyed by a session
// ID; persistence lives in a SessionStore, not here.
type Cart map[uint]Entry

func New() Cart {
	return make(Cart)
}

// Add inserts the product with a price snapshot or increments its quantity.
func (c Cart) Add(p *models.Product, quantity int) {
	if e, ok := c[p.ID]; ok {
		e.Quantity += quantity
		c[p.ID] = e
		return
	}
	c[p.ID] = Entry{Quantity: quantity, UnitPrice: p.Price}
}

// Update replaces the quantity of an existing entry. Updating to zero or a
// negative quantity removes the entry, matching Delete.
func (c Cart) Update(productID uint, quantity int) {
	if _, ok := c[productID]; !ok {
		return
	}
	if quantity <= 0 {
		delete(c, productID)
		return
	}
	e := c[productID]
	e.Quantity = quantity
	c[productID] = e
}

// Delete removes up to quantity units; the entry disappears entirely once its
// quantity would reach zero.
func (c Cart) Delete(productID uint, quantity int) {
	e, ok := c[productID]
	if !ok {
		return
	}
	if e.Quantity <= quantity {
		delete(c, productID)
		return
	}
	e.Quantity -= quantity
	c[productID] = e
}

// Total sums snapshotted price times quantity over all entries.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range c {
		total = total.Add(e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

// Len is the sum of quantities, not the number of entries.
func (c Cart) Len() int {
	n := 0
	for _, e := range c {
		n += e.Quantity
	}
	return n
}

func (c Cart) ProductIDs() []uint {
	ids := make([]uint, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	return ids
}

// Item is a cart entry joined with the current catalog product. The price
// stays the add-time snapshot even when the catalog price has moved.
type Item struct {
	Product   models.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
}

// Items joins entries with live catalog rows. Entries whose product is gone
// from the catalog are dropped from the result; Len still counts them.
func (c Cart) Items(products []models.Product) []Item {
	items := make([]Item, 0, len(c))
	for _, p := range products {
		e, ok := c[p.ID]
		if !ok {
			continue
		}
		items = append(items, Item{
			Product:   p,
			Quantity:  e.Quantity,
			UnitPrice: e.UnitPrice,
			Total:     e.UnitPrice.Mul(decimal.NewFromInt(int64(e.Quantity))),
		})
	}
	return items
}
