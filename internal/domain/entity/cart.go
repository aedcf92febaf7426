package entity

import (
	"errors"

	"github.com/google/uuid"
)

// ErrOutOfStock is returned when a product with zero available quantity is
// added to a cart.
var ErrOutOfStock = errors.New("product is out of stock")

// CartLine is one product entry in an in-progress sale. Quantity is always
// within [1, available stock at clamp time]; a quantity that would drop to 0
// removes the line instead.
type CartLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice int64     `json:"-"` // cents
	Quantity  int       `json:"quantity"`
}

// LineTotal returns unit price times quantity, in cents.
func (l CartLine) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}

// StockWarning is an informational, non-blocking notice that a requested
// quantity was clamped to the available stock.
type StockWarning struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Requested int       `json:"requested"`
	Available int       `json:"available"`
}

// Cart is the mutable list of lines owned by a single checkout session. It is
// never persisted; it is destroyed on submission success or explicit reset.
//
// Cart is not safe for concurrent use; the owning session serializes access.
type Cart struct {
	lines []CartLine

	// rejected latches the last out-of-range quantity per product so that
	// repeated identical out-of-range input does not re-raise a warning
	// until the input returns in range and goes out again.
	rejected map[uuid.UUID]int

	// version increments on every mutation. The checkout gate snapshots it
	// so a cart edit landing mid-review invalidates the review.
	version uint64
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{rejected: make(map[uuid.UUID]int)}
}

func (c *Cart) find(productID uuid.UUID) *CartLine {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return &c.lines[i]
		}
	}
	return nil
}

// AddItem adds one unit of the product. If a line already exists its quantity
// is incremented by 1, clamped to the available stock; otherwise a new line
// with quantity 1 is appended. Rejects products with no stock.
func (c *Cart) AddItem(product *Product) error {
	if !product.InStock() {
		return ErrOutOfStock
	}

	if line := c.find(product.ID); line != nil {
		if line.Quantity < product.Quantity {
			line.Quantity++
		}
		// Price may have changed in the catalog since the line was created
		line.UnitPrice = product.UnitPrice
		c.version++
		return nil
	}

	c.lines = append(c.lines, CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.UnitPrice,
		Quantity:  1,
	})
	c.version++
	return nil
}

// UpdateQuantity sets the line quantity for the product. A quantity of 0 or
// less removes the line. A quantity above the available stock is clamped and
// a warning is returned, debounced per distinct out-of-range value.
func (c *Cart) UpdateQuantity(product *Product, quantity int) *StockWarning {
	if quantity <= 0 {
		c.RemoveItem(product.ID)
		return nil
	}

	line := c.find(product.ID)
	if line == nil {
		return nil
	}

	if quantity <= product.Quantity {
		line.Quantity = quantity
		delete(c.rejected, product.ID)
		c.version++
		return nil
	}

	// Stock drained to zero since the line was added: a line never carries
	// quantity 0, so remove it instead of clamping.
	if product.Quantity == 0 {
		c.RemoveItem(product.ID)
		return &StockWarning{
			ProductID: product.ID,
			Name:      product.Name,
			Requested: quantity,
			Available: 0,
		}
	}

	line.Quantity = product.Quantity
	c.version++
	if last, ok := c.rejected[product.ID]; ok && last == quantity {
		// Same out-of-range value again, e.g. the user is still typing
		return nil
	}
	c.rejected[product.ID] = quantity
	return &StockWarning{
		ProductID: product.ID,
		Name:      product.Name,
		Requested: quantity,
		Available: product.Quantity,
	}
}

// RemoveItem deletes the line unconditionally.
func (c *Cart) RemoveItem(productID uuid.UUID) {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			break
		}
	}
	delete(c.rejected, productID)
	c.version++
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.rejected = make(map[uuid.UUID]int)
	c.version++
}

// Version returns a counter that changes with every cart mutation.
func (c *Cart) Version() uint64 {
	return c.version
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// TotalItems returns the summed quantity across all lines.
func (c *Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// SubTotal returns the sum of line totals, in cents.
func (c *Cart) SubTotal() int64 {
	var sum int64
	for _, l := range c.lines {
		sum += l.LineTotal()
	}
	return sum
}

// SaleDraft is the derived, never-stored projection of a cart: lines plus
// computed subtotal, tax and total. All downstream views (confirmation,
// submission payload, receipt) consume these values rather than recomputing.
type SaleDraft struct {
	Lines    []CartLine `json:"lines"`
	SubTotal int64      `json:"-"`
	Tax      int64      `json:"-"`
	Total    int64      `json:"-"`
}

// Draft computes the sale draft under the given tax rate in basis points
// (1% = 100 bps). total = subtotal + tax, always.
func (c *Cart) Draft(taxRateBps int64) SaleDraft {
	sub := c.SubTotal()
	tax := sub * taxRateBps / 10000
	return SaleDraft{
		Lines:    c.Lines(),
		SubTotal: sub,
		Tax:      tax,
		Total:    sub + tax,
	}
}
