package domain

import "time"

// CartRef identifies a cart the way the cif.cart cookie carries it.
type CartRef struct {
	ID    string `json:"cartId"`
	Quote string `json:"cartQuote,omitempty"`
}

type Cart struct {
	ID            string     `json:"id"`
	Quote         string     `json:"-"`
	Currency      string     `json:"currency"`
	Items         []CartItem `json:"items"`
	AppliedCoupon *string    `json:"appliedCoupon"`
	Prices        CartPrices `json:"prices"`
	TotalQuantity int        `json:"totalQuantity"`
	State         string     `json:"state"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type CartItem struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"productId"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unitPriceCents"`
	Currency       string    `json:"currency"`
	TotalCents     int64     `json:"totalCents"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CartPrices struct {
	SubtotalCents int64 `json:"subtotalCents"`
	DiscountCents int64 `json:"discountCents"`
	GrandCents    int64 `json:"grandTotalCents"`
}

// Coupon is a cart-level relative discount expressed in permyriad (1/100 of a percent).
type Coupon struct {
	Code      string    `json:"code"`
	Permyriad int       `json:"permyriad"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// ComputePrices fills TotalQuantity, line totals and Prices from the items and
// the discount of the applied coupon.
func (c *Cart) ComputePrices(permyriad int) {
	var subtotal int64
	qty := 0
	for i := range c.Items {
		item := &c.Items[i]
		item.TotalCents = item.UnitPriceCents * int64(item.Quantity)
		subtotal += item.TotalCents
		qty += item.Quantity
	}
	if permyriad < 0 {
		permyriad = 0
	}
	if permyriad > 10000 {
		permyriad = 10000
	}
	discount := subtotal * int64(permyriad) / 10000
	c.TotalQuantity = qty
	c.Prices = CartPrices{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		GrandCents:    subtotal - discount,
	}
}

// Item returns the line item with the given id.
func (c *Cart) Item(id string) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return CartItem{}, false
}
