// Package cart holds the pure cart reconciliation rules. Every function returns a new
// cart and leaves its input untouched, callers persist the result.
package cart

import (
	"math"
	"strconv"
	"strings"

	"storefront-web/internal/model"

	"github.com/shopspring/decimal"
)

const (
	minQuantity = 1
	maxQuantity = math.MaxInt32
)

// ClampQuantity keeps a quantity within [1, math.MaxInt32].
func ClampQuantity(qty int) int {
	switch {
	case qty < minQuantity:
		return minQuantity
	case qty > maxQuantity:
		return maxQuantity
	}
	return qty
}

// ParseQuantity normalizes raw user input. Non-numeric or NaN input yields 1, fractional input is
// truncated and the result is clamped like ClampQuantity.
func ParseQuantity(raw string) int {
	raw = strings.TrimSpace(raw)
	if qty, err := strconv.Atoi(raw); err == nil {
		return ClampQuantity(qty)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return minQuantity
	}
	switch {
	case f >= maxQuantity:
		return maxQuantity
	case f < minQuantity:
		return minQuantity
	}
	return ClampQuantity(int(f))
}

// addQuantity saturates at maxQuantity instead of wrapping.
func addQuantity(existing, qty int) int {
	existing = ClampQuantity(existing)
	if existing > maxQuantity-qty {
		return maxQuantity
	}
	return existing + qty
}

// AddToCart merges the product into the cart: an existing line gets its quantity raised by qty,
// otherwise a new line is appended.
func AddToCart(c model.Cart, product model.Product, qty int) model.Cart {
	qty = ClampQuantity(qty)

	out := make(model.Cart, 0, len(c)+1)
	merged := false
	for _, item := range c {
		if item.ProductID == product.ProductID {
			item.Quantity = addQuantity(item.Quantity, qty)
			merged = true
		}
		out = append(out, item)
	}

	if !merged {
		out = append(out, model.LineItem{
			Product:  product,
			Quantity: qty,
		})
	}
	return out
}

// SetQuantity replaces the quantity of the matching line, clamped like ClampQuantity.
func SetQuantity(c model.Cart, productID int64, qty int) model.Cart {
	qty = ClampQuantity(qty)

	out := make(model.Cart, len(c))
	for i, item := range c {
		if item.ProductID == productID {
			item.Quantity = qty
		}
		out[i] = item
	}
	return out
}

// RemoveItem drops the matching line. The cart comes back unchanged when nothing matches.
func RemoveItem(c model.Cart, productID int64) model.Cart {
	if _, ok := c.Find(productID); !ok {
		return c
	}

	out := make(model.Cart, 0, len(c)-1)
	for _, item := range c {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}

// ComputeTotal sums price * quantity. A missing price counts as 0 and a missing quantity as 1,
// so malformed stored carts still produce a usable total.
func ComputeTotal(c model.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, item := range c {
		qty := decimal.NewFromInt(int64(ClampQuantity(item.Quantity)))
		total = total.Add(item.Price.Mul(qty))
	}
	return total
}

// FormatAmount renders an amount the way payment providers expect it, e.g. "99.98".
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}

// Count is the number of units across all lines.
func Count(c model.Cart) int {
	n := 0
	for _, item := range c {
		n += ClampQuantity(item.Quantity)
	}
	return n
}
