package pricing

import (
	"time"

	"github.com/spacedigitalia/jelajah-kode-sub000/internal/entity"
)

// DateLayout is the calendar-date format accepted for Discount.Until.
const DateLayout = "2006-01-02"

// Quote is the render-time pricing of a product.
type Quote struct {
	OriginalPrice   float64          `json:"originalPrice"`
	DiscountedPrice float64          `json:"discountedPrice"`
	ActiveDiscount  *entity.Discount `json:"activeDiscount,omitempty"`
	DiscountExpired bool             `json:"discountExpired"`
}

// IsExpired reports whether the discount has passed its end date as of
// today. The comparison is date-only: a discount ending today is still
// active for the whole day. A missing or unparseable Until never expires.
func IsExpired(d *entity.Discount, today time.Time) bool {
	if d == nil || d.Until == "" {
		return false
	}
	until, err := time.ParseInLocation(DateLayout, d.Until, today.Location())
	if err != nil {
		return false
	}
	return midnight(today).After(until)
}

// Active returns the discount if present and not expired, nil otherwise.
func Active(d *entity.Discount, today time.Time) *entity.Discount {
	if d == nil || IsExpired(d, today) {
		return nil
	}
	return d
}

// EffectivePrice applies an active discount to the base price. Percentage
// values are not clamped here; they are validated to [0,100] at write
// time. Fixed discounts floor at zero.
func EffectivePrice(basePrice float64, d *entity.Discount, today time.Time) float64 {
	active := Active(d, today)
	if active == nil {
		return basePrice
	}
	switch active.Type {
	case entity.DiscountPercentage:
		return basePrice * (1 - active.Value/100)
	case entity.DiscountFixed:
		price := basePrice - active.Value
		if price < 0 {
			return 0
		}
		return price
	default:
		return basePrice
	}
}

// NewQuote evaluates a product's price and discount state as of today.
func NewQuote(basePrice float64, d *entity.Discount, today time.Time) Quote {
	return Quote{
		OriginalPrice:   basePrice,
		DiscountedPrice: EffectivePrice(basePrice, d, today),
		ActiveDiscount:  Active(d, today),
		DiscountExpired: IsExpired(d, today),
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
