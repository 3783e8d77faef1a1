package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Monetary constants, in kobo.
const (
	FreeShippingThreshold int64 = 50000
	FlatShippingFee       int64 = 5000
)

// TaxRate is the flat platform tax applied to the subtotal.
var TaxRate = decimal.NewFromFloat(0.075)

// Line is one priced quantity, the only input the summary needs.
type Line struct {
	Price    int64
	Quantity int
}

// OrderSummary is the money breakdown shown at checkout. All amounts in kobo.
type OrderSummary struct {
	Subtotal  int64 `json:"subtotal"`
	Shipping  int64 `json:"shipping"`
	Tax       int64 `json:"tax"`
	Discount  int64 `json:"discount"`
	Total     int64 `json:"total"`
	ItemCount int   `json:"item_count"`
}

// ShippingFee returns the flat fee, waived at the free-shipping threshold.
func ShippingFee(subtotal int64) int64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// Tax returns the tax on a subtotal, rounded to the nearest kobo.
func Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(TaxRate).Round(0).IntPart()
}

// Summarize computes the order-level money summary. Discount is reserved and
// always zero for now. An empty set of lines yields the zero summary; callers
// render that as an empty cart, not as a zero-total order.
func Summarize(lines []Line) OrderSummary {
	if len(lines) == 0 {
		return OrderSummary{}
	}

	var subtotal int64
	for _, l := range lines {
		subtotal += l.Price * int64(l.Quantity)
	}

	shipping := ShippingFee(subtotal)
	tax := Tax(subtotal)
	var discount int64

	return OrderSummary{
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Discount:  discount,
		Total:     subtotal + shipping + tax - discount,
		ItemCount: len(lines),
	}
}

// Naira is the platform currency. Stored amounts are its minor unit, kobo.
var Naira = currency.MustParseISO("NGN")

// FormatKobo renders a kobo amount as a naira display string for emails and
// receipts, e.g. 255000 becomes "NGN 2550.00".
func FormatKobo(amount int64) string {
	naira := decimal.NewFromInt(amount).Div(decimal.NewFromInt(100))
	return fmt.Sprintf("%s %s", Naira, naira.StringFixed(2))
}
