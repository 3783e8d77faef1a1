package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShippingFee(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{name: "one kobo below threshold pays the flat fee", subtotal: 49999, want: 5000},
		{name: "exactly at threshold ships free", subtotal: 50000, want: 0},
		{name: "above threshold ships free", subtotal: 120000, want: 0},
		{name: "small order pays the flat fee", subtotal: 1500, want: 5000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShippingFee(tt.subtotal))
		})
	}
}

func TestTax(t *testing.T) {
	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{name: "exact rate", subtotal: 10000, want: 750},
		{name: "rounds to nearest kobo", subtotal: 999, want: 75},
		{name: "tiny subtotal rounds down", subtotal: 1, want: 0},
		{name: "zero subtotal", subtotal: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tax(tt.subtotal))
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  OrderSummary
	}{
		{
			name:  "empty cart yields the zero summary, not a shipped zero-total order",
			lines: nil,
			want:  OrderSummary{},
		},
		{
			name:  "below free shipping",
			lines: []Line{{Price: 2500, Quantity: 2}},
			want: OrderSummary{
				Subtotal:  5000,
				Shipping:  5000,
				Tax:       375,
				Total:     10375,
				ItemCount: 1,
			},
		},
		{
			name:  "at free shipping threshold",
			lines: []Line{{Price: 10000, Quantity: 3}, {Price: 20000, Quantity: 1}},
			want: OrderSummary{
				Subtotal:  50000,
				Shipping:  0,
				Tax:       3750,
				Total:     53750,
				ItemCount: 2,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summarize(tt.lines))
		})
	}
}

func TestFormatKobo(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{amount: 255000, want: "NGN 2550.00"},
		{amount: 50, want: "NGN 0.50"},
		{amount: 0, want: "NGN 0.00"},
		{amount: 10375, want: "NGN 103.75"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatKobo(tt.amount))
	}
}
