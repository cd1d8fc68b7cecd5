package order

import "github.com/shopspring/decimal"

// Pricing policy. These are not stored per order.
var (
	TaxRate               = decimal.NewFromFloat(0.10)
	FreeShippingThreshold = decimal.NewFromInt(100)
	FlatShippingPrice     = decimal.NewFromInt(10)
)

// Pricing holds the computed totals of an order
type Pricing struct {
	ItemsPrice    decimal.Decimal
	ShippingPrice decimal.Decimal
	TaxPrice      decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CalculatePricing derives all totals from the line items.
// Shipping is free once the items price exceeds FreeShippingThreshold.
func CalculatePricing(items []OrderItem) Pricing {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.Subtotal())
	}
	itemsPrice = itemsPrice.Round(2)

	shipping := FlatShippingPrice
	if itemsPrice.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}
	tax := itemsPrice.Mul(TaxRate).Round(2)

	return Pricing{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shipping,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shipping).Add(tax),
	}
}
