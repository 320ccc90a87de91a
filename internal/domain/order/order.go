package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/quotehub/quotehub/internal/domain/pricing"
)

// LineItem is one purchasable line of a binding order, derived from the
// winning quote's priced items. Unavailable items are dropped at order
// creation; substituted items carry the substitute's name and price.
type LineItem struct {
	Name           string  `json:"name"`
	UnitType       string  `json:"unitType"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	Quantity       float64 `json:"quantity"`
	Substituted    bool    `json:"substituted"`
	Note           *string `json:"note,omitempty"`
}

// Order is the binding record created exactly once per broadcast when
// the customer approves a quote.
type Order struct {
	ID              int64              `json:"id"`
	OrderID         uuid.UUID          `json:"orderId"`
	BroadcastID     uuid.UUID          `json:"broadcastId"`
	RequestID       uuid.UUID          `json:"requestId"`
	CustomerID      uuid.UUID          `json:"customerId"`
	MerchantID      uuid.UUID          `json:"merchantId"`
	OrderType       string             `json:"orderType"`
	DeliveryAddress *string            `json:"deliveryAddress,omitempty"`
	Items           []LineItem         `json:"items"`
	Financials      pricing.Financials `json:"financials"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// LineItemsFrom converts a winning quote's priced items into order
// lines.
func LineItemsFrom(items []pricing.Item) []LineItem {
	lines := make([]LineItem, 0, len(items))
	for _, it := range items {
		if it.Availability == pricing.AvailabilityUnavailable {
			continue
		}
		line := LineItem{
			Name:           it.Name,
			UnitType:       it.UnitType,
			UnitPriceCents: it.UnitPriceCents,
			Quantity:       it.Quantity,
			Note:           it.Note,
		}
		if it.Availability == pricing.AvailabilitySubstituted {
			line.Substituted = true
			if it.SubstituteName != nil {
				line.Name = *it.SubstituteName
			}
			if it.SubstitutePriceCents != nil && it.SubstituteQuantity != nil {
				line.UnitPriceCents = *it.SubstitutePriceCents
				line.Quantity = *it.SubstituteQuantity
			}
		}
		lines = append(lines, line)
	}
	return lines
}
