package pricing

import "math"

// Availability describes how a merchant can fulfill one requested item.
type Availability string

const (
	AvailabilityAvailable   Availability = "AVAILABLE"
	AvailabilityUnavailable Availability = "UNAVAILABLE"
	AvailabilityPartial     Availability = "PARTIAL"
	AvailabilitySubstituted Availability = "SUBSTITUTED"
)

// UnitType values accepted on priced items.
const (
	UnitPiece  = "PIECE"
	UnitKg     = "KG"
	UnitGram   = "GRAM"
	UnitLiter  = "LITER"
	UnitMl     = "ML"
	UnitPack   = "PACK"
	UnitBox    = "BOX"
	UnitDozen  = "DOZEN"
	UnitBundle = "BUNDLE"
)

// Item is one line of a merchant's quote. Monetary amounts are minor
// units (cents); quantities may be fractional for weighed goods.
type Item struct {
	RequestedText        string       `json:"requestedText" validate:"required"`
	Name                 string       `json:"name" validate:"required"`
	UnitType             string       `json:"unitType" validate:"required,oneof=PIECE KG GRAM LITER ML PACK BOX DOZEN BUNDLE"`
	UnitPriceCents       int64        `json:"unitPriceCents" validate:"gte=0"`
	Quantity             float64      `json:"quantity" validate:"gte=0"`
	Availability         Availability `json:"availability" validate:"required,oneof=AVAILABLE UNAVAILABLE PARTIAL SUBSTITUTED"`
	SubstituteName       *string      `json:"substituteName,omitempty"`
	SubstitutePriceCents *int64       `json:"substitutePriceCents,omitempty"`
	SubstituteQuantity   *float64     `json:"substituteQuantity,omitempty"`
	Note                 *string      `json:"note,omitempty"`
}

// Financials is the derived money breakdown of one quote. It is always
// recomputable from the item list plus the delivery fee.
type Financials struct {
	SubtotalCents       int64 `json:"subtotalCents"`
	CommissionRateBps   int   `json:"commissionRateBps"`
	CommissionCents     int64 `json:"commissionCents"`
	DeliveryFeeCents    int64 `json:"deliveryFeeCents"`
	CustomerTotalCents  int64 `json:"customerTotalCents"`
	MerchantPayoutCents int64 `json:"merchantPayoutCents"`
}

// Commission tiers, selected once per computation from the whole subtotal.
const (
	tierOneUpperCents = 50_000  // below: 7%
	tierTwoUpperCents = 100_000 // below: 6%, at or above: 5%

	tierOneRateBps   = 700
	tierTwoRateBps   = 600
	tierThreeRateBps = 500
)

// ItemContribution returns the item's contribution to the subtotal in
// cents. Unavailable items contribute nothing regardless of price.
// Substituted items use the substitute quantity and price only when both
// are present; a half-filled substitution falls back to the original
// values.
func ItemContribution(it Item) int64 {
	switch it.Availability {
	case AvailabilityUnavailable:
		return 0
	case AvailabilitySubstituted:
		if it.SubstituteQuantity != nil && it.SubstitutePriceCents != nil {
			return roundCents(*it.SubstituteQuantity * float64(*it.SubstitutePriceCents))
		}
	}
	return roundCents(it.Quantity * float64(it.UnitPriceCents))
}

// CommissionRateBps returns the platform commission rate in basis points
// for a given subtotal.
func CommissionRateBps(subtotalCents int64) int {
	switch {
	case subtotalCents < tierOneUpperCents:
		return tierOneRateBps
	case subtotalCents < tierTwoUpperCents:
		return tierTwoRateBps
	default:
		return tierThreeRateBps
	}
}

// Compute derives the full financial breakdown for a quote. Per-item
// contributions are rounded to whole cents before summation, so the
// result does not depend on item order and repeated calls with the same
// inputs are identical.
func Compute(items []Item, deliveryFeeCents int64) Financials {
	var subtotal int64
	for _, it := range items {
		subtotal += ItemContribution(it)
	}
	rateBps := CommissionRateBps(subtotal)
	commission := roundCents(float64(subtotal) * float64(rateBps) / 10_000)
	return Financials{
		SubtotalCents:       subtotal,
		CommissionRateBps:   rateBps,
		CommissionCents:     commission,
		DeliveryFeeCents:    deliveryFeeCents,
		CustomerTotalCents:  subtotal + deliveryFeeCents,
		MerchantPayoutCents: subtotal - commission + deliveryFeeCents,
	}
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
