package pricing

import (
	"testing"
)

func item(price int64, qty float64, avail Availability) Item {
	return Item{
		RequestedText:  "requested",
		Name:           "item",
		UnitType:       UnitPiece,
		UnitPriceCents: price,
		Quantity:       qty,
		Availability:   avail,
	}
}

func TestCommissionTierBoundaries(t *testing.T) {
	cases := []struct {
		subtotal int64
		want     int
	}{
		{0, 700},
		{49_999, 700}, // 499.99
		{50_000, 600}, // 500.00
		{99_999, 600},
		{100_000, 500}, // 1000.00
		{250_000, 500},
	}
	for _, c := range cases {
		if got := CommissionRateBps(c.subtotal); got != c.want {
			t.Fatalf("subtotal %d: expected %d bps, got %d", c.subtotal, c.want, got)
		}
	}
}

func TestZeroSubtotal(t *testing.T) {
	fin := Compute(nil, 1_500)
	if fin.SubtotalCents != 0 {
		t.Fatalf("expected zero subtotal, got %d", fin.SubtotalCents)
	}
	if fin.CommissionCents != 0 {
		t.Fatalf("expected zero commission, got %d", fin.CommissionCents)
	}
	if fin.MerchantPayoutCents != 1_500 {
		t.Fatalf("expected payout to equal delivery fee exactly, got %d", fin.MerchantPayoutCents)
	}
	if fin.CustomerTotalCents != 1_500 {
		t.Fatalf("expected customer total 1500, got %d", fin.CustomerTotalCents)
	}
}

func TestUnavailableItemContributesNothing(t *testing.T) {
	it := item(10_000, 5, AvailabilityUnavailable)
	if got := ItemContribution(it); got != 0 {
		t.Fatalf("expected 0 contribution, got %d", got)
	}
	fin := Compute([]Item{it}, 0)
	if fin.SubtotalCents != 0 {
		t.Fatalf("expected zero subtotal, got %d", fin.SubtotalCents)
	}
}

func TestSubstitutionFallback(t *testing.T) {
	subPrice := int64(2_500)
	subQty := 2.0

	full := item(2_000, 3, AvailabilitySubstituted)
	full.SubstitutePriceCents = &subPrice
	full.SubstituteQuantity = &subQty
	if got := ItemContribution(full); got != 5_000 {
		t.Fatalf("expected substitute qty x substitute price = 5000, got %d", got)
	}

	// With only one substitute field present, the original qty x price
	// applies.
	priceOnly := item(2_000, 3, AvailabilitySubstituted)
	priceOnly.SubstitutePriceCents = &subPrice
	if got := ItemContribution(priceOnly); got != 6_000 {
		t.Fatalf("expected fallback to original 6000, got %d", got)
	}
	qtyOnly := item(2_000, 3, AvailabilitySubstituted)
	qtyOnly.SubstituteQuantity = &subQty
	if got := ItemContribution(qtyOnly); got != 6_000 {
		t.Fatalf("expected fallback to original 6000, got %d", got)
	}
}

func TestComputeScenario(t *testing.T) {
	// rice: 20.00 x 3, delivery fee 15.00
	items := []Item{item(2_000, 3, AvailabilityAvailable)}
	fin := Compute(items, 1_500)

	if fin.SubtotalCents != 6_000 {
		t.Fatalf("expected subtotal 6000, got %d", fin.SubtotalCents)
	}
	if fin.CommissionRateBps != 700 {
		t.Fatalf("expected 700 bps, got %d", fin.CommissionRateBps)
	}
	if fin.CommissionCents != 420 {
		t.Fatalf("expected commission 420, got %d", fin.CommissionCents)
	}
	if fin.CustomerTotalCents != 7_500 {
		t.Fatalf("expected customer total 7500, got %d", fin.CustomerTotalCents)
	}
	if fin.MerchantPayoutCents != 7_080 {
		t.Fatalf("expected merchant payout 7080, got %d", fin.MerchantPayoutCents)
	}
}

func TestComputeDeterministicAndOrderIndependent(t *testing.T) {
	a := item(1_234, 1.5, AvailabilityAvailable)
	b := item(999, 7, AvailabilityPartial)
	c := item(50, 0.333, AvailabilityAvailable)

	first := Compute([]Item{a, b, c}, 700)
	second := Compute([]Item{a, b, c}, 700)
	if first != second {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
	shuffled := Compute([]Item{c, a, b}, 700)
	if first != shuffled {
		t.Fatalf("expected order independence, got %+v vs %+v", first, shuffled)
	}
}

func TestFinancialIdentities(t *testing.T) {
	items := []Item{
		item(3_210, 2, AvailabilityAvailable),
		item(87_500, 1, AvailabilityAvailable),
	}
	fin := Compute(items, 900)
	if fin.CustomerTotalCents != fin.SubtotalCents+fin.DeliveryFeeCents {
		t.Fatal("customer total identity violated")
	}
	if fin.MerchantPayoutCents != fin.SubtotalCents-fin.CommissionCents+fin.DeliveryFeeCents {
		t.Fatal("merchant payout identity violated")
	}
	if fin.MerchantPayoutCents < 0 || fin.CustomerTotalCents < 0 {
		t.Fatal("totals must be non-negative")
	}
}
