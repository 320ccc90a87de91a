package guard

import (
	"testing"

	"github.com/quotehub/quotehub/internal/domain/pricing"
)

func TestEvaluateMatches(t *testing.T) {
	items := []pricing.Item{
		{Name: "rice", UnitType: pricing.UnitPack, UnitPriceCents: 2_000, Quantity: 3, Availability: pricing.AvailabilityAvailable},
		{Name: "oil", UnitType: pricing.UnitLiter, UnitPriceCents: 9_000, Quantity: 1, Availability: pricing.AvailabilityUnavailable},
	}
	fin := pricing.Compute(items, 1_500)
	params := BuildParams(items, fin)

	cases := []struct {
		expr string
		want bool
	}{
		{"subtotal > 5000", true},
		{"subtotal > 1000000", false},
		{"item_count == 2", true},
		{"max_unit_price >= 9000", true},
		{"unavailable_count > 0", true},
		{"substituted_count > 0", false},
		{"delivery_fee > 1000 && subtotal < 100000", true},
	}
	for _, c := range cases {
		r := &Rule{Name: "t", Expression: c.expr, Action: ActionFlag, Enabled: true}
		got, err := Evaluate(r, params)
		if err != nil {
			t.Fatalf("%s: %v", c.expr, err)
		}
		if got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.expr, c.want, got)
		}
	}
}

func TestEvaluateNonBoolean(t *testing.T) {
	r := &Rule{Expression: "subtotal + 1"}
	if _, err := Evaluate(r, map[string]interface{}{"subtotal": 1.0}); err != ErrNotBoolean {
		t.Fatalf("expected ErrNotBoolean, got %v", err)
	}
}

func TestCheckExpression(t *testing.T) {
	if err := CheckExpression("subtotal > 100"); err != nil {
		t.Fatalf("expected valid expression: %v", err)
	}
	if err := CheckExpression(""); err == nil {
		t.Fatal("expected error for empty expression")
	}
	if err := CheckExpression("subtotal >"); err == nil {
		t.Fatal("expected error for malformed expression")
	}
}
