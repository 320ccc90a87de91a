package guard

import (
	"errors"
	"strings"
	"time"

	"github.com/Knetic/govaluate"
	"github.com/google/uuid"

	"github.com/quotehub/quotehub/internal/domain/pricing"
)

// Action determines what a matched rule does to a pricing submission.
type Action string

const (
	// ActionBlock rejects the submission as a validation failure.
	ActionBlock Action = "BLOCK"
	// ActionFlag records an audit entry and lets the submission proceed.
	ActionFlag Action = "FLAG"
)

var ErrNotBoolean = errors.New("guard expression did not evaluate to a boolean")

// Rule is a configurable check evaluated against every pricing
// submission. Expressions see the parameters produced by BuildParams.
type Rule struct {
	ID         int64     `json:"id"`
	RuleID     uuid.UUID `json:"ruleId"`
	Name       string    `json:"name"`
	Expression string    `json:"expression"`
	Action     Action    `json:"action"`
	Enabled    bool      `json:"enabled"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ValidateAction reports whether a is a known rule action.
func ValidateAction(a Action) bool {
	return a == ActionBlock || a == ActionFlag
}

// CheckExpression parses the expression without evaluating it, so bad
// rules are rejected at creation time.
func CheckExpression(expression string) error {
	if strings.TrimSpace(expression) == "" {
		return errors.New("expression is required")
	}
	_, err := govaluate.NewEvaluableExpression(expression)
	return err
}

// Evaluate runs the rule's expression against submission parameters.
func Evaluate(r *Rule, params map[string]interface{}) (bool, error) {
	expr, err := govaluate.NewEvaluableExpression(r.Expression)
	if err != nil {
		return false, err
	}
	result, err := expr.Evaluate(params)
	if err != nil {
		return false, err
	}
	b, ok := result.(bool)
	if !ok {
		return false, ErrNotBoolean
	}
	return b, nil
}

// BuildParams exposes a submission to rule expressions. Monetary values
// are float cents so expressions can compare against plain numbers.
func BuildParams(items []pricing.Item, fin pricing.Financials) map[string]interface{} {
	var maxUnitPrice int64
	unavailable := 0
	substituted := 0
	for _, it := range items {
		if it.UnitPriceCents > maxUnitPrice {
			maxUnitPrice = it.UnitPriceCents
		}
		switch it.Availability {
		case pricing.AvailabilityUnavailable:
			unavailable++
		case pricing.AvailabilitySubstituted:
			substituted++
		}
	}
	return map[string]interface{}{
		"subtotal":          float64(fin.SubtotalCents),
		"delivery_fee":      float64(fin.DeliveryFeeCents),
		"customer_total":    float64(fin.CustomerTotalCents),
		"item_count":        float64(len(items)),
		"max_unit_price":    float64(maxUnitPrice),
		"unavailable_count": float64(unavailable),
		"substituted_count": float64(substituted),
	}
}
