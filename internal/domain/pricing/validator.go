package pricing

import (
	"errors"
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// ItemError carries item-level validation detail.
type ItemError struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates all item-level failures of one submission.
type ValidationError struct {
	Items []ItemError `json:"items"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Items))
	for _, it := range e.Items {
		parts = append(parts, fmt.Sprintf("item %d: %s %s", it.Index, it.Field, it.Message))
	}
	return "invalid pricing submission: " + strings.Join(parts, "; ")
}

// Validator checks merchant pricing submissions before any state is
// touched.
type Validator struct {
	validate *validatorv10.Validate
}

// NewValidator returns a configured validator with the substitution
// consistency check registered at struct level.
func NewValidator() *Validator {
	v := validatorv10.New()
	v.RegisterStructValidation(itemStructValidation, Item{})
	return &Validator{validate: v}
}

// ValidateSubmission validates the full item list and the delivery fee.
// A nil return means the submission may be priced.
func (v *Validator) ValidateSubmission(items []Item, deliveryFeeCents int64) error {
	verr := &ValidationError{}
	if len(items) == 0 {
		verr.Items = append(verr.Items, ItemError{Index: -1, Field: "items", Message: "at least one item is required"})
	}
	if deliveryFeeCents < 0 {
		verr.Items = append(verr.Items, ItemError{Index: -1, Field: "deliveryFeeCents", Message: "must not be negative"})
	}
	for i, it := range items {
		if err := v.validate.Struct(it); err != nil {
			var fieldErrs validatorv10.ValidationErrors
			if errors.As(err, &fieldErrs) {
				for _, fe := range fieldErrs {
					verr.Items = append(verr.Items, ItemError{
						Index:   i,
						Field:   fe.Field(),
						Message: tagMessage(fe),
					})
				}
				continue
			}
			verr.Items = append(verr.Items, ItemError{Index: i, Field: "item", Message: err.Error()})
		}
	}
	if len(verr.Items) > 0 {
		return verr
	}
	return nil
}

func itemStructValidation(sl validatorv10.StructLevel) {
	it := sl.Current().Interface().(Item)

	if it.Availability != AvailabilitySubstituted {
		if it.SubstituteName != nil || it.SubstitutePriceCents != nil || it.SubstituteQuantity != nil {
			sl.ReportError(it.SubstituteName, "substituteName", "SubstituteName", "substitution_fields_on_non_substituted", "")
		}
		return
	}
	if it.SubstitutePriceCents != nil && *it.SubstitutePriceCents < 0 {
		sl.ReportError(it.SubstitutePriceCents, "substitutePriceCents", "SubstitutePriceCents", "substitute_price_negative", "")
	}
	if it.SubstituteQuantity != nil && *it.SubstituteQuantity < 0 {
		sl.ReportError(it.SubstituteQuantity, "substituteQuantity", "SubstituteQuantity", "substitute_quantity_negative", "")
	}
	if it.SubstituteName == nil || strings.TrimSpace(*it.SubstituteName) == "" {
		sl.ReportError(it.SubstituteName, "substituteName", "SubstituteName", "substitute_name_required", "")
	}
}

func tagMessage(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must not be negative"
	case "oneof":
		return "has an unknown value"
	case "substitution_fields_on_non_substituted":
		return "substitute fields are only valid on substituted items"
	case "substitute_price_negative", "substitute_quantity_negative":
		return "must not be negative"
	case "substitute_name_required":
		return "is required for substituted items"
	default:
		return "is invalid"
	}
}
