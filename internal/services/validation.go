// internal/services/validation.go
package services

import (
	"fmt"
	"math"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"appetite-workers/internal/models"
)

var errNotFiniteNonNegative = validation.NewError("validation_amount", "must be a finite non-negative number")

// amount accepts float64 and *float64; a nil pointer means unset.
var amount = validation.By(func(value interface{}) error {
	var v float64
	switch x := value.(type) {
	case float64:
		v = x
	case *float64:
		if x == nil {
			return nil
		}
		v = *x
	default:
		return fmt.Errorf("unexpected amount type %T", value)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return errNotFiniteNonNegative
	}
	return nil
})

// Validate rejects negative or non-finite amounts. The engine itself does not
// guard numeric inputs.
func (r MatchRequest) Validate() error {
	p := r.ClientProfile
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.RequestedCoverageAmount, amount),
		validation.Field(&p.Revenue, amount),
	); err != nil {
		return fmt.Errorf("client_profile: %w", err)
	}

	for i := range r.UnderwriterAppetites {
		if err := validateAppetite(r.UnderwriterAppetites[i]); err != nil {
			return fmt.Errorf("underwriter_appetites[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAppetite(a models.UnderwriterAppetite) error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.UnderwriterID, validation.Required),
		validation.Field(&a.CoverageAmountMin, amount),
		validation.Field(&a.CoverageAmountMax, amount),
		validation.Field(&a.RevenueRangeMin, amount),
		validation.Field(&a.RevenueRangeMax, amount),
	)
}
