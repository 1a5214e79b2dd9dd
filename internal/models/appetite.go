// internal/models/appetite.go
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AppetiteStatusProcessed marks appetite records whose source documents finished extraction.
const AppetiteStatusProcessed = "processed"

// StringList accepts either a JSON string or an array of strings.
// A bare string is wrapped as a single-element list; null decodes to nil.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = nil
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = StringList{}
			return nil
		}
		*s = StringList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or array of strings, got %s", string(data))
	}
	*s = StringList(many)
	return nil
}

// ClientProfile is the normalized risk profile of a prospective insured.
type ClientProfile struct {
	Industry                string     `json:"industry"`
	RequestedCoverageAmount float64    `json:"requested_coverage_amount"`
	Revenue                 *float64   `json:"revenue"`
	Jurisdictions           StringList `json:"jurisdictions"`
	SecurityControls        StringList `json:"security_controls"`
	SpecialExposures        StringList `json:"special_exposures"`
	InsuranceProduct        string     `json:"insurance_product"`
}

// UnderwriterAppetite is one carrier's stated appetite for a product.
// Nil pointers and empty lists mean the carrier did not constrain that factor.
type UnderwriterAppetite struct {
	UnderwriterID        string     `json:"underwriter_id"`
	UnderwriterName      string     `json:"underwriter_name"`
	LastUpdated          time.Time  `json:"last_updated"`
	CoverageAmountMin    *float64   `json:"coverage_amount_min"`
	CoverageAmountMax    *float64   `json:"coverage_amount_max"`
	Jurisdictions        StringList `json:"jurisdictions"`
	IndustryClasses      StringList `json:"industry_classes"`
	TargetSectors        StringList `json:"target_sectors"`
	RevenueRangeMin      *float64   `json:"revenue_range_min"`
	RevenueRangeMax      *float64   `json:"revenue_range_max"`
	SecurityRequirements StringList `json:"security_requirements"`
	Exclusions           StringList `json:"exclusions"`
	InsuranceProduct     string     `json:"insurance_product,omitempty"`
	Status               string     `json:"status,omitempty"`
}

// HasCoverageRange reports whether either coverage bound is set.
func (u UnderwriterAppetite) HasCoverageRange() bool {
	return u.CoverageAmountMin != nil || u.CoverageAmountMax != nil
}

// HasRevenueRange reports whether either revenue bound is set.
func (u UnderwriterAppetite) HasRevenueRange() bool {
	return u.RevenueRangeMin != nil || u.RevenueRangeMax != nil
}

// Float64 returns a pointer to v. Handy for building optional fields.
func Float64(v float64) *float64 {
	return &v
}
