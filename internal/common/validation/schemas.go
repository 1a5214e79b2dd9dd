// internal/common/validation/schemas.go
package validation

func stringList() map[string]interface{} {
	return map[string]interface{}{
		"anyOf": []interface{}{
			map[string]interface{}{"type": "string"},
			map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
			map[string]interface{}{"type": "null"},
		},
	}
}

func optionalAmount() map[string]interface{} {
	return map[string]interface{}{"type": []interface{}{"number", "null"}, "minimum": 0}
}

func nonEmptyString() map[string]interface{} {
	return map[string]interface{}{"type": "string", "minLength": 1}
}

// ClientProfileSchema describes a client risk profile. Amounts must be non-negative.
func ClientProfileSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"industry", "requested_coverage_amount"},
		"properties": map[string]interface{}{
			"industry":                  map[string]interface{}{"type": "string"},
			"requested_coverage_amount": map[string]interface{}{"type": "number", "minimum": 0},
			"revenue":                   optionalAmount(),
			"jurisdictions":             stringList(),
			"security_controls":         stringList(),
			"special_exposures":         stringList(),
			"insurance_product":         map[string]interface{}{"type": "string"},
		},
	}
}

// UnderwriterAppetiteSchema describes one underwriter appetite record.
func UnderwriterAppetiteSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"underwriter_id"},
		"properties": map[string]interface{}{
			"underwriter_id":        nonEmptyString(),
			"underwriter_name":      map[string]interface{}{"type": "string"},
			"last_updated":          map[string]interface{}{"type": []interface{}{"string", "null"}},
			"coverage_amount_min":   optionalAmount(),
			"coverage_amount_max":   optionalAmount(),
			"jurisdictions":         stringList(),
			"industry_classes":      stringList(),
			"target_sectors":        stringList(),
			"revenue_range_min":     optionalAmount(),
			"revenue_range_max":     optionalAmount(),
			"security_requirements": stringList(),
			"exclusions":            stringList(),
			"insurance_product":     map[string]interface{}{"type": "string"},
			"status":                map[string]interface{}{"type": "string"},
		},
	}
}

func matchResultList() map[string]interface{} {
	return map[string]interface{}{
		"type": "array",
		"items": map[string]interface{}{
			"type":     "object",
			"required": []interface{}{"underwriter_id", "confidence_score"},
			"properties": map[string]interface{}{
				"underwriter_id":   nonEmptyString(),
				"confidence_score": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
			},
		},
	}
}

// MatchRequestSchema is the HTTP request body for a match run.
func MatchRequestSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"client_profile"},
		"properties": map[string]interface{}{
			"quote_id":              map[string]interface{}{"type": "string"},
			"client_profile":        ClientProfileSchema(),
			"underwriter_appetites": map[string]interface{}{"type": []interface{}{"array", "null"}, "items": UnderwriterAppetiteSchema()},
		},
	}
}

// ScoreJobSchema is the variable contract of the score-appetite-matches task.
func ScoreJobSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"quoteId", "clientProfile"},
		"properties": map[string]interface{}{
			"quoteId":              nonEmptyString(),
			"clientProfile":        ClientProfileSchema(),
			"underwriterAppetites": map[string]interface{}{"type": []interface{}{"array", "null"}, "items": UnderwriterAppetiteSchema()},
		},
	}
}

// PersistJobSchema is the variable contract of the persist-appetite-matches task.
func PersistJobSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"runId", "quoteId", "topMatches"},
		"properties": map[string]interface{}{
			"runId":      nonEmptyString(),
			"quoteId":    nonEmptyString(),
			"topMatches": matchResultList(),
		},
	}
}

// NotifyJobSchema is the variable contract of the notify-appetite-matches task.
func NotifyJobSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"runId", "quoteId", "topMatches"},
		"properties": map[string]interface{}{
			"runId":         nonEmptyString(),
			"quoteId":       nonEmptyString(),
			"brokerEmail":   map[string]interface{}{"type": "string", "format": "email"},
			"topMatches":    matchResultList(),
			"nearestMisses": matchResultList(),
		},
	}
}

var (
	MatchRequestValidator = MustCompile("match-request", MatchRequestSchema())
	ScoreJobValidator     = MustCompile("score-appetite-matches", ScoreJobSchema())
	PersistJobValidator   = MustCompile("persist-appetite-matches", PersistJobSchema())
	NotifyJobValidator    = MustCompile("notify-appetite-matches", NotifyJobSchema())
)
