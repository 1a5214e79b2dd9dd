// internal/appetite/match.go
package appetite

import "strings"

var jurisdictionAliases = map[string]string{
	"uk":            "united kingdom",
	"u.k.":          "united kingdom",
	"gb":            "united kingdom",
	"great britain": "united kingdom",
	"us":            "united states",
	"u.s.":          "united states",
	"usa":           "united states",
	"u.s.a.":        "united states",
	"uae":           "united arab emirates",
	"eu":            "european union",
	"nz":            "new zealand",
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func canonicalJurisdiction(s string) string {
	n := normalize(s)
	if alias, ok := jurisdictionAliases[n]; ok {
		return alias
	}
	return n
}

// jurisdictionMatches compares two jurisdiction labels case-insensitively, treating
// equal labels and labels where one is a prefix of the other as a match.
// Common abbreviations are also tried expanded, so "UK" covers "United Kingdom"
// while "US" still covers "US-NY".
func jurisdictionMatches(client, underwriter string) bool {
	a, b := normalize(client), normalize(underwriter)
	if a == "" || b == "" {
		return false
	}
	if prefixEither(a, b) {
		return true
	}
	return prefixEither(canonicalJurisdiction(a), canonicalJurisdiction(b))
}

func prefixEither(a, b string) bool {
	return a == b || strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

// containsEither reports a case-insensitive substring match in either direction.
// Empty labels never match.
func containsEither(a, b string) bool {
	x, y := normalize(a), normalize(b)
	if x == "" || y == "" {
		return false
	}
	return strings.Contains(x, y) || strings.Contains(y, x)
}

// firstContaining returns the first candidate that containsEither matches value.
func firstContaining(value string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if containsEither(value, c) {
			return c, true
		}
	}
	return "", false
}
