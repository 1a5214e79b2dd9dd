// internal/workers/appetite/notify-appetite-matches/message.go
package notifyappetitematches

import (
	"fmt"
	"strings"

	"appetite-workers/internal/models"
)

func renderSubject(prefix string, input *Input) string {
	subject := fmt.Sprintf("%d underwriter matches for quote %s", len(input.TopMatches), input.QuoteID)
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}

func renderBody(input *Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Appetite matching finished for quote %s (run %s).\n\n", input.QuoteID, input.RunID)

	if len(input.TopMatches) == 0 {
		b.WriteString("No underwriter met the match threshold.\n")
	} else {
		b.WriteString("Top matches:\n")
		writeMatches(&b, input.TopMatches)
	}

	if len(input.NearestMisses) > 0 {
		b.WriteString("\nWorth a conversation:\n")
		writeMatches(&b, input.NearestMisses)
	}
	return b.String()
}

func writeMatches(b *strings.Builder, matches []models.MatchResult) {
	for i, m := range matches {
		fmt.Fprintf(b, "%d. %s - %d/100\n", i+1, displayName(m), m.ConfidenceScore)
		if m.Explanation != "" {
			fmt.Fprintf(b, "   %s\n", m.Explanation)
		}
	}
}

func displayName(m models.MatchResult) string {
	if m.UnderwriterName != "" {
		return m.UnderwriterName
	}
	return m.UnderwriterID
}

func summarize(matches []models.MatchResult) []MatchSummary {
	out := make([]MatchSummary, 0, len(matches))
	for _, m := range matches {
		out = append(out, MatchSummary{
			UnderwriterID:   m.UnderwriterID,
			UnderwriterName: m.UnderwriterName,
			ConfidenceScore: m.ConfidenceScore,
		})
	}
	return out
}
