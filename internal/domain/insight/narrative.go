package insight

import (
	"fmt"
	"strconv"
	"strings"

	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// degradedNoticeFormat prefixes the narrative of a sample result served
// because the live source failed.
const degradedNoticeFormat = "API connection issue detected. Displaying sample data for \"%s\". " +
	"Please verify your bearer token and API endpoint configuration. "

// DegradedNotice returns the notice for value.
func DegradedNotice(value string) string {
	return fmt.Sprintf(degradedNoticeFormat, value)
}

// MarkDegraded prepends the degraded-mode notice to r's narrative.
func MarkDegraded(r *model.SearchResult) *model.SearchResult {
	if r == nil {
		return nil
	}
	r.Narrative = DegradedNotice(r.Query.Value) + r.Narrative
	return r
}

// DefaultNarrative is used when a live payload carries no summary.
func DefaultNarrative(value string, records int) string {
	return fmt.Sprintf("Analysis complete for \"%s\" with %d patents found.", value, records)
}

// Headline is the one-line announcement shown to the caller before the
// narrative.
func Headline(input string, r *model.SearchResult) string {
	return fmt.Sprintf("Found %d patents for \"%s\". Analysis complete with interactive visualizations below.",
		len(r.Records), input)
}

// sampleNarrative quotes figures from bundle, so it stays consistent with
// whatever the sample series contain.
func sampleNarrative(value string, records int, b *model.InsightBundle) string {
	cleared, _ := b.InfringementRisk.Value("Cleared")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Comprehensive patent analysis for \"%s\" reveals %d relevant patents with strong innovation momentum. ", value, records)
	fmt.Fprintf(&sb, "Key findings: %s recent filings indicate active R&D investment. ", formatFigure(b.RecentActivity.Sum()))
	fmt.Fprintf(&sb, "Technology focus areas include %s. ", strings.Join(b.TechnologyDistribution.TopLabels(3), ", "))
	fmt.Fprintf(&sb, "Competitive landscape shows %d major players with significant IP portfolios. ", len(b.CompetitiveAnalysis))
	fmt.Fprintf(&sb, "M&A opportunities identified with %s%% synergy potential in target companies. ", formatFigure(b.MATargets.ValueAt(0)))
	fmt.Fprintf(&sb, "Patent infringement risk assessment shows %s%% of portfolio in cleared status. ", formatFigure(cleared))
	fmt.Fprintf(&sb, "Market opportunity analysis reveals %s%% potential in untapped markets, presenting strong investment thesis for asset managers.",
		formatFigure(b.MarketOpportunity.ValueAt(0)))
	return sb.String()
}

// formatFigure prints whole numbers without a fractional part.
func formatFigure(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

//Personal.AI order the ending
