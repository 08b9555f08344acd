// Package insight turns patent search data into the canonical result model.
// It holds the two producers of a SearchResult: the normalizer, which maps an
// externally controlled JSON payload onto the model, and the sample generator,
// which builds a deterministic illustrative result when live data is
// unavailable.
package insight

import (
	"fmt"
	"time"

	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// SampleRecordCount is the number of records in every generated result.
const SampleRecordCount = 45

// sampleDateLayout matches the ISO-8601 UTC form with millisecond precision.
const sampleDateLayout = "2006-01-02T15:04:05.000Z"

var sampleAssignees = []string{
	"Apple Inc.", "Google LLC", "Microsoft Corp.", "Tesla Inc.",
	"Amazon.com Inc.", "Meta Platforms", "NVIDIA Corp.", "Intel Corp.",
}

var sampleTechnologies = []string{
	"AI/ML", "Software", "Hardware", "Biotech",
	"Energy", "Automotive", "Fintech", "Healthcare",
}

func points(pairs ...interface{}) model.MetricSeries {
	out := make(model.MetricSeries, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.DataPoint{Label: pairs[i].(string), Value: float64(pairs[i+1].(int))})
	}
	return out
}

// sampleSeries are the illustrative category values used for every
// generated result. They do not depend on the query.
var sampleSeries = map[model.SeriesName]model.MetricSeries{
	model.SeriesActivityTimeline: points(
		"Jan 2024", 12, "Feb 2024", 19, "Mar 2024", 15, "Apr 2024", 22,
		"May 2024", 18, "Jun 2024", 25, "Jul 2024", 28),
	model.SeriesTechnologyDistribution: points(
		"AI/ML", 35, "Software", 28, "Hardware", 20, "Biotech", 12,
		"Energy", 8, "Automotive", 6, "Fintech", 4),
	model.SeriesCompetitiveAnalysis: points(
		"Apple Inc.", 145, "Google LLC", 138, "Microsoft Corp.", 132, "Tesla Inc.", 98,
		"Amazon.com Inc.", 85, "Meta Platforms", 72, "NVIDIA Corp.", 65),
	model.SeriesTrendAnalysis: points(
		"2020", 85, "2021", 92, "2022", 108, "2023", 125, "2024", 142),
	model.SeriesPortfolioSimilarity: points(
		"Core Technologies", 85, "Adjacent Areas", 65, "Emerging Tech", 45,
		"Defensive Patents", 30, "Licensing Assets", 25),
	model.SeriesMATargets: points(
		"High Synergy", 92, "Medium Synergy", 78, "Strategic Value", 65,
		"IP Acquisition", 55, "Market Entry", 42),
	model.SeriesInfringementRisk: points(
		"High Risk", 15, "Medium Risk", 35, "Low Risk", 50, "Cleared", 80),
	model.SeriesMarketOpportunity: points(
		"Untapped Markets", 85, "White Space", 70, "Licensing Potential", 60,
		"Partnership Ops", 45, "Acquisition Targets", 35),
	model.SeriesPatentValuation: points(
		"High Value (>$10M)", 8, "Medium Value ($1-10M)", 25,
		"Standard Value ($100K-1M)", 45, "Low Value (<$100K)", 22),
	model.SeriesTechnologyMaturity: points(
		"Emerging", 15, "Growth", 35, "Mature", 40, "Declining", 10),
	model.SeriesGeographicDistribution: points(
		"United States", 45, "China", 25, "Europe", 18, "Japan", 8, "South Korea", 4),
	model.SeriesCitationImpact: points(
		"Highly Cited (>50)", 12, "Well Cited (20-50)", 28,
		"Moderately Cited (5-20)", 45, "Low Citations (<5)", 15),
}

// Generate builds the sample result for q. It performs no I/O, never fails,
// and returns equal results for equal queries.
func Generate(q model.SearchQuery) *model.SearchResult {
	records := make([]model.PatentRecord, 0, SampleRecordCount)
	for i := 0; i < SampleRecordCount; i++ {
		records = append(records, sampleRecord(q.Value, i))
	}

	bundle := model.NewInsightBundle()
	bundle.TotalPatents = len(records)
	for _, name := range model.AllSeriesNames() {
		src := sampleSeries[name]
		cp := make(model.MetricSeries, len(src))
		copy(cp, src)
		bundle.SetSeries(name, cp)
	}

	return &model.SearchResult{
		Query:     q,
		Records:   records,
		Insights:  bundle,
		Narrative: sampleNarrative(q.Value, len(records), &bundle),
	}
}

func sampleRecord(value string, i int) model.PatentRecord {
	yearStep := i / 8
	month := time.Month(i%12 + 1)
	return model.PatentRecord{
		ID:              fmt.Sprintf("patent_%d", i+1),
		Title:           fmt.Sprintf("Advanced %s Technology System %d", value, i+1),
		Assignee:        sampleAssignees[i%len(sampleAssignees)],
		PublicationDate: time.Date(2024-yearStep, month, 1, 0, 0, 0, 0, time.UTC).Format(sampleDateLayout),
		ApplicationDate: time.Date(2023-yearStep, month, 1, 0, 0, 0, 0, time.UTC).Format(sampleDateLayout),
		PatentNumber:    fmt.Sprintf("US%d", 10000000+i),
		Abstract: fmt.Sprintf("This patent describes innovative methods and systems for %s technology, "+
			"providing enhanced performance and efficiency in modern applications.", value),
		ClaimsCount:    15 + i%10,
		CitationsCount: 5 + i%20,
		FamilySize:     1 + i%5,
		TechnologyTags: []string{sampleTechnologies[i%len(sampleTechnologies)]},
	}
}

//Personal.AI order the ending
