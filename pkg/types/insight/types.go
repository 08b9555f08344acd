// Package insight defines the canonical result model returned by a patent
// insight search: the classified query, the patent records, the twelve named
// metric series and the narrative. These types are shared by the search
// service, the remote client and the outer surfaces.
package insight

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// Query
// ─────────────────────────────────────────────────────────────────────────────

// QueryKind is the closed set of interpretations of a raw search string.
type QueryKind string

const (
	QueryKindCompany QueryKind = "company"
	QueryKindISIN    QueryKind = "isin"
	QueryKindURL     QueryKind = "url"
	QueryKindTheme   QueryKind = "theme"
)

// AllQueryKinds lists every kind in classification priority order.
var AllQueryKinds = []QueryKind{QueryKindISIN, QueryKindURL, QueryKindCompany, QueryKindTheme}

// IsValid reports whether k is one of the four kinds.
func (k QueryKind) IsValid() bool {
	switch k {
	case QueryKindCompany, QueryKindISIN, QueryKindURL, QueryKindTheme:
		return true
	}
	return false
}

func (k QueryKind) String() string { return string(k) }

// SearchQuery is a classified search request. Kind is derived from Value
// alone; Theme is an optional caller annotation where "" means absent.
type SearchQuery struct {
	Kind  QueryKind `json:"type"`
	Value string    `json:"value"`
	Theme string    `json:"theme,omitempty"`
}

// HasTheme reports whether a theme annotation is present.
func (q SearchQuery) HasTheme() bool { return q.Theme != "" }

// WithTheme returns a copy of q carrying theme, trimmed.
func (q SearchQuery) WithTheme(theme string) SearchQuery {
	q.Theme = strings.TrimSpace(theme)
	return q
}

// ─────────────────────────────────────────────────────────────────────────────
// Records
// ─────────────────────────────────────────────────────────────────────────────

// PatentRecord is one patent in a result set.
type PatentRecord struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Assignee        string   `json:"assignee"`
	PublicationDate string   `json:"publicationDate"`
	ApplicationDate string   `json:"applicationDate"`
	PatentNumber    string   `json:"patentNumber"`
	Abstract        string   `json:"abstract"`
	ClaimsCount     int      `json:"claimsCount"`
	CitationsCount  int      `json:"citationsCount"`
	FamilySize      int      `json:"familySize"`
	TechnologyTags  []string `json:"technologyArea"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Metric series
// ─────────────────────────────────────────────────────────────────────────────

// DataPoint is one labelled value of a metric series.
type DataPoint struct {
	Label string  `json:"name"`
	Value float64 `json:"value"`
}

// MetricSeries is an ordered sequence of data points with unique labels.
type MetricSeries []DataPoint

// Sum adds every value in the series.
func (s MetricSeries) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// Labels returns the labels in order.
func (s MetricSeries) Labels() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		out = append(out, p.Label)
	}
	return out
}

// TopLabels returns up to n leading labels.
func (s MetricSeries) TopLabels(n int) []string {
	if n > len(s) {
		n = len(s)
	}
	if n < 0 {
		n = 0
	}
	return s[:n].Labels()
}

// Value returns the value recorded under label.
func (s MetricSeries) Value(label string) (float64, bool) {
	for _, p := range s {
		if p.Label == label {
			return p.Value, true
		}
	}
	return 0, false
}

// ValueAt returns the value at index i, or 0 when out of range.
func (s MetricSeries) ValueAt(i int) float64 {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i].Value
}

// Validate checks label uniqueness and non-negative values.
func (s MetricSeries) Validate() error {
	seen := make(map[string]struct{}, len(s))
	for i, p := range s {
		if p.Value < 0 {
			return fmt.Errorf("point %d (%q) has negative value %v", i, p.Label, p.Value)
		}
		if _, dup := seen[p.Label]; dup {
			return fmt.Errorf("duplicate label %q", p.Label)
		}
		seen[p.Label] = struct{}{}
	}
	return nil
}

// SeriesName identifies one of the twelve insight categories.
type SeriesName string

const (
	SeriesActivityTimeline       SeriesName = "activity_timeline"
	SeriesTechnologyDistribution SeriesName = "technology_distribution"
	SeriesCompetitiveAnalysis    SeriesName = "competitive_analysis"
	SeriesTrendAnalysis          SeriesName = "trend_analysis"
	SeriesPortfolioSimilarity    SeriesName = "portfolio_similarity"
	SeriesMATargets              SeriesName = "ma_targets"
	SeriesInfringementRisk       SeriesName = "infringement_risk"
	SeriesMarketOpportunity      SeriesName = "market_opportunity"
	SeriesPatentValuation        SeriesName = "patent_valuation"
	SeriesTechnologyMaturity     SeriesName = "technology_maturity"
	SeriesGeographicDistribution SeriesName = "geographic_distribution"
	SeriesCitationImpact         SeriesName = "citation_impact"
)

// seriesSlot binds a SeriesName to its field in InsightBundle and to the
// camelCase key used by the result JSON.
type seriesSlot struct {
	name     SeriesName
	jsonKey  string
	title    string
	accessor func(*InsightBundle) *MetricSeries
}

// seriesTable is the single dispatch table over all twelve categories, in
// canonical order. Adding a category means adding a field and a row here.
var seriesTable = []seriesSlot{
	{SeriesActivityTimeline, "recentActivity", "Recent Activity", func(b *InsightBundle) *MetricSeries { return &b.RecentActivity }},
	{SeriesTechnologyDistribution, "technologyDistribution", "Technology Distribution", func(b *InsightBundle) *MetricSeries { return &b.TechnologyDistribution }},
	{SeriesCompetitiveAnalysis, "competitiveAnalysis", "Competitive Landscape", func(b *InsightBundle) *MetricSeries { return &b.CompetitiveAnalysis }},
	{SeriesTrendAnalysis, "trendAnalysis", "Filing Trend", func(b *InsightBundle) *MetricSeries { return &b.TrendAnalysis }},
	{SeriesPortfolioSimilarity, "portfolioSimilarity", "Portfolio Similarity", func(b *InsightBundle) *MetricSeries { return &b.PortfolioSimilarity }},
	{SeriesMATargets, "maTargets", "M&A Targets", func(b *InsightBundle) *MetricSeries { return &b.MATargets }},
	{SeriesInfringementRisk, "infringementRisk", "Infringement Risk", func(b *InsightBundle) *MetricSeries { return &b.InfringementRisk }},
	{SeriesMarketOpportunity, "marketOpportunity", "Market Opportunity", func(b *InsightBundle) *MetricSeries { return &b.MarketOpportunity }},
	{SeriesPatentValuation, "patentValuation", "Patent Valuation", func(b *InsightBundle) *MetricSeries { return &b.PatentValuation }},
	{SeriesTechnologyMaturity, "technologyMaturity", "Technology Maturity", func(b *InsightBundle) *MetricSeries { return &b.TechnologyMaturity }},
	{SeriesGeographicDistribution, "geographicDistribution", "Geographic Distribution", func(b *InsightBundle) *MetricSeries { return &b.GeographicDistribution }},
	{SeriesCitationImpact, "citationImpact", "Citation Impact", func(b *InsightBundle) *MetricSeries { return &b.CitationImpact }},
}

// AllSeriesNames returns the twelve category names in canonical order.
func AllSeriesNames() []SeriesName {
	out := make([]SeriesName, 0, len(seriesTable))
	for _, s := range seriesTable {
		out = append(out, s.name)
	}
	return out
}

func lookupSlot(name SeriesName) (seriesSlot, bool) {
	for _, s := range seriesTable {
		if s.name == name {
			return s, true
		}
	}
	return seriesSlot{}, false
}

// JSONKey returns the camelCase key of the category in result JSON.
func (n SeriesName) JSONKey() string {
	if s, ok := lookupSlot(n); ok {
		return s.jsonKey
	}
	return ""
}

// Title returns a display title for the category.
func (n SeriesName) Title() string {
	if s, ok := lookupSlot(n); ok {
		return s.title
	}
	return string(n)
}

// InsightBundle holds the aggregate count and every named series. Each
// category is a field, so all twelve are always present.
type InsightBundle struct {
	TotalPatents           int          `json:"totalPatents"`
	RecentActivity         MetricSeries `json:"recentActivity"`
	TechnologyDistribution MetricSeries `json:"technologyDistribution"`
	CompetitiveAnalysis    MetricSeries `json:"competitiveAnalysis"`
	TrendAnalysis          MetricSeries `json:"trendAnalysis"`
	PortfolioSimilarity    MetricSeries `json:"portfolioSimilarity"`
	MATargets              MetricSeries `json:"maTargets"`
	InfringementRisk       MetricSeries `json:"infringementRisk"`
	MarketOpportunity      MetricSeries `json:"marketOpportunity"`
	PatentValuation        MetricSeries `json:"patentValuation"`
	TechnologyMaturity     MetricSeries `json:"technologyMaturity"`
	GeographicDistribution MetricSeries `json:"geographicDistribution"`
	CitationImpact         MetricSeries `json:"citationImpact"`
}

// NewInsightBundle returns a bundle with every series empty but non-nil, so
// it serializes as [] rather than null.
func NewInsightBundle() InsightBundle {
	var b InsightBundle
	for _, s := range seriesTable {
		*s.accessor(&b) = MetricSeries{}
	}
	return b
}

// Series returns the series stored under name.
func (b *InsightBundle) Series(name SeriesName) MetricSeries {
	if s, ok := lookupSlot(name); ok {
		return *s.accessor(b)
	}
	return nil
}

// SetSeries replaces the series stored under name. Unknown names are ignored
// and reported as false.
func (b *InsightBundle) SetSeries(name SeriesName, series MetricSeries) bool {
	s, ok := lookupSlot(name)
	if !ok {
		return false
	}
	if series == nil {
		series = MetricSeries{}
	}
	*s.accessor(b) = series
	return true
}

// Each visits every category in canonical order.
func (b *InsightBundle) Each(fn func(name SeriesName, series MetricSeries)) {
	for _, s := range seriesTable {
		fn(s.name, *s.accessor(b))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Result
// ─────────────────────────────────────────────────────────────────────────────

// SearchResult is the sole output of a search. It is always fully populated,
// whether it came from live data or from the sample generator.
type SearchResult struct {
	Query     SearchQuery    `json:"query"`
	Records   []PatentRecord `json:"patents"`
	Insights  InsightBundle  `json:"insights"`
	Narrative string         `json:"summary"`
}

// Validate checks the structural invariants of a result: unique record ids,
// totalPatents matching the record count, non-negative counters, familySize
// of at least one and well-formed series.
func (r *SearchResult) Validate() error {
	if r == nil {
		return fmt.Errorf("insight: nil result")
	}
	if !r.Query.Kind.IsValid() {
		return fmt.Errorf("insight: unknown query kind %q", r.Query.Kind)
	}
	if r.Insights.TotalPatents != len(r.Records) {
		return fmt.Errorf("insight: totalPatents %d does not match %d records", r.Insights.TotalPatents, len(r.Records))
	}
	ids := make(map[string]struct{}, len(r.Records))
	for i, rec := range r.Records {
		if rec.ID == "" {
			return fmt.Errorf("insight: record %d has empty id", i)
		}
		if _, dup := ids[rec.ID]; dup {
			return fmt.Errorf("insight: duplicate record id %q", rec.ID)
		}
		ids[rec.ID] = struct{}{}
		if rec.ClaimsCount < 0 || rec.CitationsCount < 0 {
			return fmt.Errorf("insight: record %q has negative counters", rec.ID)
		}
		if rec.FamilySize < 1 {
			return fmt.Errorf("insight: record %q has familySize %d", rec.ID, rec.FamilySize)
		}
		if rec.TechnologyTags == nil {
			return fmt.Errorf("insight: record %q has nil technology tags", rec.ID)
		}
	}
	var err error
	r.Insights.Each(func(name SeriesName, s MetricSeries) {
		if err != nil {
			return
		}
		if s == nil {
			err = fmt.Errorf("insight: series %s is nil", name)
			return
		}
		if verr := s.Validate(); verr != nil {
			err = fmt.Errorf("insight: series %s: %w", name, verr)
		}
	})
	return err
}

//Personal.AI order the ending
