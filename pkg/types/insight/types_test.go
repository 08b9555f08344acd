package insight

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validResult() *SearchResult {
	b := NewInsightBundle()
	b.TotalPatents = 2
	b.SetSeries(SeriesTechnologyDistribution, MetricSeries{{"AI/ML", 3}, {"Energy", 1}})
	return &SearchResult{
		Query: SearchQuery{Kind: QueryKindCompany, Value: "Tesla Inc."},
		Records: []PatentRecord{
			{ID: "a", FamilySize: 1, TechnologyTags: []string{}},
			{ID: "b", FamilySize: 2, TechnologyTags: []string{"Energy"}},
		},
		Insights:  b,
		Narrative: "ok",
	}
}

func TestQueryKind_IsValid(t *testing.T) {
	for _, k := range AllQueryKinds {
		assert.True(t, k.IsValid(), k)
	}
	assert.False(t, QueryKind("ticker").IsValid())
}

func TestSearchQuery_WithTheme(t *testing.T) {
	q := SearchQuery{Kind: QueryKindCompany, Value: "Apple Inc."}
	assert.False(t, q.HasTheme())

	themed := q.WithTheme("  wearables ")
	assert.True(t, themed.HasTheme())
	assert.Equal(t, "wearables", themed.Theme)
	assert.Empty(t, q.Theme, "receiver must not change")

	assert.False(t, q.WithTheme("   ").HasTheme())
}

func TestMetricSeries_Helpers(t *testing.T) {
	s := MetricSeries{{"Jan 2024", 12}, {"Feb 2024", 19}, {"Mar 2024", 15}}

	assert.Equal(t, 46.0, s.Sum())
	assert.Equal(t, []string{"Jan 2024", "Feb 2024"}, s.TopLabels(2))
	assert.Equal(t, []string{"Jan 2024", "Feb 2024", "Mar 2024"}, s.TopLabels(10))
	assert.Empty(t, s.TopLabels(-1))

	v, ok := s.Value("Feb 2024")
	assert.True(t, ok)
	assert.Equal(t, 19.0, v)
	_, ok = s.Value("Dec 2024")
	assert.False(t, ok)

	assert.Equal(t, 15.0, s.ValueAt(2))
	assert.Zero(t, s.ValueAt(3))
	assert.Zero(t, MetricSeries{}.Sum())
}

func TestMetricSeries_Validate(t *testing.T) {
	assert.NoError(t, MetricSeries{{"a", 0}, {"b", 1}}.Validate())
	assert.ErrorContains(t, MetricSeries{{"a", 1}, {"a", 2}}.Validate(), "duplicate label")
	assert.ErrorContains(t, MetricSeries{{"a", -1}}.Validate(), "negative value")
}

func TestSeriesTable_CoversTwelveCategories(t *testing.T) {
	names := AllSeriesNames()
	require.Len(t, names, 12)
	assert.Equal(t, SeriesActivityTimeline, names[0])
	assert.Equal(t, SeriesCitationImpact, names[11])

	seen := map[string]bool{}
	for _, n := range names {
		key := n.JSONKey()
		assert.NotEmpty(t, key, n)
		assert.False(t, seen[key], "json key %s reused", key)
		seen[key] = true
		assert.NotEqual(t, string(n), n.Title())
	}
	assert.Empty(t, SeriesName("nope").JSONKey())
}

func TestInsightBundle_SeriesAccessors(t *testing.T) {
	b := NewInsightBundle()
	for _, n := range AllSeriesNames() {
		assert.NotNil(t, b.Series(n), n)
		assert.Empty(t, b.Series(n), n)
	}

	ok := b.SetSeries(SeriesMATargets, MetricSeries{{"High Synergy", 92}})
	require.True(t, ok)
	assert.Equal(t, 92.0, b.MATargets.ValueAt(0))
	assert.Equal(t, b.MATargets, b.Series(SeriesMATargets))

	assert.False(t, b.SetSeries("unknown", MetricSeries{{"x", 1}}))
	assert.Nil(t, b.Series("unknown"))

	b.SetSeries(SeriesMATargets, nil)
	assert.NotNil(t, b.MATargets)

	visited := 0
	b.Each(func(SeriesName, MetricSeries) { visited++ })
	assert.Equal(t, 12, visited)
}

func TestInsightBundle_JSONUsesCamelCaseKeysAndEmptyArrays(t *testing.T) {
	raw, err := json.Marshal(NewInsightBundle())
	require.NoError(t, err)

	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, n := range AllSeriesNames() {
		assert.JSONEq(t, "[]", string(m[n.JSONKey()]), n)
	}
}

func TestSearchResult_Validate(t *testing.T) {
	require.NoError(t, validResult().Validate())

	cases := []struct {
		name   string
		mutate func(*SearchResult)
		want   string
	}{
		{"nil-safe kind", func(r *SearchResult) { r.Query.Kind = "ticker" }, "unknown query kind"},
		{"count mismatch", func(r *SearchResult) { r.Insights.TotalPatents = 5 }, "does not match"},
		{"duplicate id", func(r *SearchResult) { r.Records[1].ID = "a" }, "duplicate record id"},
		{"empty id", func(r *SearchResult) { r.Records[0].ID = "" }, "empty id"},
		{"negative claims", func(r *SearchResult) { r.Records[0].ClaimsCount = -1 }, "negative counters"},
		{"family size", func(r *SearchResult) { r.Records[0].FamilySize = 0 }, "familySize"},
		{"nil tags", func(r *SearchResult) { r.Records[0].TechnologyTags = nil }, "nil technology tags"},
		{"nil series", func(r *SearchResult) { r.Insights.CitationImpact = nil }, "citation_impact is nil"},
		{"bad series", func(r *SearchResult) {
			r.Insights.RecentActivity = MetricSeries{{"Jan", 1}, {"Jan", 2}}
		}, "activity_timeline"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := validResult()
			tc.mutate(r)
			assert.ErrorContains(t, r.Validate(), tc.want)
		})
	}

	var nilResult *SearchResult
	assert.Error(t, nilResult.Validate())
}

//Personal.AI order the ending
