// Package query classifies free-form search strings into one of the four
// query kinds understood by the patent search service.
package query

import (
	"regexp"
	"strings"

	"github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

var (
	isinPattern    = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{10}$`)
	urlPattern     = regexp.MustCompile(`^https?://`)
	companyPattern = regexp.MustCompile(`(?i)\b(inc|corp|ltd|llc|gmbh|ag|sa|plc|co)\b`)
)

// rule recognises one query kind. match returns the normalized value and
// whether the rule applies.
type rule struct {
	kind  insight.QueryKind
	match func(raw string) (string, bool)
}

// rules is evaluated top to bottom and the first match wins. An input that
// matches several patterns, e.g. "https://acme-corp.com", takes the earliest.
var rules = []rule{
	{
		kind: insight.QueryKindISIN,
		match: func(raw string) (string, bool) {
			upper := strings.ToUpper(raw)
			return upper, isinPattern.MatchString(upper)
		},
	},
	{
		kind: insight.QueryKindURL,
		match: func(raw string) (string, bool) {
			return raw, urlPattern.MatchString(raw)
		},
	},
	{
		kind: insight.QueryKindCompany,
		match: func(raw string) (string, bool) {
			return raw, companyPattern.MatchString(raw)
		},
	},
}

// Classify maps raw to a SearchQuery. It never fails: anything no rule claims,
// including the empty string, is a theme. Callers are expected to trim raw.
func Classify(raw string) insight.SearchQuery {
	for _, r := range rules {
		if value, ok := r.match(raw); ok {
			return insight.SearchQuery{Kind: r.kind, Value: value}
		}
	}
	return insight.SearchQuery{Kind: insight.QueryKindTheme, Value: raw}
}

// ClassifyWithTheme classifies raw and attaches theme. Theme never affects the
// kind.
func ClassifyWithTheme(raw, theme string) insight.SearchQuery {
	return Classify(raw).WithTheme(theme)
}

//Personal.AI order the ending
