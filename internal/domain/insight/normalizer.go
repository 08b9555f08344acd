package insight

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// NormalizeStats counts the repairs applied while normalizing one payload.
type NormalizeStats struct {
	SkippedRecords int
	SkippedPoints  int
	GeneratedIDs   int
	RenamedIDs     int
}

// Normalizer maps a live payload onto the result model. Individual malformed
// fields are repaired silently; only a payload whose overall shape is wrong
// is rejected.
type Normalizer struct {
	log logging.Logger
}

// NewNormalizer returns a Normalizer that reports repairs at debug level.
func NewNormalizer(log logging.Logger) *Normalizer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Normalizer{log: log.Named("normalizer")}
}

// Normalize is shorthand for a Normalizer without logging.
func Normalize(payload gjson.Result, q model.SearchQuery) (*model.SearchResult, error) {
	return NewNormalizer(nil).Normalize(payload, q)
}

// Normalize builds a SearchResult from payload. It fails with
// ErrCodeNormalizationFailed when payload is not an object or when the record
// list is present but not an array.
func (n *Normalizer) Normalize(payload gjson.Result, q model.SearchQuery) (*model.SearchResult, error) {
	if !payload.IsObject() {
		return nil, errors.New(errors.ErrCodeNormalizationFailed, "payload is not a JSON object").
			WithDetail("type=" + payload.Type.String())
	}

	var stats NormalizeStats

	list, err := recordList(payload)
	if err != nil {
		return nil, err
	}
	records := n.normalizeRecords(list, &stats)

	bundle := model.NewInsightBundle()
	bundle.TotalPatents = len(records)
	for _, name := range model.AllSeriesNames() {
		bundle.SetSeries(name, normalizeSeries(lookupSeries(payload, name), &stats))
	}

	narrative := firstText(payload, narrativeAliases)
	if narrative == "" {
		narrative = DefaultNarrative(q.Value, len(records))
	}

	if stats != (NormalizeStats{}) {
		n.log.Debug("payload repaired",
			logging.String("query_kind", q.Kind.String()),
			logging.Int("skipped_records", stats.SkippedRecords),
			logging.Int("skipped_points", stats.SkippedPoints),
			logging.Int("generated_ids", stats.GeneratedIDs),
			logging.Int("renamed_ids", stats.RenamedIDs),
		)
	}

	return &model.SearchResult{
		Query:     q,
		Records:   records,
		Insights:  bundle,
		Narrative: narrative,
	}, nil
}

func recordList(payload gjson.Result) ([]gjson.Result, error) {
	for _, key := range recordListAliases {
		r := payload.Get(key)
		if !present(r) {
			continue
		}
		if !r.IsArray() {
			return nil, errors.New(errors.ErrCodeNormalizationFailed, "record list is not an array").
				WithDetail(fmt.Sprintf("key=%s type=%s", key, r.Type))
		}
		return r.Array(), nil
	}
	return nil, nil
}

func (n *Normalizer) normalizeRecords(list []gjson.Result, stats *NormalizeStats) []model.PatentRecord {
	records := make([]model.PatentRecord, 0, len(list))
	used := make(map[string]struct{}, len(list))

	for _, item := range list {
		if !item.IsObject() {
			stats.SkippedRecords++
			continue
		}

		var rec model.PatentRecord
		for _, f := range recordTextFields {
			f.set(&rec, firstText(item, f.aliases))
		}
		for _, f := range recordCountFields {
			v := f.def
			if c, ok := firstNumber(item, f.aliases); ok {
				v = int(math.Min(c, maxCount))
			}
			if v < f.min {
				v = f.min
			}
			f.set(&rec, v)
		}
		rec.TechnologyTags = firstTags(item, tagAliases)

		base := firstText(item, idAliases)
		if base == "" {
			base = rec.PatentNumber
		}
		if base == "" {
			base = fmt.Sprintf("patent_%d", len(records)+1)
			stats.GeneratedIDs++
		}
		rec.ID = uniqueID(base, used)
		if rec.ID != base {
			stats.RenamedIDs++
		}
		used[rec.ID] = struct{}{}

		records = append(records, rec)
	}
	return records
}

// uniqueID returns base, or base-2, base-3, ... whichever is unused first.
func uniqueID(base string, used map[string]struct{}) string {
	if _, taken := used[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if _, taken := used[candidate]; !taken {
			return candidate
		}
	}
}

func lookupSeries(payload gjson.Result, name model.SeriesName) gjson.Result {
	for _, container := range seriesContainers {
		scope := payload
		if container != "" {
			scope = payload.Get(container)
			if !scope.IsObject() {
				continue
			}
		}
		for _, key := range seriesKeys(name) {
			if r := scope.Get(key); present(r) {
				return r
			}
		}
	}
	return gjson.Result{}
}

// normalizeSeries keeps labelled points in order, drops unlabelled ones and
// later duplicates, and clamps values to zero or above. Anything that is not
// an array yields an empty series.
func normalizeSeries(raw gjson.Result, stats *NormalizeStats) model.MetricSeries {
	out := model.MetricSeries{}
	if !raw.IsArray() {
		return out
	}
	seen := make(map[string]struct{})
	raw.ForEach(func(_, item gjson.Result) bool {
		if !item.IsObject() {
			stats.SkippedPoints++
			return true
		}
		label := firstText(item, labelAliases)
		if label == "" {
			stats.SkippedPoints++
			return true
		}
		if _, dup := seen[label]; dup {
			stats.SkippedPoints++
			return true
		}
		seen[label] = struct{}{}
		value, _ := firstNumber(item, valueAliases)
		out = append(out, model.DataPoint{Label: label, Value: value})
		return true
	})
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Alias resolution
// ─────────────────────────────────────────────────────────────────────────────

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

// firstText returns the first alias holding a non-blank string or a number.
func firstText(obj gjson.Result, aliases []string) string {
	for _, key := range aliases {
		r := obj.Get(key)
		switch r.Type {
		case gjson.String:
			if s := strings.TrimSpace(r.Str); s != "" {
				return s
			}
		case gjson.Number:
			return r.String()
		}
	}
	return ""
}

// maxCount caps counts so huge payload values survive the int conversion.
const maxCount = math.MaxInt32

// firstNumber returns the first alias holding a non-zero number, clamped to
// zero or above. Numeric strings are accepted. Zero falls through to the next
// alias.
func firstNumber(obj gjson.Result, aliases []string) (float64, bool) {
	for _, key := range aliases {
		r := obj.Get(key)
		var v float64
		switch r.Type {
		case gjson.Number:
			v = r.Num
		case gjson.String:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
			if err != nil {
				continue
			}
			v = parsed
		default:
			continue
		}
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		return math.Max(v, 0), true
	}
	return 0, false
}

// firstTags returns the first alias holding a non-empty list of tags. A bare
// string counts as a single tag. The result is never nil.
func firstTags(obj gjson.Result, aliases []string) []string {
	for _, key := range aliases {
		r := obj.Get(key)
		var tags []string
		switch {
		case r.IsArray():
			for _, el := range r.Array() {
				if el.Type != gjson.String && el.Type != gjson.Number {
					continue
				}
				if s := strings.TrimSpace(el.String()); s != "" {
					tags = append(tags, s)
				}
			}
		case r.Type == gjson.String:
			if s := strings.TrimSpace(r.Str); s != "" {
				tags = []string{s}
			}
		}
		if len(tags) > 0 {
			return tags
		}
	}
	return []string{}
}

//Personal.AI order the ending
