package insight

import (
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// Alias lists map each canonical field to the payload keys that may carry it.
// Keys are tried in order and the first usable value wins.
var (
	recordListAliases = []string{"patents", "records", "results"}
	narrativeAliases  = []string{"summary", "narrative"}
	idAliases         = []string{"id", "patent_id"}
	tagAliases        = []string{"technology_areas", "technology", "technologies"}
	labelAliases      = []string{"name", "label", "category"}
	valueAliases      = []string{"value", "count", "amount"}
)

// seriesContainers are the objects searched for series keys, relative to the
// payload root. "" is the root itself.
var seriesContainers = []string{"", "insights"}

// textField is a string attribute of PatentRecord.
type textField struct {
	aliases []string
	set     func(*model.PatentRecord, string)
}

var recordTextFields = []textField{
	{[]string{"title", "name"}, func(r *model.PatentRecord, v string) { r.Title = v }},
	{[]string{"assignee", "owner", "applicant"}, func(r *model.PatentRecord, v string) { r.Assignee = v }},
	{[]string{"publication_date", "pub_date", "publicationDate"}, func(r *model.PatentRecord, v string) { r.PublicationDate = v }},
	{[]string{"application_date", "app_date", "filing_date", "applicationDate"}, func(r *model.PatentRecord, v string) { r.ApplicationDate = v }},
	{[]string{"patent_number", "number", "patentNumber"}, func(r *model.PatentRecord, v string) { r.PatentNumber = v }},
	{[]string{"abstract", "description"}, func(r *model.PatentRecord, v string) { r.Abstract = v }},
}

// countField is a non-negative integer attribute of PatentRecord. Missing,
// zero and unparseable values take def; results below min are raised to min.
type countField struct {
	aliases []string
	def     int
	min     int
	set     func(*model.PatentRecord, int)
}

var recordCountFields = []countField{
	{[]string{"claims_count", "claims"}, 0, 0, func(r *model.PatentRecord, v int) { r.ClaimsCount = v }},
	{[]string{"citations_count", "citations"}, 0, 0, func(r *model.PatentRecord, v int) { r.CitationsCount = v }},
	{[]string{"family_size", "familySize"}, 1, 1, func(r *model.PatentRecord, v int) { r.FamilySize = v }},
}

// seriesKeys returns the payload keys for a category: its snake_case name
// first, then the camelCase key of the result model.
func seriesKeys(name model.SeriesName) []string {
	return []string{string(name), name.JSONKey()}
}

//Personal.AI order the ending
