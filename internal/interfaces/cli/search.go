package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Insight/internal/application/search"
	domainInsight "github.com/turtacn/KeyIP-Insight/internal/domain/insight"
	"github.com/turtacn/KeyIP-Insight/internal/domain/query"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Insight/pkg/errors"
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

const defaultRecordLimit = 10

type searchOptions struct {
	theme   string
	baseURL string
	token   string
	records int
}

// searchOutput is the JSON rendering of a search.
type searchOutput struct {
	Outcome  string              `json:"outcome"`
	Reason   string              `json:"reason,omitempty"`
	Headline string              `json:"headline"`
	Result   *model.SearchResult `json:"result"`
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search <query...>",
		Short: "Search patents for a company, ISIN, URL or technology theme",
		Long: "Classify the query, fetch patents from the configured patent search service\n" +
			"and print the headline, the narrative, the insight series and the top records.\n" +
			"--base-url and --token override the remote section of the configuration.",
		Example: "  keyip-insight search Tesla Inc --theme batteries\n" +
			"  keyip-insight search US0378331005 -o json\n" +
			"  keyip-insight search \"quantum computing\" -o table --records 20",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.theme, "theme", "", "technology theme annotating the query")
	f.StringVar(&opts.baseURL, "base-url", "", "patent search service base URL")
	f.StringVar(&opts.token, "token", "", "bearer token for the patent search service")
	f.IntVar(&opts.records, "records", defaultRecordLimit, "number of records to print (0 prints all)")
	return cmd
}

// joinArgs turns the positional words into the raw query.
func joinArgs(args []string) (string, error) {
	raw := strings.TrimSpace(strings.Join(args, " "))
	if raw == "" {
		return "", errors.New(errors.ErrCodeEmptyQuery, "query must not be empty")
	}
	return raw, nil
}

func runSearch(cmd *cobra.Command, args []string, opts *searchOptions) error {
	raw, err := joinArgs(args)
	if err != nil {
		return err
	}
	if opts.records < 0 {
		return errors.Newf(errors.ErrCodeBadRequest, "records must be >= 0, got %d", opts.records)
	}
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	creds := search.Credentials{
		BaseURL:     cliCtx.Config.Remote.BaseURL,
		BearerToken: cliCtx.Config.Remote.BearerToken,
	}
	if opts.baseURL != "" {
		creds.BaseURL = opts.baseURL
	}
	if opts.token != "" {
		creds.BearerToken = opts.token
	}
	cliCtx.Logger.Debug("running search",
		logging.String("base_url", creds.BaseURL),
		logging.Token("token", creds.BearerToken))

	out := cliCtx.Search.Resolve(cmd.Context(), search.Request{Raw: raw, Theme: opts.theme, Credentials: creds})
	headline := domainInsight.Headline(raw, out.Result)

	w := cmd.OutOrStdout()
	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, searchOutput{
			Outcome:  string(out.Kind),
			Reason:   string(out.Reason),
			Headline: headline,
			Result:   out.Result,
		})
	case "table":
		printSummary(w, headline, out)
		renderSeriesTable(w, out.Result)
		renderRecordTable(w, out.Result.Records, opts.records)
	default:
		printSummary(w, headline, out)
		printSeries(w, out.Result)
		printRecords(w, out.Result.Records, opts.records)
	}
	if cliCtx.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "outcome=%s reason=%s kind=%s\n", out.Kind, out.Reason, out.Query.Kind)
	}
	return nil
}

func printSummary(w io.Writer, headline string, out search.Outcome) {
	fmt.Fprintln(w, color.New(color.Bold).Sprint(headline))
	fmt.Fprintln(w)
	if out.Degraded() {
		fmt.Fprintln(w, color.YellowString(out.Result.Narrative))
	} else {
		fmt.Fprintln(w, out.Result.Narrative)
	}
	if out.Kind == search.OutcomeFallback {
		fmt.Fprintln(w, color.New(color.Faint).Sprintf("(sample data: %s)", out.Reason))
	}
	fmt.Fprintln(w)
}

func formatPoints(s model.MetricSeries) string {
	parts := make([]string, 0, len(s))
	for _, p := range s {
		parts = append(parts, fmt.Sprintf("%s %s", p.Label, strconv.FormatFloat(p.Value, 'f', -1, 64)))
	}
	return strings.Join(parts, ", ")
}

func printSeries(w io.Writer, r *model.SearchResult) {
	fmt.Fprintf(w, "Total patents: %d\n", r.Insights.TotalPatents)
	r.Insights.Each(func(name model.SeriesName, s model.MetricSeries) {
		if len(s) == 0 {
			return
		}
		fmt.Fprintf(w, "%s: %s\n", color.CyanString(name.Title()), formatPoints(s))
	})
	fmt.Fprintln(w)
}

func limitRecords(records []model.PatentRecord, limit int) []model.PatentRecord {
	if limit > 0 && limit < len(records) {
		return records[:limit]
	}
	return records
}

func dateOnly(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func printRecords(w io.Writer, records []model.PatentRecord, limit int) {
	shown := limitRecords(records, limit)
	for i, rec := range shown {
		fmt.Fprintf(w, "%3d. %-12s %s\n", i+1, rec.PatentNumber, rec.Title)
		fmt.Fprintf(w, "     %s, published %s, %d claims, %d citations\n",
			rec.Assignee, dateOnly(rec.PublicationDate), rec.ClaimsCount, rec.CitationsCount)
	}
	if len(shown) < len(records) {
		fmt.Fprintf(w, "... %d more\n", len(records)-len(shown))
	}
}

func renderSeriesTable(w io.Writer, r *model.SearchResult) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Series", "Points", "Total", "Top"})
	r.Insights.Each(func(name model.SeriesName, s model.MetricSeries) {
		table.Append([]string{
			name.Title(),
			strconv.Itoa(len(s)),
			strconv.FormatFloat(s.Sum(), 'f', -1, 64),
			strings.Join(s.TopLabels(3), ", "),
		})
	})
	table.Render()
	fmt.Fprintln(w)
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func renderRecordTable(w io.Writer, records []model.PatentRecord, limit int) {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Patent", "Title", "Assignee", "Published", "Claims", "Citations", "Technology"})
	for i, rec := range limitRecords(records, limit) {
		table.Append([]string{
			strconv.Itoa(i + 1),
			rec.PatentNumber,
			truncateString(rec.Title, 50),
			truncateString(rec.Assignee, 24),
			dateOnly(rec.PublicationDate),
			strconv.Itoa(rec.ClaimsCount),
			strconv.Itoa(rec.CitationsCount),
			strings.Join(rec.TechnologyTags, ", "),
		})
	}
	table.Render()
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	var theme string
	cmd := &cobra.Command{
		Use:   "classify <input...>",
		Short: "Show how an input would be interpreted",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := joinArgs(args)
			if err != nil {
				return err
			}
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			q := query.ClassifyWithTheme(raw, theme)

			w := cmd.OutOrStdout()
			switch cliCtx.OutputFormat {
			case "json":
				return printJSON(cmd, q)
			case "table":
				table := tablewriter.NewWriter(w)
				table.Header([]string{"Kind", "Value", "Theme"})
				table.Append([]string{string(q.Kind), q.Value, q.Theme})
				table.Render()
			default:
				fmt.Fprintf(w, "%s: %s\n", color.CyanString(string(q.Kind)), q.Value)
				if q.HasTheme() {
					fmt.Fprintf(w, "theme: %s\n", q.Theme)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "technology theme annotating the input")
	return cmd
}

//Personal.AI order the ending
