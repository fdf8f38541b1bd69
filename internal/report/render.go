package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"adimpact/domain/campaign"
	"adimpact/internal/pipeline"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Output formats.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Write renders r in the requested format.
func Write(w io.Writer, r *Report, format string) error {
	var (
		out []byte
		err error
	)
	switch format {
	case FormatMarkdown, "":
		out = []byte(Markdown(r))
	case FormatHTML:
		out = HTML(r, true)
	case FormatJSON:
		out, err = JSON(r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}

// JSON returns the indented machine-readable report.
func JSON(r *Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// HTML converts the Markdown rendering. With completePage the result is a
// standalone document; otherwise it is a fragment for embedding. Raw HTML
// in the Markdown is dropped, since ad names come from uploaded files.
func HTML(r *Report, completePage bool) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)

	flags := html.CommonFlags | html.HrefTargetBlank | html.SkipHTML
	if completePage {
		flags |= html.CompletePage
	}
	renderer := html.NewRenderer(html.RendererOptions{Flags: flags, Title: Title})

	return markdown.ToHTML([]byte(Markdown(r)), p, renderer)
}

// Markdown renders the report as GitHub-style Markdown.
func Markdown(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", Title)
	fmt.Fprintf(&b, "_Run `%s`, generated %s_\n\n", r.RunID, r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
	if r.Sources.Engagement != "" || r.Sources.Sales != "" {
		fmt.Fprintf(&b, "Ads export: `%s`  \nSales export: `%s`\n\n", r.Sources.Engagement, r.Sources.Sales)
	}

	b.WriteString("## Campaign Name Keywords\n\n")
	b.WriteString(r.Keywords.Paragraph)
	b.WriteString("\n\n")

	b.WriteString("## Engagement Metric Impact\n\n")
	writeImpact(&b, r.Impact)

	fmt.Fprintf(&b, "## Top %d Ads by Orders\n\n", r.TopLimit)
	writeCampaigns(&b, r.TopCampaigns, r.Diagnostics.AvailableMetrics)

	b.WriteString("## Diagnostics\n\n")
	d := r.Diagnostics
	fmt.Fprintf(&b, "- Engagement rows: %d\n", d.Join.EngagementRows)
	fmt.Fprintf(&b, "- Sales rows: %d\n", d.Join.SalesRows)
	fmt.Fprintf(&b, "- Joined rows: %d\n", d.Join.JoinedRows)
	fmt.Fprintf(&b, "- Campaigns analysed: %d\n", d.Campaigns)
	fmt.Fprintf(&b, "- Sales campaigns without ad data: %d\n", d.Join.UnmatchedSalesCampaigns)
	fmt.Fprintf(&b, "- Ad campaigns without sales: %d\n", d.Join.UnmatchedEngagementCampaigns)
	if len(d.MissingMetrics) > 0 {
		fmt.Fprintf(&b, "- Metrics not in the ads export: %s\n", joinMetrics(d.MissingMetrics))
	}
	return b.String()
}

func writeImpact(b *strings.Builder, impact pipeline.ImpactResult) {
	switch impact.Status {
	case pipeline.ImpactNoVariance:
		b.WriteString("_No engagement metric varied across the joined campaigns, so no impact scores could be computed._\n\n")
		return
	case pipeline.ImpactConstantOrders:
		b.WriteString("_Every joined campaign has the same order count, so correlation with orders is undefined._\n\n")
		return
	}

	b.WriteString("| Engagement Metric | Correlation with Orders | Impact Score (1-10) |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, s := range impact.Scores {
		fmt.Fprintf(b, "| %s | %s | %s |\n",
			escapeCell(s.Metric.String()),
			strconv.FormatFloat(s.Correlation, 'f', 3, 64),
			strconv.FormatFloat(s.ImpactScore, 'f', 2, 64))
	}
	b.WriteString("\n")
}

func writeCampaigns(b *strings.Builder, rows []campaign.AggregatedCampaign, metrics []campaign.Metric) {
	if len(rows) == 0 {
		b.WriteString("_No campaign appears in both exports._\n\n")
		return
	}

	header := []string{campaign.ColumnAdName, campaign.ColumnOrders, campaign.ColumnShopifyRevenue, campaign.ColumnAmountSpent, "ROAS"}
	for _, m := range metrics {
		header = append(header, escapeCell(m.String()))
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|---" + strings.Repeat("|---:", len(header)-1) + "|\n")

	for _, c := range rows {
		cells := []string{
			escapeCell(c.AdName),
			formatNumber(c.Orders),
			formatMoney(c.Revenue),
			formatMoney(c.AmountSpent),
			formatROAS(c.ROAS),
		}
		for _, m := range metrics {
			cells = append(cells, formatNumber(c.Metrics[m]))
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	b.WriteString("\n")
}

func formatROAS(roas *float64) string {
	if roas == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*roas, 'f', 2, 64)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatNumber prints whole numbers without decimals.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

var cellEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"<", `\<`,
	">", `\>`,
	"&", `\&`,
)

// escapeCell makes uploaded text safe inside a Markdown table cell.
func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}

func joinMetrics(ms []campaign.Metric) string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.String()
	}
	return strings.Join(names, ", ")
}
