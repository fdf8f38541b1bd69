package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"adimpact/adapters/coercer"
	"adimpact/adapters/excel"
	"adimpact/domain/campaign"

	"github.com/montanaflynn/stats"
)

// TokenStatus says how the keyword analysis ended.
type TokenStatus string

const (
	StatusKeywordsFound       TokenStatus = "keywords_found"
	StatusNoRecurringKeywords TokenStatus = "no_recurring_keywords"
	StatusColumnMissing       TokenStatus = "column_missing"
	StatusDataFormatIssue     TokenStatus = "data_format_issue"
)

// Fixed paragraphs for the non-success outcomes.
const (
	paragraphColumnMissing = "Campaign keyword analysis is not available: the sales file has no \"Order UTM campaign\" column."
	paragraphNoKeywords    = "No strong recurring keywords were found among the top-performing campaign names."
	paragraphFormatIssue   = "Campaign keyword analysis could not be completed due to a data format issue in the sales file."
)

// TokenOptions bounds the keyword analysis.
type TokenOptions struct {
	TopCampaigns int // identifiers ranked by summed orders
	MaxKeywords  int // keywords named in the paragraph
}

// DefaultTokenOptions returns the top-20 / first-4 defaults.
func DefaultTokenOptions() TokenOptions {
	return TokenOptions{TopCampaigns: 20, MaxKeywords: 4}
}

// TokenCount is one token and how often it occurred.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// TokenAnalysis is the typed outcome of keyword analysis. Paragraph is
// always set; Reason explains degraded outcomes.
type TokenAnalysis struct {
	Status       TokenStatus  `json:"status"`
	Paragraph    string       `json:"paragraph"`
	Keywords     []string     `json:"keywords,omitempty"`
	Counts       []TokenCount `json:"token_counts,omitempty"`
	TopCampaigns []string     `json:"top_campaigns,omitempty"`
	Reason       string       `json:"reason,omitempty"`
}

// Tokenize lowercases an identifier, treats underscores as spaces and
// splits on whitespace.
func Tokenize(identifier string) []string {
	return strings.Fields(strings.ReplaceAll(strings.ToLower(identifier), "_", " "))
}

// AnalyzeTokens surfaces recurring words in the names of the campaigns
// with the most orders. It reads the raw sales table, before the column
// rename, and never fails: problems become a status on the result.
func AnalyzeTokens(t *excel.Table, opts TokenOptions, c *coercer.NumericCoercer) TokenAnalysis {
	if !t.Has(campaign.ColumnUTMCampaign) {
		return TokenAnalysis{
			Status:    StatusColumnMissing,
			Paragraph: paragraphColumnMissing,
			Reason:    fmt.Sprintf("column %q not found", campaign.ColumnUTMCampaign),
		}
	}

	top, err := topCampaignsByOrders(t, opts.TopCampaigns, c)
	if err != nil {
		return TokenAnalysis{
			Status:    StatusDataFormatIssue,
			Paragraph: paragraphFormatIssue,
			Reason:    err.Error(),
		}
	}

	counts := countTokens(top)

	var keywords []string
	for _, tc := range counts {
		if tc.Count > 1 && isAlphabetic(tc.Token) {
			keywords = append(keywords, tc.Token)
		}
	}

	result := TokenAnalysis{
		Counts:       counts,
		TopCampaigns: top,
		Keywords:     keywords,
	}
	if len(keywords) == 0 {
		result.Status = StatusNoRecurringKeywords
		result.Paragraph = paragraphNoKeywords
		return result
	}

	result.Status = StatusKeywordsFound
	result.Paragraph = keywordParagraph(keywords, opts.MaxKeywords)
	return result
}

type campaignTotals struct {
	id      string
	orders  []float64
	revenue []float64
}

// topCampaignsByOrders groups the raw rows by identifier, sums orders and
// revenue, and returns the n identifiers with the most orders. Identifiers
// are visited in sorted order so ties resolve alphabetically.
func topCampaignsByOrders(t *excel.Table, n int, c *coercer.NumericCoercer) ([]string, error) {
	for _, col := range []string{campaign.ColumnOrders, campaign.ColumnTotalSales} {
		if !t.Has(col) {
			return nil, fmt.Errorf("cannot group campaigns: column %q not found", col)
		}
	}

	groups := make(map[string]*campaignTotals)
	for i := range t.Rows {
		id, _ := t.Value(i, campaign.ColumnUTMCampaign)
		if id == "" {
			continue
		}
		g, ok := groups[id]
		if !ok {
			g = &campaignTotals{id: id}
			groups[id] = g
		}
		orders, hasOrders := t.Value(i, campaign.ColumnOrders)
		revenue, hasRevenue := t.Value(i, campaign.ColumnTotalSales)
		g.orders = append(g.orders, c.CoerceCell(orders, hasOrders))
		g.revenue = append(g.revenue, c.CoerceCell(revenue, hasRevenue))
	}

	type ranked struct {
		id      string
		orders  float64
		revenue float64
	}
	rows := make([]ranked, 0, len(groups))
	for _, g := range groups {
		orders, err := stats.Sum(g.orders)
		if err != nil {
			return nil, fmt.Errorf("summing orders for %q: %w", g.id, err)
		}
		revenue, err := stats.Sum(g.revenue)
		if err != nil {
			return nil, fmt.Errorf("summing revenue for %q: %w", g.id, err)
		}
		rows = append(rows, ranked{id: g.id, orders: orders, revenue: revenue})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].id < rows[j].id })
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].orders > rows[j].orders })

	if n > len(rows) {
		n = len(rows)
	}
	top := make([]string, n)
	for i := 0; i < n; i++ {
		top[i] = rows[i].id
	}
	return top, nil
}

// countTokens tallies tokens across identifiers, most frequent first and
// by first appearance among equals.
func countTokens(identifiers []string) []TokenCount {
	index := make(map[string]int)
	var counts []TokenCount
	for _, id := range identifiers {
		for _, tok := range Tokenize(id) {
			if i, ok := index[tok]; ok {
				counts[i].Count++
				continue
			}
			index[tok] = len(counts)
			counts = append(counts, TokenCount{Token: tok, Count: 1})
		}
	}

	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })
	return counts
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func keywordParagraph(keywords []string, limit int) string {
	named := keywords
	suffix := ""
	if limit > 0 && len(keywords) > limit {
		named = keywords[:limit]
		suffix = ", ..."
	}
	return fmt.Sprintf(
		"Top-performing campaigns by order volume repeatedly use the keywords: %s%s. Names built around these themes are associated with higher order counts.",
		strings.Join(named, ", "), suffix,
	)
}
