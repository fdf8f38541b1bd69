package pipeline

import (
	"fmt"
	"testing"

	"adimpact/adapters/excel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesTable(rows ...[3]string) *excel.Table {
	t := &excel.Table{Headers: []string{"Order UTM campaign", "Orders", "Total sales"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, excel.RawRowData{"Order UTM campaign": r[0], "Orders": r[1], "Total sales": r[2]})
	}
	return t
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"summer", "sale", "push"}, Tokenize("Summer_Sale  push"))
	assert.Empty(t, Tokenize("  "))
}

func TestAnalyzeTokens_CountsTopCampaignTokens(t *testing.T) {
	table := salesTable(
		[3]string{"summer_sale_push", "5", "50"},
		[3]string{"summer_sale_push", "4", "40"},
		[3]string{"winter_sale", "1", "10"},
		[3]string{"summer_drop", "2", "20"},
	)

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	require.Equal(t, StatusKeywordsFound, got.Status)
	assert.Equal(t, []string{"summer_sale_push", "summer_drop", "winter_sale"}, got.TopCampaigns)
	assert.Equal(t, []TokenCount{
		{Token: "summer", Count: 2},
		{Token: "sale", Count: 2},
		{Token: "push", Count: 1},
		{Token: "drop", Count: 1},
		{Token: "winter", Count: 1},
	}, got.Counts)
	assert.Equal(t, []string{"summer", "sale"}, got.Keywords)
	assert.Contains(t, got.Paragraph, "summer, sale.")
}

// The worked example ["summer_sale_push", "summer_sale_push", "winter_sale"]
// is often quoted as yielding {summer:2, sale:2}. Rows are grouped by
// identifier first, so the repeated identifier is tokenized once and only
// "sale" recurs.
func TestAnalyzeTokens_DuplicateIdentifiersCountOnce(t *testing.T) {
	table := salesTable(
		[3]string{"summer_sale_push", "5", "50"},
		[3]string{"summer_sale_push", "4", "40"},
		[3]string{"winter_sale", "1", "10"},
	)

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	require.Equal(t, StatusKeywordsFound, got.Status)
	assert.Equal(t, []string{"summer_sale_push", "winter_sale"}, got.TopCampaigns)
	assert.Equal(t, []TokenCount{
		{Token: "sale", Count: 2},
		{Token: "summer", Count: 1},
		{Token: "push", Count: 1},
		{Token: "winter", Count: 1},
	}, got.Counts)
	assert.Equal(t, []string{"sale"}, got.Keywords)
}

func TestAnalyzeTokens_OnlyTopCampaignsCount(t *testing.T) {
	opts := TokenOptions{TopCampaigns: 2, MaxKeywords: 4}
	table := salesTable(
		[3]string{"alpha_promo", "10", "0"},
		[3]string{"beta_promo", "9", "0"},
		[3]string{"gamma_alpha", "1", "0"},
		[3]string{"delta_beta", "1", "0"},
	)

	got := AnalyzeTokens(table, opts, strictCoercer())

	assert.Equal(t, []string{"alpha_promo", "beta_promo"}, got.TopCampaigns)
	assert.Equal(t, []string{"promo"}, got.Keywords)
}

func TestAnalyzeTokens_NonAlphabeticTokensExcluded(t *testing.T) {
	table := salesTable(
		[3]string{"q3_2024_launch", "3", "0"},
		[3]string{"q4_2024_launch", "2", "0"},
	)

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	assert.Equal(t, []string{"launch"}, got.Keywords)
}

func TestAnalyzeTokens_EllipsisAfterMaxKeywords(t *testing.T) {
	// Distinct spellings keep the two rows as separate campaigns.
	table := salesTable(
		[3]string{"one two three four five", "2", "0"},
		[3]string{"ONE_TWO_THREE_FOUR_FIVE", "1", "0"},
	)

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	require.Equal(t, StatusKeywordsFound, got.Status)
	assert.Len(t, got.Keywords, 5)
	assert.Contains(t, got.Paragraph, "one, two, three, four, ...")
	assert.NotContains(t, got.Paragraph, "five")
}

func TestAnalyzeTokens_NoRecurringKeywords(t *testing.T) {
	table := salesTable(
		[3]string{"alpha", "3", "0"},
		[3]string{"beta", "2", "0"},
	)

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	assert.Equal(t, StatusNoRecurringKeywords, got.Status)
	assert.Equal(t, paragraphNoKeywords, got.Paragraph)
	assert.Empty(t, got.Keywords)
}

func TestAnalyzeTokens_MissingCampaignColumn(t *testing.T) {
	table := &excel.Table{
		Headers: []string{"Orders"},
		Rows:    []excel.RawRowData{{"Orders": "1"}},
	}

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	assert.Equal(t, StatusColumnMissing, got.Status)
	assert.Equal(t, paragraphColumnMissing, got.Paragraph)
}

func TestAnalyzeTokens_GroupingFailureIsReported(t *testing.T) {
	table := &excel.Table{
		Headers: []string{"Order UTM campaign", "Total sales"},
		Rows:    []excel.RawRowData{{"Order UTM campaign": "a", "Total sales": "1"}},
	}

	got := AnalyzeTokens(table, DefaultTokenOptions(), strictCoercer())

	assert.Equal(t, StatusDataFormatIssue, got.Status)
	assert.Equal(t, paragraphFormatIssue, got.Paragraph)
	assert.Contains(t, got.Reason, "Orders")
}

func TestAnalyzeTokens_TopTwentyLimit(t *testing.T) {
	var rows [][3]string
	for i := 0; i < 25; i++ {
		rows = append(rows, [3]string{fmt.Sprintf("camp_%02d", i), fmt.Sprintf("%d", 100-i), "0"})
	}

	got := AnalyzeTokens(salesTable(rows...), DefaultTokenOptions(), strictCoercer())

	require.Len(t, got.TopCampaigns, 20)
	assert.Equal(t, "camp_00", got.TopCampaigns[0])
	assert.Equal(t, "camp_19", got.TopCampaigns[19])
	assert.Equal(t, []string{"camp"}, got.Keywords)
}
