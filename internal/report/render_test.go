package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"adimpact/domain/campaign"
	"adimpact/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	roas := 4.0
	return &Report{
		RunID:       "run-1",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Sources:     Sources{Engagement: "meta.csv", Sales: "shopify.xlsx"},
		Keywords: pipeline.TokenAnalysis{
			Status:    pipeline.StatusKeywordsFound,
			Paragraph: "Top-performing campaigns repeatedly use the keywords: summer.",
			Keywords:  []string{"summer"},
		},
		Impact: pipeline.ImpactResult{
			Status: pipeline.ImpactScored,
			Scores: []campaign.MetricImpactScore{
				{Metric: campaign.MetricCTR, Correlation: 0.9, ImpactScore: 10},
				{Metric: campaign.MetricFrequency, Correlation: -0.2, ImpactScore: 1},
			},
		},
		TopCampaigns: []campaign.AggregatedCampaign{
			{AdName: "summer|sale", Orders: 10, Revenue: 200, AmountSpent: 50, ROAS: &roas,
				Metrics: map[campaign.Metric]float64{campaign.MetricCTR: 1.25, campaign.MetricFrequency: 2}},
			{AdName: "organic", Orders: 3, Revenue: 30,
				Metrics: map[campaign.Metric]float64{campaign.MetricCTR: 0.5, campaign.MetricFrequency: 1}},
		},
		TopLimit: 50,
		Diagnostics: Diagnostics{
			Join:             pipeline.JoinStats{SalesRows: 4, EngagementRows: 5, JoinedRows: 3, UnmatchedSalesCampaigns: 1},
			Campaigns:        2,
			AvailableMetrics: []campaign.Metric{campaign.MetricFrequency, campaign.MetricCTR},
			MissingMetrics:   []campaign.Metric{campaign.MetricThruPlays},
		},
	}
}

func TestMarkdown_Sections(t *testing.T) {
	md := Markdown(sampleReport())

	assert.True(t, strings.HasPrefix(md, "# Ad Engagement Impact Dashboard\n"))
	assert.Contains(t, md, "## Campaign Name Keywords")
	assert.Contains(t, md, "repeatedly use the keywords: summer.")
	assert.Contains(t, md, "| CTR (link click-through rate) | 0.900 | 10.00 |")
	assert.Contains(t, md, "| Frequency | -0.200 | 1.00 |")
	assert.Contains(t, md, "## Top 50 Ads by Orders")
	assert.Contains(t, md, "- Metrics not in the ads export: ThruPlays")

	// Impact rows keep their ranked order.
	assert.Less(t, strings.Index(md, "CTR (link click-through rate) | 0.900"), strings.Index(md, "Frequency | -0.200"))
}

func TestMarkdown_CampaignRows(t *testing.T) {
	md := Markdown(sampleReport())

	assert.Contains(t, md, `| summer\|sale | 10 | 200.00 | 50.00 | 4.00 | 2 | 1.25 |`)
	assert.Contains(t, md, "| organic | 3 | 30.00 | 0.00 | n/a | 1 | 0.50 |")
}

func TestMarkdown_ImpactStatuses(t *testing.T) {
	r := sampleReport()

	r.Impact = pipeline.ImpactResult{Status: pipeline.ImpactNoVariance}
	assert.Contains(t, Markdown(r), "No engagement metric varied")

	r.Impact = pipeline.ImpactResult{Status: pipeline.ImpactConstantOrders}
	md := Markdown(r)
	assert.Contains(t, md, "same order count")
	assert.NotContains(t, md, "| Engagement Metric |")
}

func TestMarkdown_NoCampaigns(t *testing.T) {
	r := sampleReport()
	r.TopCampaigns = nil
	assert.Contains(t, Markdown(r), "No campaign appears in both exports.")
}

func TestHTML(t *testing.T) {
	page := string(HTML(sampleReport(), true))
	assert.Contains(t, page, "<title>Ad Engagement Impact Dashboard</title>")
	assert.Contains(t, page, "<table>")

	fragment := string(HTML(sampleReport(), false))
	assert.NotContains(t, fragment, "<html")
	assert.Contains(t, fragment, "<h1")
}

func TestHTML_AdNamesAreText(t *testing.T) {
	r := sampleReport()
	r.TopCampaigns[0].AdName = `<img src=x onerror=alert(1)>`
	r.TopCampaigns[1].AdName = `<script>alert("x")</script>`

	md := Markdown(r)
	assert.Contains(t, md, `| \<img src=x onerror=alert(1)\> |`)

	for _, page := range []string{string(HTML(r, false)), string(HTML(r, true))} {
		assert.NotContains(t, page, "<img")
		assert.NotContains(t, page, "<script")
		assert.Contains(t, page, "&lt;img src=x onerror=alert(1)&gt;")
	}
}

func TestHTML_DropsRawHTMLBlocks(t *testing.T) {
	r := sampleReport()
	r.Keywords.Paragraph = `<iframe src="https://example.com"></iframe>`

	assert.NotContains(t, string(HTML(r, false)), "<iframe")
}

func TestJSON_NullROAS(t *testing.T) {
	out, err := JSON(sampleReport())
	require.NoError(t, err)

	var decoded struct {
		TopCampaigns []struct {
			AdName string   `json:"ad_name"`
			ROAS   *float64 `json:"roas"`
		} `json:"top_campaigns"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.TopCampaigns, 2)
	require.NotNil(t, decoded.TopCampaigns[0].ROAS)
	assert.Equal(t, 4.0, *decoded.TopCampaigns[0].ROAS)
	assert.Nil(t, decoded.TopCampaigns[1].ROAS)
}

func TestWrite(t *testing.T) {
	for _, format := range []string{FormatMarkdown, FormatHTML, FormatJSON} {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, sampleReport(), format), format)
		assert.NotZero(t, buf.Len(), format)
	}

	var buf bytes.Buffer
	assert.Error(t, Write(&buf, sampleReport(), "pdf"))
}
