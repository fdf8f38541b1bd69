// Package report holds the finished analysis and renders it as Markdown,
// HTML or JSON.
package report

import (
	"time"

	"adimpact/domain/campaign"
	"adimpact/domain/core"
	"adimpact/internal/pipeline"
)

// Title heads every rendered report.
const Title = "Ad Engagement Impact Dashboard"

// Report is the complete output of one run.
type Report struct {
	RunID        core.RunID                    `json:"run_id"`
	GeneratedAt  time.Time                     `json:"generated_at"`
	Sources      Sources                       `json:"sources"`
	Keywords     pipeline.TokenAnalysis        `json:"keywords"`
	Impact       pipeline.ImpactResult         `json:"impact"`
	TopCampaigns []campaign.AggregatedCampaign `json:"top_campaigns"`
	TopLimit     int                           `json:"top_limit"`
	Diagnostics  Diagnostics                   `json:"diagnostics"`
}

// Sources names the two input files.
type Sources struct {
	Engagement string `json:"engagement"`
	Sales      string `json:"sales"`
}

// Diagnostics explains what the run kept and dropped.
type Diagnostics struct {
	Join             pipeline.JoinStats `json:"join"`
	Campaigns        int                `json:"campaigns"`
	AvailableMetrics []campaign.Metric  `json:"available_metrics"`
	MissingMetrics   []campaign.Metric  `json:"missing_metrics"`
}
