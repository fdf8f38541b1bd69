// Package campaign holds the record types shared by every stage of the
// engagement impact report.
package campaign

// Column names as they appear in the two source exports.
const (
	ColumnAdName         = "Ad name"
	ColumnVideoPlayTime  = "Video average play time"
	ColumnAmountSpent    = "Amount spent (USD)"
	ColumnUTMCampaign    = "Order UTM campaign"
	ColumnOrders         = "Orders"
	ColumnTotalSales     = "Total sales"
	ColumnShopifyRevenue = "Shopify Revenue"
)

// Metric names an engagement column evaluated against order volume.
type Metric string

const (
	MetricFrequency    Metric = "Frequency"
	MetricCPC          Metric = "CPC (cost per link click) (USD)"
	MetricCTR          Metric = "CTR (link click-through rate)"
	MetricPlayTimeSecs Metric = "Video average play time (s)"
	MetricPlays25Pct   Metric = "% of Plays at 25%"
	MetricPlays50      Metric = "Video plays at 50%"
	MetricPlays100     Metric = "Video plays at 100%"
	MetricThruPlays    Metric = "ThruPlays"
)

// Metrics is the fixed evaluation list. Order is preserved in every report
// table and breaks ties between equal impact scores.
var Metrics = []Metric{
	MetricFrequency,
	MetricCPC,
	MetricCTR,
	MetricPlayTimeSecs,
	MetricPlays25Pct,
	MetricPlays50,
	MetricPlays100,
	MetricThruPlays,
}

// SourceColumn is the engagement-table column a metric is read from.
// The play-time metric is derived from the H:MM:SS duration column.
func (m Metric) SourceColumn() string {
	if m == MetricPlayTimeSecs {
		return ColumnVideoPlayTime
	}
	return string(m)
}

func (m Metric) String() string { return string(m) }

// EngagementRecord is one prepared ad-delivery row.
type EngagementRecord struct {
	AdName          string
	DurationSeconds int
	AmountSpent     float64
	Metrics         map[Metric]float64
}

// SalesRecord is one prepared sales-attribution row, keyed by Ad name.
type SalesRecord struct {
	AdName  string
	Orders  float64
	Revenue float64
}

// JoinedRecord pairs a sales row with an engagement row sharing an Ad name.
type JoinedRecord struct {
	AdName     string
	Sales      SalesRecord
	Engagement EngagementRecord
}

// AggregatedCampaign is one row per distinct joined Ad name.
type AggregatedCampaign struct {
	AdName      string             `json:"ad_name"`
	Metrics     map[Metric]float64 `json:"metrics"`
	Orders      float64            `json:"orders"`
	Revenue     float64            `json:"shopify_revenue"`
	AmountSpent float64            `json:"amount_spent_usd"`
	// ROAS is nil when nothing was spent.
	ROAS *float64 `json:"roas"`
}

// MetricImpactScore ranks one metric by its correlation with orders.
type MetricImpactScore struct {
	Metric      Metric  `json:"engagement_metric"`
	Correlation float64 `json:"correlation_with_orders"`
	ImpactScore float64 `json:"impact_score"`
}
