package pipeline

import (
	"sort"

	"adimpact/domain/campaign"

	"github.com/montanaflynn/stats"
)

// JoinStats records what the inner join kept and dropped.
type JoinStats struct {
	SalesRows                    int `json:"sales_rows"`
	EngagementRows               int `json:"engagement_rows"`
	JoinedRows                   int `json:"joined_rows"`
	UnmatchedSalesCampaigns      int `json:"unmatched_sales_campaigns"`
	UnmatchedEngagementCampaigns int `json:"unmatched_engagement_campaigns"`
}

// Join inner-joins sales and engagement rows on Ad name. Every sales row
// is paired with every engagement row sharing its name, in sales order.
// Rows with an empty name never match.
func Join(sales []campaign.SalesRecord, engagement []campaign.EngagementRecord) ([]campaign.JoinedRecord, JoinStats) {
	byName := make(map[string][]int)
	for i, e := range engagement {
		if e.AdName == "" {
			continue
		}
		byName[e.AdName] = append(byName[e.AdName], i)
	}

	st := JoinStats{SalesRows: len(sales), EngagementRows: len(engagement)}
	matched := make(map[string]bool)
	unmatchedSales := make(map[string]bool)

	var joined []campaign.JoinedRecord
	for _, s := range sales {
		idx, ok := byName[s.AdName]
		if !ok {
			unmatchedSales[s.AdName] = true
			continue
		}
		matched[s.AdName] = true
		for _, i := range idx {
			joined = append(joined, campaign.JoinedRecord{
				AdName:     s.AdName,
				Sales:      s,
				Engagement: engagement[i],
			})
		}
	}

	st.JoinedRows = len(joined)
	st.UnmatchedSalesCampaigns = len(unmatchedSales)
	for name := range byName {
		if !matched[name] {
			st.UnmatchedEngagementCampaigns++
		}
	}
	return joined, st
}

// Aggregate collapses joined rows to one row per Ad name: declared metrics
// are averaged, orders, revenue and spend are summed, and ROAS is derived.
// Rows come back sorted by Ad name.
func Aggregate(joined []campaign.JoinedRecord, schema campaign.Schema) []campaign.AggregatedCampaign {
	groups := make(map[string][]campaign.JoinedRecord)
	var names []string
	for _, j := range joined {
		if _, ok := groups[j.AdName]; !ok {
			names = append(names, j.AdName)
		}
		groups[j.AdName] = append(groups[j.AdName], j)
	}
	sort.Strings(names)

	out := make([]campaign.AggregatedCampaign, 0, len(names))
	for _, name := range names {
		rows := groups[name]

		orders := make([]float64, len(rows))
		revenue := make([]float64, len(rows))
		spent := make([]float64, len(rows))
		for i, r := range rows {
			orders[i] = r.Sales.Orders
			revenue[i] = r.Sales.Revenue
			spent[i] = r.Engagement.AmountSpent
		}

		metrics := make(map[campaign.Metric]float64, len(schema.Metrics))
		values := make([]float64, len(rows))
		for _, m := range schema.Metrics {
			for i, r := range rows {
				values[i] = r.Engagement.Metrics[m]
			}
			metrics[m], _ = stats.Mean(values)
		}

		agg := campaign.AggregatedCampaign{
			AdName:      name,
			Metrics:     metrics,
			Orders:      sum(orders),
			Revenue:     sum(revenue),
			AmountSpent: sum(spent),
		}
		agg.ROAS = ROAS(agg.Revenue, agg.AmountSpent)
		out = append(out, agg)
	}
	return out
}

// ROAS is revenue over spend, or nil when nothing was spent.
func ROAS(revenue, spent float64) *float64 {
	if spent == 0 {
		return nil
	}
	r := revenue / spent
	return &r
}

func sum(values []float64) float64 {
	s, err := stats.Sum(values)
	if err != nil {
		return 0
	}
	return s
}
