package pipeline

import (
	"sort"

	"adimpact/domain/campaign"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Impact score band.
const (
	MinImpactScore = 1.0
	MaxImpactScore = 10.0
)

// ImpactStatus says whether an impact table could be produced.
type ImpactStatus string

const (
	ImpactScored         ImpactStatus = "scored"
	ImpactNoVariance     ImpactStatus = "no_metric_variance"
	ImpactConstantOrders ImpactStatus = "constant_orders"
)

// ImpactResult is the scored metric table, highest impact first. Scores is
// empty unless Status is ImpactScored.
type ImpactResult struct {
	Status ImpactStatus                 `json:"status"`
	Scores []campaign.MetricImpactScore `json:"scores"`
}

// ScoreImpact correlates each declared metric with orders across the
// aggregated campaigns and rescales the coefficients onto 1..10. Metrics
// that do not vary are left out. When orders do not vary no coefficient
// is defined and no table is produced.
func ScoreImpact(campaigns []campaign.AggregatedCampaign, schema campaign.Schema) ImpactResult {
	orders := make([]float64, len(campaigns))
	for i, c := range campaigns {
		orders[i] = c.Orders
	}

	var qualifying []campaign.Metric
	columns := make(map[campaign.Metric][]float64)
	for _, m := range schema.Metrics {
		col := make([]float64, len(campaigns))
		for i, c := range campaigns {
			col[i] = c.Metrics[m]
		}
		if distinct(col) > 1 {
			qualifying = append(qualifying, m)
			columns[m] = col
		}
	}

	if len(qualifying) == 0 {
		return ImpactResult{Status: ImpactNoVariance}
	}
	if distinct(orders) < 2 {
		return ImpactResult{Status: ImpactConstantOrders}
	}

	corr := make([]float64, len(qualifying))
	for i, m := range qualifying {
		// Both columns vary, so the coefficient is defined.
		corr[i], _ = stats.Correlation(columns[m], orders)
	}
	scaled := MinMaxScale(corr, MinImpactScore, MaxImpactScore)

	scores := make([]campaign.MetricImpactScore, len(qualifying))
	for i, m := range qualifying {
		scores[i] = campaign.MetricImpactScore{
			Metric:      m,
			Correlation: corr[i],
			ImpactScore: scaled[i],
		}
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].ImpactScore > scores[j].ImpactScore
	})

	return ImpactResult{Status: ImpactScored, Scores: scores}
}

// MinMaxScale maps values linearly so the minimum lands on lo and the
// maximum on hi. A zero-width input range maps every value to the
// midpoint of [lo, hi].
func MinMaxScale(values []float64, lo, hi float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	minV, maxV := floats.Min(values), floats.Max(values)
	if maxV == minV {
		for i := range out {
			out[i] = (lo + hi) / 2
		}
		return out
	}

	for i, v := range values {
		switch v {
		case minV:
			out[i] = lo
		case maxV:
			out[i] = hi
		default:
			out[i] = lo + (v-minV)*(hi-lo)/(maxV-minV)
		}
	}
	return out
}

// RankByOrders returns the n campaigns with the most orders, highest
// first. Equal order counts keep their input order.
func RankByOrders(campaigns []campaign.AggregatedCampaign, n int) []campaign.AggregatedCampaign {
	ranked := make([]campaign.AggregatedCampaign, len(campaigns))
	copy(ranked, campaigns)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Orders > ranked[j].Orders
	})
	if n >= 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func distinct(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
