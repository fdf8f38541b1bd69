package pipeline

import (
	"adimpact/adapters/coercer"
	"adimpact/adapters/excel"
	"adimpact/domain/campaign"
)

// PrepareEngagement converts raw ad-performance rows into typed records.
// Only the metrics declared in schema are populated; each one is present
// on every record, with unparseable or missing cells filled by the coercer.
func PrepareEngagement(t *excel.Table, schema campaign.Schema, c *coercer.NumericCoercer) []campaign.EngagementRecord {
	records := make([]campaign.EngagementRecord, 0, t.Len())

	for i := range t.Rows {
		adName, _ := t.Value(i, campaign.ColumnAdName)

		var rawDuration interface{}
		if v, ok := t.Value(i, campaign.ColumnVideoPlayTime); ok {
			rawDuration = v
		}
		seconds := DurationSeconds(rawDuration)

		metrics := make(map[campaign.Metric]float64, len(schema.Metrics))
		for _, m := range schema.Metrics {
			if m == campaign.MetricPlayTimeSecs {
				metrics[m] = float64(seconds)
				continue
			}
			raw, ok := t.Value(i, m.SourceColumn())
			metrics[m] = c.CoerceCell(raw, ok)
		}

		spent, ok := t.Value(i, campaign.ColumnAmountSpent)
		records = append(records, campaign.EngagementRecord{
			AdName:          adName,
			DurationSeconds: seconds,
			AmountSpent:     c.CoerceCell(spent, ok),
			Metrics:         metrics,
		})
	}

	return records
}
