package campaign

import (
	"adimpact/domain/core"
)

// ColumnSet reports which columns a loaded table carries.
type ColumnSet interface {
	Has(column string) bool
}

// Schema is the capability list produced once at ingestion. Downstream
// stages iterate Metrics and never re-check column presence.
type Schema struct {
	Metrics []Metric `json:"metrics"`
	Missing []Metric `json:"missing_metrics"`
}

// Has reports whether m is available for this run.
func (s Schema) Has(m Metric) bool {
	for _, available := range s.Metrics {
		if available == m {
			return true
		}
	}
	return false
}

// ValidateEngagement checks the ad-performance table. Ad name and spend are
// required; each metric is available only when its source column exists.
func ValidateEngagement(cols ColumnSet) (Schema, error) {
	for _, required := range []string{ColumnAdName, ColumnAmountSpent} {
		if !cols.Has(required) {
			return Schema{}, core.NewMissingColumnError("engagement", required)
		}
	}

	schema := Schema{}
	for _, m := range Metrics {
		if cols.Has(m.SourceColumn()) {
			schema.Metrics = append(schema.Metrics, m)
		} else {
			schema.Missing = append(schema.Missing, m)
		}
	}
	return schema, nil
}

// ValidateSales checks the sales table carries the columns the join needs.
func ValidateSales(cols ColumnSet) error {
	for _, required := range []string{ColumnUTMCampaign, ColumnOrders, ColumnTotalSales} {
		if !cols.Has(required) {
			return core.NewMissingColumnError("sales", required)
		}
	}
	return nil
}
