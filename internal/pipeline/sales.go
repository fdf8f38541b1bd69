package pipeline

import (
	"adimpact/adapters/coercer"
	"adimpact/adapters/excel"
	"adimpact/domain/campaign"
)

// PrepareSales maps raw sales rows onto the shared vocabulary: the UTM
// campaign becomes the Ad name and Total sales becomes Shopify Revenue.
// A table without the campaign, Orders or Total sales column is rejected.
func PrepareSales(t *excel.Table, c *coercer.NumericCoercer) ([]campaign.SalesRecord, error) {
	if err := campaign.ValidateSales(t); err != nil {
		return nil, err
	}

	records := make([]campaign.SalesRecord, 0, t.Len())
	for i := range t.Rows {
		adName, _ := t.Value(i, campaign.ColumnUTMCampaign)
		orders, hasOrders := t.Value(i, campaign.ColumnOrders)
		revenue, hasRevenue := t.Value(i, campaign.ColumnTotalSales)

		records = append(records, campaign.SalesRecord{
			AdName:  adName,
			Orders:  c.CoerceCell(orders, hasOrders),
			Revenue: c.CoerceCell(revenue, hasRevenue),
		})
	}

	return records, nil
}
