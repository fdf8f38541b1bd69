// Package fixtures generates a synthetic Meta Ads export and a matching
// Shopify sales export with a planted engagement signal.
package fixtures

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"adimpact/domain/campaign"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/xuri/excelize/v2"
)

// Dataset is a generated pair of exports, already formatted as strings.
type Dataset struct {
	AdsHeaders   []string
	AdsRows      [][]string
	SalesHeaders []string
	SalesRows    [][]string

	// Campaigns lists every generated identifier; Themes the recurring
	// words planted in them.
	Campaigns []string
	Themes    []string
}

type Config struct {
	Campaigns int
	Seed      uint64

	// AdSetsPerCampaign bounds how many engagement rows share one Ad name.
	AdSetsPerCampaign int

	// UnmatchedShare is the fraction of campaigns that appear on only one
	// side of the join.
	UnmatchedShare float64
}

func DefaultConfig() Config {
	return Config{
		Campaigns:         80,
		Seed:              42,
		AdSetsPerCampaign: 3,
		UnmatchedShare:    0.1,
	}
}

// AdsHeaders is the column layout of the generated Meta export.
var AdsHeaders = []string{
	campaign.ColumnAdName,
	campaign.ColumnVideoPlayTime,
	campaign.ColumnAmountSpent,
	string(campaign.MetricFrequency),
	string(campaign.MetricCPC),
	string(campaign.MetricCTR),
	string(campaign.MetricPlays25Pct),
	string(campaign.MetricPlays50),
	string(campaign.MetricPlays100),
	string(campaign.MetricThruPlays),
}

// SalesHeaders is the column layout of the generated Shopify export.
var SalesHeaders = []string{
	campaign.ColumnUTMCampaign,
	campaign.ColumnOrders,
	campaign.ColumnTotalSales,
}

// Generate builds both exports. CTR drives orders, frequency works against
// them and the video metrics are noise.
func Generate(cfg Config) (*Dataset, error) {
	if cfg.Campaigns <= 0 {
		return nil, fmt.Errorf("campaigns must be > 0")
	}
	if cfg.AdSetsPerCampaign <= 0 {
		return nil, fmt.Errorf("ad sets per campaign must be > 0")
	}
	if cfg.UnmatchedShare < 0 || cfg.UnmatchedShare >= 1 {
		return nil, fmt.Errorf("unmatched share must be in [0, 1)")
	}

	faker := gofakeit.New(cfg.Seed)
	themes := pickThemes(faker, 6)

	ds := &Dataset{
		AdsHeaders:   AdsHeaders,
		SalesHeaders: SalesHeaders,
		Themes:       themes,
	}

	seen := make(map[string]bool)
	for len(ds.Campaigns) < cfg.Campaigns {
		word := slug(faker.Word())
		if word == "" {
			continue
		}
		name := fmt.Sprintf("%s_%s_%d", themes[faker.IntRange(0, len(themes)-1)], word, faker.IntRange(1, 99))
		if seen[name] {
			continue
		}
		seen[name] = true
		ds.Campaigns = append(ds.Campaigns, name)
	}

	for _, name := range ds.Campaigns {
		side := faker.Float64Range(0, 1)
		adsOnly := side < cfg.UnmatchedShare/2
		salesOnly := !adsOnly && side < cfg.UnmatchedShare

		ctr := faker.Float64Range(0.4, 4.5)
		frequency := faker.Float64Range(1, 6)
		spend := faker.Price(0, 900)

		if !salesOnly {
			sets := faker.IntRange(1, cfg.AdSetsPerCampaign)
			for i := 0; i < sets; i++ {
				ds.AdsRows = append(ds.AdsRows, adsRow(faker, name, ctr, frequency, spend/float64(sets)))
			}
		}

		if !adsOnly {
			orders := math.Max(0, math.Round(ctr*22-frequency*3+faker.Float64Range(-6, 6)))
			revenue := orders * faker.Price(18, 65)
			ds.SalesRows = append(ds.SalesRows, []string{
				name,
				strconv.Itoa(int(orders)),
				fToStr(revenue, 2),
			})
		}
	}

	return ds, nil
}

func adsRow(faker *gofakeit.Faker, name string, ctr, frequency, spend float64) []string {
	plays := faker.IntRange(200, 20000)
	p50 := int(float64(plays) * faker.Float64Range(0.3, 0.6))
	p100 := int(float64(p50) * faker.Float64Range(0.2, 0.5))

	seconds := faker.IntRange(2, 45)
	clicks := math.Max(1, float64(plays)*ctr/100)

	return []string{
		name,
		fmt.Sprintf("%d:%02d:%02d", seconds/3600, seconds/60%60, seconds%60),
		fToStr(spend, 2),
		fToStr(frequency+faker.Float64Range(-0.2, 0.2), 2),
		fToStr(spend/clicks, 2),
		fToStr(ctr+faker.Float64Range(-0.15, 0.15), 4),
		fToStr(faker.Float64Range(40, 90), 2),
		strconv.Itoa(p50),
		strconv.Itoa(p100),
		strconv.Itoa(faker.IntRange(p100, p50)),
	}
}

// pickThemes draws n distinct alphabetic theme words.
func pickThemes(faker *gofakeit.Faker, n int) []string {
	themes := make([]string, 0, n)
	seen := make(map[string]bool)
	for len(themes) < n {
		w := slug(faker.ProductCategory())
		if i := strings.IndexByte(w, '_'); i > 0 {
			w = w[:i]
		}
		if w == "" || seen[w] {
			w = slug(faker.Word())
		}
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		themes = append(themes, w)
	}
	return themes
}

// slug lowercases s and keeps letters only, joining words with underscores.
func slug(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	return strings.Join(fields, "_")
}

func WriteCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteXLSX writes a single-sheet workbook. Numeric cells are stored as
// numbers so the export looks like one downloaded from Shopify.
func WriteXLSX(path string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var value interface{} = v
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				value = n
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func fToStr(x float64, decimals int) string {
	p := math.Pow10(decimals)
	x = math.Round(x*p) / p
	return strconv.FormatFloat(x, 'f', decimals, 64)
}
