package app

import (
	"context"
	"path/filepath"
	"time"

	"adimpact/adapters/coercer"
	"adimpact/adapters/excel"
	"adimpact/domain/campaign"
	"adimpact/domain/core"
	"adimpact/internal/config"
	apperrors "adimpact/internal/errors"
	"adimpact/internal/logging"
	"adimpact/internal/pipeline"
	"adimpact/internal/report"
)

// ReportService runs the impact pipeline over one pair of exports.
type ReportService struct {
	cfg     config.ReportConfig
	coercer *coercer.NumericCoercer
	now     func() time.Time
}

// ReportInput carries the two loaded tables and the names they came from.
type ReportInput struct {
	Engagement     *excel.Table
	Sales          *excel.Table
	EngagementName string
	SalesName      string
}

// NewReportService creates a report service
func NewReportService(cfg config.ReportConfig) *ReportService {
	coercion := coercer.DefaultCoercionConfig()
	coercion.Lenient = cfg.LenientNumbers

	return &ReportService{
		cfg:     cfg,
		coercer: coercer.NewNumericCoercer(coercion),
		now:     time.Now,
	}
}

// GenerateFromFiles reads both exports from disk and builds the report.
func (s *ReportService) GenerateFromFiles(ctx context.Context, adsPath, salesPath string) (*report.Report, error) {
	if _, err := excel.FileTypeFromName(adsPath); err != nil {
		return nil, apperrors.Wrapf(err, "ads export %s", adsPath)
	}
	if _, err := excel.FileTypeFromName(salesPath); err != nil {
		return nil, apperrors.Wrapf(err, "sales export %s", salesPath)
	}

	ads, err := excel.NewDataReader(adsPath).ReadData()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read ads export")
	}
	sales, err := excel.NewDataReader(salesPath).ReadData()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read sales export")
	}

	return s.Generate(ctx, ReportInput{
		Engagement:     ads,
		Sales:          sales,
		EngagementName: filepath.Base(adsPath),
		SalesName:      filepath.Base(salesPath),
	})
}

// Generate validates both tables, then prepares, joins, aggregates, scores
// and ranks them. Keyword analysis reads the raw sales table and never
// fails the run; a missing required column does.
func (s *ReportService) Generate(ctx context.Context, in ReportInput) (*report.Report, error) {
	if in.Engagement == nil || in.Sales == nil {
		return nil, apperrors.InvalidInput("both the ads export and the sales export are required")
	}

	runID := core.NewRunID()
	log := logging.With(runID.String())
	start := s.now()

	schema, err := campaign.ValidateEngagement(in.Engagement)
	if err != nil {
		return nil, apperrors.Wrap(err, "ads export is not usable")
	}
	if err := campaign.ValidateSales(in.Sales); err != nil {
		return nil, apperrors.Wrap(err, "sales export is not usable")
	}
	if len(schema.Missing) > 0 {
		log.Info().Strs("missing_metrics", metricNames(schema.Missing)).Msg("ads export lacks some engagement metrics")
	}

	keywords := pipeline.AnalyzeTokens(in.Sales, pipeline.TokenOptions{
		TopCampaigns: s.cfg.KeywordCampaigns,
		MaxKeywords:  s.cfg.MaxKeywords,
	}, s.coercer)
	if keywords.Status != pipeline.StatusKeywordsFound {
		log.Info().Str("status", string(keywords.Status)).Str("reason", keywords.Reason).Msg("keyword analysis produced no keywords")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	engagement := pipeline.PrepareEngagement(in.Engagement, schema, s.coercer)
	sales, err := pipeline.PrepareSales(in.Sales, s.coercer)
	if err != nil {
		return nil, apperrors.Wrap(err, "sales export is not usable")
	}
	log.Debug().Int("engagement_rows", len(engagement)).Int("sales_rows", len(sales)).Msg("tables prepared")

	joined, joinStats := pipeline.Join(sales, engagement)
	if joinStats.UnmatchedSalesCampaigns > 0 || joinStats.UnmatchedEngagementCampaigns > 0 {
		log.Info().
			Int("unmatched_sales", joinStats.UnmatchedSalesCampaigns).
			Int("unmatched_engagement", joinStats.UnmatchedEngagementCampaigns).
			Msg("campaigns dropped by join")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	campaigns := pipeline.Aggregate(joined, schema)
	impact := pipeline.ScoreImpact(campaigns, schema)
	if impact.Status != pipeline.ImpactScored {
		log.Warn().Str("status", string(impact.Status)).Int("campaigns", len(campaigns)).Msg("no impact scores computed")
	}
	top := pipeline.RankByOrders(campaigns, s.cfg.TopCampaigns)

	log.Info().
		Int("joined_rows", joinStats.JoinedRows).
		Int("campaigns", len(campaigns)).
		Int("scored_metrics", len(impact.Scores)).
		Dur("elapsed", s.now().Sub(start)).
		Msg("report generated")

	return &report.Report{
		RunID:        runID,
		GeneratedAt:  start,
		Sources:      report.Sources{Engagement: in.EngagementName, Sales: in.SalesName},
		Keywords:     keywords,
		Impact:       impact,
		TopCampaigns: top,
		TopLimit:     s.cfg.TopCampaigns,
		Diagnostics: report.Diagnostics{
			Join:             joinStats,
			Campaigns:        len(campaigns),
			AvailableMetrics: schema.Metrics,
			MissingMetrics:   schema.Missing,
		},
	}, nil
}

func metricNames(ms []campaign.Metric) []string {
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.String()
	}
	return names
}
