package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"adimpact/app"
	"adimpact/internal/config"
	"adimpact/internal/fixtures"
	"adimpact/internal/logging"
	"adimpact/internal/report"
	"adimpact/ui"

	"github.com/spf13/cobra"
)

func main() {
	if err := execute(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configFile string
		logLevel   string
		cfg        *config.Config
	)

	rootCmd := &cobra.Command{
		Use:           "adimpact",
		Short:         "Ad engagement impact report from Meta Ads and Shopify exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				loaded.Log.Level = logLevel
			}
			logging.Init(logging.Config{
				Level:  loaded.Log.Level,
				Pretty: loaded.Log.Pretty,
				Output: os.Stderr,
			})
			cfg = loaded
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./adimpact.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug|info|warn|error")

	current := func() *config.Config { return cfg }
	rootCmd.AddCommand(
		newReportCmd(current),
		newServeCmd(current),
		newGenerateCmd(),
	)
	return rootCmd
}

func newReportCmd(current func() *config.Config) *cobra.Command {
	var adsPath, salesPath, format, outPath string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the impact report from an ads export and a sales export",
		Long: `Join the Meta Ads export (CSV) with the Shopify sales export (XLSX or CSV)
on Ad name, score each engagement metric by its correlation with orders, rank
the top campaigns and summarise recurring campaign keywords.

Example: adimpact report --ads meta.csv --sales shopify.xlsx --format html --out report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := current()
			if format == "" {
				format = cfg.Report.Format
			}
			if err := config.ValidateFormat(format); err != nil {
				return err
			}

			r, err := app.NewReportService(cfg.Report).GenerateFromFiles(cmd.Context(), adsPath, salesPath)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", outPath, err)
				}
				defer f.Close()
				out = f
			}
			if err := report.Write(out, r, format); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			if outPath != "" {
				logging.Info().Str("path", outPath).Str("format", format).Msg("report written")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&adsPath, "ads", "", "Meta Ads export (.csv)")
	cmd.Flags().StringVar(&salesPath, "sales", "", "Shopify sales export (.xlsx or .csv)")
	cmd.Flags().StringVar(&format, "format", "", "output format: markdown|html|json (default from config)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("ads")
	_ = cmd.MarkFlagRequired("sales")
	return cmd
}

func newServeCmd(current func() *config.Config) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := current()
			if port != "" {
				cfg.Server.Port = port
			}

			server, err := ui.NewServer(cfg.Server, app.NewReportService(cfg.Report))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (default from config)")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var adsOut, salesOut string
	cfg := fixtures.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic ads export and matching sales export",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := fixtures.Generate(cfg)
			if err != nil {
				return fmt.Errorf("error generating dataset: %w", err)
			}

			if err := fixtures.WriteCSV(adsOut, ds.AdsHeaders, ds.AdsRows); err != nil {
				return fmt.Errorf("error writing %s: %w", adsOut, err)
			}
			if filepath.Ext(salesOut) == ".csv" {
				err = fixtures.WriteCSV(salesOut, ds.SalesHeaders, ds.SalesRows)
			} else {
				err = fixtures.WriteXLSX(salesOut, ds.SalesHeaders, ds.SalesRows)
			}
			if err != nil {
				return fmt.Errorf("error writing %s: %w", salesOut, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d rows) and %s (%d rows)\n",
				adsOut, len(ds.AdsRows), salesOut, len(ds.SalesRows))
			return nil
		},
	}

	cmd.Flags().StringVar(&adsOut, "ads-out", "meta_ads.csv", "ads export path")
	cmd.Flags().StringVar(&salesOut, "sales-out", "shopify_sales.xlsx", "sales export path")
	cmd.Flags().IntVar(&cfg.Campaigns, "campaigns", cfg.Campaigns, "number of campaigns")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "RNG seed (deterministic)")
	return cmd
}

func execute(ctx context.Context, args []string, stdout io.Writer) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	return cmd.ExecuteContext(ctx)
}
