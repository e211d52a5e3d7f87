package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"StockPulse/internal/di"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	"StockPulse/pkg/config"
)

type loader func() (*config.Config, error)

func newServeCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the refresh scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			app, cleanup, err := di.InitializeApp(cfg)
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Run(cmd.Context())
		},
	}
}

func newPlanCmd() *cobra.Command {
	var symbol, rangeLabel, interval string
	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Print the fetch plan for a symbol without calling the provider",
		Example: "  stockpulse plan --symbol AAPL --range 1M --interval 15m",
		RunE: func(cmd *cobra.Command, _ []string) error {
			plan := usecase.PlanFetch(symbol, rangeLabel, interval, time.Now().UTC())
			return printJSON(cmd, plan)
		},
	}
	addSeriesFlags(cmd, &symbol, &rangeLabel, &interval)
	return cmd
}

func newFetchCmd(load loader) *cobra.Command {
	var symbol, rangeLabel, interval string
	cmd := &cobra.Command{
		Use:     "fetch",
		Short:   "Fetch and normalize a series from the configured provider",
		Example: "  stockpulse fetch --symbol MSFT --range 5D",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			logger, err := di.ProvideLogger(cfg)
			if err != nil {
				return err
			}

			// alerts are not persisted from the command line
			mem := pkgcache.NewMemoryCache()
			defer mem.Close()
			alerts := internalrepo.NewAlertStore(internalrepo.NewCacheKV(mem, "cli"), logger)

			series := usecase.NewSeriesService(di.ProvideSeriesProvider(cfg, logger), alerts, logger)
			q, err := series.BuildQuery(usecase.SeriesInput{Symbol: symbol, Range: rangeLabel, Interval: interval})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Provider.Timeout+5*time.Second)
			defer cancel()
			res, err := series.Fetch(ctx, q)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
	addSeriesFlags(cmd, &symbol, &rangeLabel, &interval)
	return cmd
}

func addSeriesFlags(cmd *cobra.Command, symbol, rangeLabel, interval *string) {
	cmd.Flags().StringVarP(symbol, "symbol", "s", "", "ticker symbol")
	cmd.Flags().StringVarP(rangeLabel, "range", "r", "1M", "range label (1D, 5D, 1M, 6M, 1Y, 5Y)")
	cmd.Flags().StringVarP(interval, "interval", "i", "", "interval label, defaults by range")
	_ = cmd.MarkFlagRequired("symbol")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
