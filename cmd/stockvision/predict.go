package main

import (
	"strings"

	"github.com/spf13/cobra"

	"StockVision/internal/collector"
	"StockVision/internal/model"
	"StockVision/internal/report"
)

func newPredictCmd(cfgPath *string) *cobra.Command {
	var (
		days      int
		modelName string
	)
	cmd := &cobra.Command{
		Use:   "predict SYMBOL",
		Short: "Train a model on the symbol's history and forecast future closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if modelName == "" {
				modelName = a.cfg.Forecast.Model
			}
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Forecast.Days
			}
			kind, err := model.ParseModelKind(modelName)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()
			res, err := a.predictor.Predict(ctx, args[0], kind, days)
			if err != nil {
				return err
			}
			report.WriteForecast(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&days, "days", "d", 30, "Days to forecast (1-365)")
	names := make([]string, len(model.Kinds))
	for i, k := range model.Kinds {
		names[i] = string(k)
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Model, defaults to forecast.model: "+strings.Join(names, ", "))
	return cmd
}

func newIndicatorsCmd(cfgPath *string) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "indicators SYMBOL",
		Short: "Show the latest technical indicators of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()
			s, err := a.predictor.Indicators(ctx, args[0])
			if err != nil {
				return err
			}
			report.WriteIndicators(cmd.OutOrStdout(), s, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&rows, "rows", "n", 10, "Number of most recent rows to show")
	return cmd
}

func newRunsCmd(cfgPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs SYMBOL",
		Short: "List recorded forecast runs of a symbol",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()

			sym, err := collector.NormalizeSymbol(args[0])
			if err != nil {
				return err
			}
			runs, err := a.predictor.Recorder.RecentRuns(sym, limit)
			if err != nil {
				return err
			}
			report.WriteRuns(cmd.OutOrStdout(), sym, runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum runs to list")
	return cmd
}
