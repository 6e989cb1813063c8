package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"StockVision/internal/api"
	"StockVision/internal/metrics"
	"StockVision/internal/notifier"
	"StockVision/internal/scheduler"
)

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler, the Telegram bot and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := newApp(*cfgPath)
			if err != nil {
				return err
			}
			defer a.Close()
			metrics.Register()

			ctx, cancel := signalContext()
			defer cancel()

			kind, err := a.cfg.ModelKind()
			if err != nil {
				return err
			}
			tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy, a.log)
			sched := scheduler.NewScheduler(ctx, a.predictor, tn, scheduler.Defaults{
				Symbols: a.cfg.Forecast.Symbols,
				Days:    a.cfg.Forecast.Days,
				Model:   kind,
			}, a.log)
			if err := sched.RegisterAll(a.cfg.Schedule.ForecastCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("RUN_ON_START") == "true" {
				a.log.Info().Msg("RUN_ON_START enabled, executing forecast task now")
				go sched.RunForecastNow()
			}

			srv := api.NewServer(a.cfg.API.Addr, a.predictor, a.log)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return srv.ListenAndServe(gctx) })
			g.Go(func() error {
				tn.StartPolling(gctx, sched.HandleCommand)
				return nil
			})

			a.log.Info().Msg("StockVision is running. Press Ctrl+C to stop.")
			err = g.Wait()
			a.log.Info().Msg("StockVision stopped")
			return err
		},
	}
}
