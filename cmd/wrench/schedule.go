package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	wrenchcli "github.com/wrenchdag/wrench/internal/cli"
	"github.com/wrenchdag/wrench/internal/config"
	"github.com/wrenchdag/wrench/internal/configwatch"
	"github.com/wrenchdag/wrench/internal/metrics"
	"github.com/wrenchdag/wrench/internal/scheduler"
	werrors "github.com/wrenchdag/wrench/pkg/errors"
	"github.com/wrenchdag/wrench/pkg/engine"
	"github.com/wrenchdag/wrench/pkg/runner"
	"github.com/wrenchdag/wrench/pkg/store"
)

func newScheduleCommand() *cobra.Command {
	var metricsAddr string
	var watch bool

	cmd := &cobra.Command{
		Use:   "schedule <config.yaml>",
		Short: "Start the config's schedule and block until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			registry := wrenchcli.NewRegistry()

			var rec *metrics.Recorder
			if metricsAddr != "" {
				var err error
				rec, err = metrics.NewRecorder()
				if err != nil {
					return fmt.Errorf("initializing metrics: %w", err)
				}
				srv := &http.Server{Addr: metricsAddr, Handler: rec.Handler()}
				go func() { _ = srv.ListenAndServe() }()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var s store.Store
			var cw *configwatch.Watcher
			if watch {
				var err error
				cw, err = configwatch.New(path, 0, slog.Default())
				if err != nil {
					return fmt.Errorf("starting config watcher: %w", err)
				}
				cw.Start(ctx)
				defer cw.Stop()
			}

			for {
				cfg, graph, err := config.Load(path, registry)
				if err != nil {
					return err
				}
				if cfg.Schedule == nil {
					return &werrors.DefinitionError{Message: "config has no schedule block"}
				}

				if s == nil {
					s, err = wrenchcli.BuildStore(cfg.Store)
					if err != nil {
						return err
					}
				}

				var opts []engine.Option
				if rec != nil {
					opts = append(opts, engine.WithMetrics(rec))
				}
				r := runner.New(cfg.Name, graph, s, opts...)

				trig, err := buildTrigger(*cfg.Schedule, r)
				if err != nil {
					return err
				}

				runCtx, cancelRun := context.WithCancel(ctx)
				if err := trig.Start(runCtx); err != nil {
					cancelRun()
					return err
				}

				if cw == nil {
					<-ctx.Done()
					trig.Shutdown()
					cancelRun()
					return nil
				}

				select {
				case <-ctx.Done():
					trig.Shutdown()
					cancelRun()
					return nil
				case <-cw.Changes():
					slog.Default().Info("config changed, reloading schedule", slog.String("path", path))
					trig.Shutdown()
					cancelRun()
				}
			}
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the schedule whenever the config file changes")
	return cmd
}

func buildTrigger(sc config.ScheduleConfig, r *runner.Runner) (scheduler.Trigger, error) {
	run := func(ctx context.Context, triggeredBy string) error {
		_, err := r.Run(ctx, triggeredBy, nil)
		return err
	}

	switch {
	case sc.Interval != nil && sc.Cron != nil:
		return nil, &werrors.DefinitionError{Message: "schedule: interval and cron are mutually exclusive"}
	case sc.Interval != nil:
		return scheduler.NewIntervalTrigger(scheduler.IntervalSpec{
			Weeks:    sc.Interval.Weeks,
			Days:     sc.Interval.Days,
			Hours:    sc.Interval.Hours,
			Minutes:  sc.Interval.Minutes,
			Seconds:  sc.Interval.Seconds,
			Duration: sc.Interval.Duration,
		}, run, nil)
	case sc.Cron != nil:
		spec := scheduler.CronSpec{Expr: sc.Cron.Expr}
		if sc.Cron.Fields != nil {
			spec.Fields = &scheduler.CronFields{
				Year:      sc.Cron.Fields.Year,
				Month:     sc.Cron.Fields.Month,
				Day:       sc.Cron.Fields.Day,
				Week:      sc.Cron.Fields.Week,
				DayOfWeek: sc.Cron.Fields.DayOfWeek,
				Hour:      sc.Cron.Fields.Hour,
				Minute:    sc.Cron.Fields.Minute,
				Second:    sc.Cron.Fields.Second,
			}
		}
		return scheduler.NewCronTrigger(spec, run, nil)
	default:
		return nil, &werrors.DefinitionError{Message: "schedule: one of interval or cron is required"}
	}
}
