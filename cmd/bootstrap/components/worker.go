package components

import (
	"context"
	"log/slog"

	"rentpay/internal/pkg/clock"
	"rentpay/internal/pkg/config"
	"rentpay/internal/usecase/commands"
	"rentpay/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewHoldRunner,
	),
	fx.Invoke(startHoldRunner),
)

func NewHoldRunner(
	jobRepo commands.ScheduledJobRepository,
	holds commands.HoldCommands,
	clk clock.Clock,
	cfg config.Config,
	logger *slog.Logger,
) *worker.HoldRunner {
	return worker.NewHoldRunner(jobRepo, holds, clk, cfg.Worker.Interval, cfg.Worker.BatchSize, logger)
}

func startHoldRunner(lc fx.Lifecycle, runner *worker.HoldRunner) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go runner.Start(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
