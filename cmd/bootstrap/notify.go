package bootstrap

import (
	"context"
	"log/slog"

	"rentpay/internal/notify"
	"rentpay/internal/pkg/config"
	"rentpay/internal/usecase/commands"

	"go.uber.org/fx"
)

var NotifyModule = fx.Module("notify",
	fx.Provide(
		NewDispatcher,
	),
)

// NewDispatcher wires the Kafka event dispatcher, or a no-op one when the
// broker is disabled. Events are advisory; the service runs fine without them.
func NewDispatcher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) (commands.Dispatcher, error) {
	if !cfg.Kafka.Enabled {
		logger.Info("kafka disabled, booking events will not be published")
		return notify.NewNoopDispatcher(), nil
	}

	producer, err := notify.NewProducer(cfg.Kafka.Brokers, nil)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})

	return notify.NewKafkaDispatcher(producer), nil
}
