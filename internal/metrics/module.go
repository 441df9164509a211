package metrics

import (
	"context"

	"milkdesk/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func Module() fx.Option {
	return fx.Module(
		"metrics",
		fx.Provide(New),
		fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, recorder *Recorder, logger *zap.Logger) {
			if cfg.MetricsFile == "" {
				return
			}
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
						logger.Warn("metrics textfile not written", zap.String("path", cfg.MetricsFile), zap.Error(err))
						return err
					}
					return nil
				},
			})
		}),
	)
}
