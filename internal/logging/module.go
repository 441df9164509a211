package logging

import (
	"context"

	"milkdesk/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is not an fx.Module: the decorated logger must reach every other module.
// The sink stays suspended until the command line has settled its path and level.
func Module() fx.Option {
	return fx.Options(
		fx.Provide(func(cfg config.Config) *FileSink {
			sink := NewFileSink(cfg.LogFile, cfg.Debug)
			sink.Suspend()
			return sink
		}),
		fx.Decorate(func(base *zap.Logger, sink *FileSink) *zap.Logger {
			return sink.Attach(base)
		}),
		fx.Invoke(func(lc fx.Lifecycle, sink *FileSink) {
			lc.Append(fx.Hook{
				OnStop: func(_ context.Context) error {
					return sink.Close()
				},
			})
		}),
	)
}
