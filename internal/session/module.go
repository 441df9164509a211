package session

import (
	"milkdesk/internal/config"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"session",
		fx.Provide(func(cfg config.Config) Session {
			return New(cfg.APIToken)
		}),
	)
}
