package internal

import (
	"context"

	"milkdesk/internal/api"
	"milkdesk/internal/cli"
	"milkdesk/internal/config"
	"milkdesk/internal/logging"
	"milkdesk/internal/metrics"
	"milkdesk/internal/session"

	"github.com/go-core-fx/logger"
	"go.uber.org/fx"
)

func Run() error {
	var runner *cli.Runner

	app := fx.New(
		logger.Module(),
		logger.WithFxDefaultLogger(),
		config.Module(),
		logging.Module(),
		metrics.Module(),
		session.Module(),
		api.Module(),
		cli.Module(),
		fx.Populate(&runner),
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = app.Stop(ctx)
	}()

	return runner.Execute()
}
