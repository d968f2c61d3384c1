package main

import (
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/app"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const _version = "(set at build time)"

func opts() fx.Option {
	return fx.Options(
		app.Module,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Invoke(func(logger *zap.SugaredLogger) {
			logger.Infow("Starting buildsync", "version", _version)
		}),
	)
}

func main() {
	fx.New(opts()).Run()
}
