package app

import (
	"context"
	"time"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/gateway"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/handler"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/clock"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/contribution"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/core"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/executor"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/jsonrpcfx"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/logfilewriter"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/serverinfofile"
	tally "github.com/uber-go/tally/v4"
	"go.uber.org/fx"
)

// Module defines the buildsync application module.
var Module = fx.Options(
	gateway.Module, // outbounds
	handler.Module, // inbounds
	jsonrpcfx.Module,
	fs.Module,
	executor.Module,
	clock.Module,
	contribution.Module,
	serverinfofile.Module,
	logfilewriter.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Prefix: "buildsync",
			Tags: map[string]string{
				"service": "buildsync",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Decorate(decorateEnvContext),
	fx.Decorate(decorateConfigProvider),
	fx.Provide(func() Context {
		return Context{
			Environment:        EnvLocal,
			RuntimeEnvironment: EnvLocal,
		}
	}),
)
