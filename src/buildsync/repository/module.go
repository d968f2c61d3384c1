package repository

import (
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/contribution"
	buildconfig "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/build-config"
	persistentmodel "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/persistent-model"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/workspace"
	workspaceconfig "github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository/workspace-config"
	"go.uber.org/fx"
)

// Module provides the stores of the service.
var Module = fx.Options(
	persistentmodel.Module,
	workspace.Module,
	buildconfig.Module,
	workspaceconfig.Module,
	fx.Provide(func(r workspace.Repository) contribution.NatureStore { return r }),
)
