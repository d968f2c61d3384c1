package handler

import (
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/autosync"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer"
	handler "github.com/eclipse-buildship/buildship-sub001/src/buildsync/handler/buildsync"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/repository"
	"go.uber.org/fx"
)

// Module provides the buildsync server into an Fx application.
var Module = fx.Options(
	controller.Module,
	repository.Module,
	handler.Module,
	fx.Invoke(outputStorageInfo),
	fx.Invoke(func(synchronizer.Controller) {}),
	fx.Invoke(func(autosync.Controller) {}),
)
