package controller

import (
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/autosync"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/controller/synchronizer"
	"go.uber.org/fx"
)

var Module = fx.Options(
	synchronizer.Module,
	autosync.Module,
)
