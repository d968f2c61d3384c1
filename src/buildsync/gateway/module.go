package gateway

import (
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/gateway/gradle"
	"go.uber.org/fx"
)

// Module provides the outbound clients.
var Module = fx.Options(
	gradle.Module,
)
