package logic

import (
	"github.com/google/wire"
)

// ProviderSet provides the orchestration layer.
var ProviderSet = wire.NewSet(
	NewSolutionLogic,
	NewParameterLogic,
	NewTagLogic,
	NewAPIKeyLogic,
)
