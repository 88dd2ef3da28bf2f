package repo

import (
	"github.com/google/wire"
)

// ProviderSet provides the repository layer.
var ProviderSet = wire.NewSet(
	NewRepositories,
	wire.FieldsOf(new(*Repositories), "Solution", "Parameter", "Tag", "APIKey"),
)
