package index

import "go.uber.org/fx"

var Module = fx.Module("index",
	fx.Provide(Provide),
)
