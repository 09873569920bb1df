package engine

import (
	"github.com/smallbiznis/onclick/internal/host"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("engine",
	fx.Provide(New),
	fx.Provide(func() host.Hasher { return host.Keccak256{} }),
	fx.Provide(func(log *zap.Logger) host.Transferer { return host.NewLogTransferer(log) }),
)
