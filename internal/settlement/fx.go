package settlement

import (
	"github.com/smallbiznis/onclick/internal/settlement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settlement.service",
	fx.Provide(service.NewSettler),
	fx.Provide(service.New),
)
