package platform

import (
	"github.com/smallbiznis/onclick/internal/platform/repository"
	"github.com/smallbiznis/onclick/internal/platform/service"
	"go.uber.org/fx"
)

var Module = fx.Module("platform.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewTreasury),
	fx.Provide(service.New),
)
