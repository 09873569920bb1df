package page

import (
	"github.com/smallbiznis/onclick/internal/page/repository"
	"github.com/smallbiznis/onclick/internal/page/service"
	"go.uber.org/fx"
)

var Module = fx.Module("page.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
