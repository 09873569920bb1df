package milestone

import (
	"github.com/smallbiznis/onclick/internal/milestone/repository"
	"github.com/smallbiznis/onclick/internal/milestone/service"
	"go.uber.org/fx"
)

var Module = fx.Module("milestone.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
