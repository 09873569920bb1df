package paymentintent

import (
	"github.com/smallbiznis/onclick/internal/paymentintent/repository"
	"github.com/smallbiznis/onclick/internal/paymentintent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("paymentintent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
