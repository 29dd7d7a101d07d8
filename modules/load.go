package modules

import (
	"github.com/iota-uz/consentia/modules/tenancy"
	"github.com/iota-uz/consentia/pkg/application"
)

// BuiltInModules are registered by every entrypoint.
var BuiltInModules = []application.Module{
	tenancy.NewModule(nil),
}

// Seeds run in order by `consentctl seed` and at server start.
var Seeds = []application.SeedFunc{
	tenancy.SeedRoles,
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
