package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/consentia/modules"
	"github.com/iota-uz/consentia/pkg/application"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default roles that are missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			seeder := application.NewSeeder(e.logger)
			seeder.Register(modules.Seeds...)
			return withCode(exitDB, seeder.Seed(e.ctx, e.app))
		},
	}
}
