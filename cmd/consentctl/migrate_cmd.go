package main

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}
	cmd.AddCommand(
		migrateStep("up", "Apply pending migrations", func(e *env) error { return e.app.Migrations().Up(e.ctx) }),
		migrateStep("down", "Roll back the latest migration", func(e *env) error { return e.app.Migrations().Down(e.ctx) }),
		migrateStep("status", "Print migration status", func(e *env) error { return e.app.Migrations().Status(e.ctx) }),
	)
	return cmd
}

func migrateStep(use, short string, run func(e *env) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()
			return withCode(exitDB, run(e))
		},
	}
}
