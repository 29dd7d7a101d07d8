package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/consentia/modules/tenancy/services"
)

func newTenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenants",
		Short: "Tenant maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "expire-trials",
		Short: "Move trial tenants whose trial has ended to expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			tenants := e.app.Service(services.TenantService{}).(*services.TenantService)
			n, err := tenants.ExpireTrials(e.ctx)
			if err != nil {
				return withCode(exitDB, err)
			}
			return writeJSON(cmd.OutOrStdout(), map[string]int{"expired": n})
		},
	})
	return cmd
}
