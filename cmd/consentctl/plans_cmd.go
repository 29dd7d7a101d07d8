package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/iota-uz/consentia/modules/tenancy/domain/entities/plan"
	"github.com/iota-uz/consentia/modules/tenancy/services"
	"github.com/iota-uz/consentia/pkg/serrors"
)

func newPlansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect and edit the plan catalogue",
	}
	cmd.AddCommand(newPlansListCmd(), newPlansUpdateCmd())
	return cmd
}

func newPlansListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every plan as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			plans := e.app.Service(services.PlanService{}).(*services.PlanService)
			return writeJSON(cmd.OutOrStdout(), plans.List(e.ctx))
		},
	}
}

func newPlansUpdateCmd() *cobra.Command {
	var patch string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Apply a JSON merge patch to a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if patch == "" {
				return withCode(exitUsage, errors.New("--patch is required"))
			}
			e, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.Close()

			plans := e.app.Service(services.PlanService{}).(*services.PlanService)
			updated, err := plans.UpdatePlan(e.ctx, plan.ID(args[0]), []byte(patch))
			if errors.Is(err, serrors.ErrValidationFailed) || errors.Is(err, serrors.ErrNotFound) {
				return withCode(exitValidation, err)
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), updated)
		},
	}
	cmd.Flags().StringVar(&patch, "patch", "", `merge patch, e.g. '{"limits":{"users":10}}'`)
	return cmd
}
