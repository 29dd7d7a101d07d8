package main

import (
	"github.com/spf13/cobra"

	"github.com/iota-uz/consentia/pkg/subdomain"
)

type hostResolution struct {
	Host     string `json:"host"`
	Slug     string `json:"slug,omitempty"`
	IsTenant bool   `json:"isTenant"`
}

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host name utilities",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "resolve <host>",
		Short: "Print the tenant slug a host name selects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, ok := subdomain.Resolve(args[0])
			return writeJSON(cmd.OutOrStdout(), hostResolution{
				Host:     subdomain.Normalize(args[0]),
				Slug:     slug,
				IsTenant: ok,
			})
		},
	})
	return cmd
}
