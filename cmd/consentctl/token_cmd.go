package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/iota-uz/consentia/modules/tenancy/domain/aggregates/user"
	"github.com/iota-uz/consentia/modules/tenancy/infrastructure/persistence"
	"github.com/iota-uz/consentia/pkg/token"
)

type issuedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    uuid.UUID `json:"userId"`
	TenantID  string    `json:"tenantId,omitempty"`
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Bearer token utilities",
	}

	var rawUser string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for a stored user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := uuid.Parse(rawUser)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("--user must be a uuid: %w", err))
			}
			e, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			u, err := persistence.NewUserRepository().GetByID(e.ctx, userID)
			if errors.Is(err, user.ErrNotFound) {
				return withCode(exitValidation, fmt.Errorf("user %s not found", userID))
			}
			if err != nil {
				return withCode(exitDB, err)
			}

			tenantID := uuid.Nil
			if u.TenantID() != nil {
				tenantID = *u.TenantID()
			}
			issuer := e.app.Service(token.Issuer{}).(*token.Issuer)
			raw, expiresAt, err := issuer.Issue(u.ID(), tenantID)
			if err != nil {
				return err
			}
			out := issuedToken{Token: raw, ExpiresAt: expiresAt, UserID: u.ID()}
			if tenantID != uuid.Nil {
				out.TenantID = tenantID.String()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	issue.Flags().StringVar(&rawUser, "user", "", "user id")
	_ = issue.MarkFlagRequired("user")
	cmd.AddCommand(issue)
	return cmd
}
