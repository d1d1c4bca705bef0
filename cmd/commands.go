package cmd

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cobra"

	"ticketbari/config"
	"ticketbari/internal/auth"
	"ticketbari/internal/services"
)

// promoteAdminCmd bootstraps the first admin, e.g.
// ticketbari promote-admin owner@ticketbari.com
func promoteAdminCmd(app core.App, cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "promote-admin <email>",
		Short: "Give an existing account the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := openStore(ctx, app, cfg)
			if err != nil {
				return err
			}
			defer st.Close(ctx)

			user, err := services.NewUserService(st).PromoteAdmin(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", user.Email, user.Role)
			return nil
		},
	}
}

// tokenCmd issues a bearer token for local testing with AUTH_PROVIDER=jwt.
func tokenCmd(cfg *config.Config) *cobra.Command {
	var ttl = cfg.AccessTokenTTL

	c := &cobra.Command{
		Use:   "token <email>",
		Short: "Issue an access token signed with ACCESS_TOKEN_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.AuthProvider != config.AuthJWT {
				return fmt.Errorf("tokens can only be issued with AUTH_PROVIDER=%s", config.AuthJWT)
			}
			verifier, err := auth.NewHMACVerifier(cfg.AccessTokenSecret)
			if err != nil {
				return err
			}

			token, err := verifier.Issue(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	c.Flags().DurationVar(&ttl, "ttl", ttl, "token lifetime")
	return c
}
