package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/schematic-core/internal/auth"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
)

func newTokenCmd(configPath func() string) *cobra.Command {
	var (
		subject string
		role    string
		ttl     int
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an API access token signed with the configured secret",
		Long: `Mint a bearer token for the editing API. The token is signed with
security.jwt.secret from the configuration (or SCHEMATIC_JWT_SECRET).

Roles: viewer (read only), editor (edit and save), admin (also rename and
delete projects and read the audit log).

Examples:
  schematic token --subject bench --role editor
  schematic token --subject dashboard --role viewer --ttl 1440`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.Security.JWT.AccessTokenTTL
			}
			token, err := auth.GenerateAccessToken(subject, auth.Role(role), cfg.Security.JWT.Secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&subject, "subject", "s", "", "token subject (required)")
	cmd.Flags().StringVarP(&role, "role", "r", string(auth.RoleEditor), "viewer, editor or admin")
	cmd.Flags().IntVar(&ttl, "ttl", 0, "lifetime in minutes (default security.jwt.access_token_ttl)")
	//nolint:errcheck // flag is defined above
	cmd.MarkFlagRequired("subject")
	return cmd
}
