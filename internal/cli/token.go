package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengzang/retention-backend-go/internal/middleware"
)

type TokenCmd struct{}

func NewTokenCmd() *TokenCmd {
	return &TokenCmd{}
}

func (c *TokenCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin bearer token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, err := cmd.Flags().GetString("subject")
			if err != nil {
				return fmt.Errorf("failed to get subject flag: %w", err)
			}
			ttl, err := cmd.Flags().GetDuration("ttl")
			if err != nil {
				return fmt.Errorf("failed to get ttl flag: %w", err)
			}

			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DefaultSecret() {
				log.Warn("JWT_SECRET is not set, signing with the built-in default")
			}

			token, err := middleware.IssueToken([]byte(cfg.JWTSecret), subject, ttl, time.Now())
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().String("subject", "admin", "token subject")
	cmd.Flags().Duration("ttl", time.Hour, "token lifetime")
	return cmd
}
