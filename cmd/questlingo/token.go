package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/questlingo/backend/internal/config"
	"github.com/questlingo/backend/internal/middleware"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign an access token for local development",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET is required")
			}
			if userID == "" {
				return errors.New("--user is required")
			}

			token, err := middleware.NewTokenVerifier(cfg.JWT.Secret).Issue(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
