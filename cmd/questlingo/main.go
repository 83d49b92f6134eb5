// Package main provides the questlingo command: the API server, the
// write-back worker and maintenance commands.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// @title QuestLingo API
// @version 1.0
// @description Gamified language learning: lessons, sessions, XP, levels and streaks
// @termsOfService http://swagger.io/terms/

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "questlingo",
		Short:         "QuestLingo language learning backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWorkerCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newTokenCmd())

	return rootCmd
}
