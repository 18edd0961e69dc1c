package cli

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/driftline/cloudclient/pkg/config"
)

// NewRootCommand creates the root cobra command
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "driftctl",
		Short:         "CLI for the Driftline orchestration service",
		Long:          `A command line interface for authenticating against and querying the Driftline orchestration API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := godotenv.Load(); err != nil {
				log.Println(".env file not loaded:", err)
			}
		},
	}

	rootCmd.AddCommand(newLoginCommand())
	rootCmd.AddCommand(newLogoutCommand())
	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newSecretCommand())

	return rootCmd
}

// loadSettings reads the settings file with environment expansion.
func loadSettings() (*config.Settings, error) {
	return config.LoadDefault()
}
