package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/driftline/cloudclient/pkg/client"
	"github.com/driftline/cloudclient/pkg/secrets"
)

func newQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <graphql>",
		Short: "Run a raw GraphQL query and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			c, err := client.New(settings)
			if err != nil {
				return err
			}

			res, err := c.GraphQL(cmd.Context(), args[0], nil)
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(res.Interface())
		},
	}
}

func newSecretCommand() *cobra.Command {
	secretCmd := &cobra.Command{
		Use:   "secret",
		Short: "Work with secrets",
	}

	secretCmd.AddCommand(&cobra.Command{
		Use:   "get <name>",
		Short: "Resolve a secret value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			resolver := secrets.NewResolver(settings, nil)
			value, ok, err := resolver.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("secret %q not found", args[0])
			}

			fmt.Println(value)
			return nil
		},
	})

	return secretCmd
}
