package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"launchpad/internal/config"
	"launchpad/internal/models"
)

// AdminCmd groups the admin provisioning subcommands
func AdminCmd() *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin wallets",
	}
	adminCmd.AddCommand(grantCmd())
	return adminCmd
}

func grantCmd() *cobra.Command {
	var wallet, role string
	grant := &cobra.Command{
		Use:     "grant",
		Short:   "Grant a wallet an admin role",
		Long:    `Provisions a wallet as ADMIN, SUPER_ADMIN or REPORTER, replacing any role it already had`,
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Storage() == config.StorageMemory {
				return fmt.Errorf("admin grants need persistent storage, set storage to %q", config.StoragePostgres)
			}
			logger, err := newLogger()
			if err != nil {
				return err
			}
			rt, err := openCatalog(logger)
			if err != nil {
				return fmt.Errorf("failed to open storage: %w", err)
			}
			defer rt.Close()

			admin, err := rt.svc.GrantAdmin(cmd.Context(), wallet, models.Role(strings.ToUpper(role)))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted %s to %s (admin id %s)\n", admin.Role, admin.WalletAddress, admin.ID)
			return nil
		},
	}
	grant.Flags().StringVar(&wallet, "wallet", "", "Wallet address to provision")
	grant.Flags().StringVar(&role, "role", string(models.RoleAdmin), "Role to grant: ADMIN, SUPER_ADMIN or REPORTER")
	_ = grant.MarkFlagRequired("wallet")
	return grant
}
