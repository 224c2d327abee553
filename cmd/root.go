package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "launchpad",
		Short: "Solana token launchpad directory",
		Long:  `Launchpad lists Solana token projects, moderates them and tracks their market metrics`,
		// Default behavior is to show help
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path of the configuration file")

	return rootCmd
}
