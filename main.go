package main

import (
	"fmt"
	"os"

	"launchpad/cmd"
)

func main() {
	c := cmd.RootCmd()
	c.AddCommand(cmd.ServeCmd())
	c.AddCommand(cmd.ReporterCmd())
	c.AddCommand(cmd.AdminCmd())

	if err := c.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "There was an error while executing Launchpad CLI '%s'\n", err)
		os.Exit(1)
	}
}
