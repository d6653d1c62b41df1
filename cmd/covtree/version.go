package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/covtree/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of covtree",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "covtree %s\n", version.Version)
		},
	}
}
