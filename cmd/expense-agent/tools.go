package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newToolsCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List the tools the agent can call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if output != "text" && output != "yaml" {
				return fmt.Errorf("unsupported --output %q (text or yaml)", output)
			}
			logger, err := newLogger(os.Stderr, root.logLevel)
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), logger, root.configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			return renderTools(cmd.OutOrStdout(), output, a.tools.List())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format: text or yaml")
	return cmd
}
