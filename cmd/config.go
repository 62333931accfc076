package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JetBrains/jbrdiff/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			path := a.configPath
			if path == "" {
				if p, err := config.DefaultPath(); err == nil {
					path = p
				}
			}
			if path != "" {
				fmt.Fprintf(w, "# %s\n", path)
			}
			return a.cfg.Write(w)
		},
	}
}
