package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JetBrains/jbrdiff/internal/buildinfo"
	"github.com/JetBrains/jbrdiff/internal/git"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// no config or logging needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "jbrdiff %s\n", buildinfo.String())
			gitVersion, err := git.GitVersion()
			if err != nil {
				fmt.Fprintf(w, "git: unavailable (%v)\n", err)
			} else {
				fmt.Fprintf(w, "%s\n", gitVersion)
			}
			_, err = fmt.Fprintf(w, "minimum git: %s\n", git.MinGitVersion())
			return err
		},
	}
}
