package main

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/resolver"
	"github.com/spf13/cobra"
)

func (a *app) resolveCmd() *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the rari executable for a project",
		Long: `Resolve applies settings, PATH, the download cache and finally a
network install, and prints the executable that would be launched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.writer()
			if err != nil {
				return err
			}
			root, err := projectRoot(projectDir)
			if err != nil {
				return err
			}

			logger := a.logger()
			r, err := a.newResolver(cmd.Context(), logger)
			if err != nil {
				return err
			}

			bin, err := r.Resolve(cmd.Context(), resolver.Project{Root: root})
			if err != nil {
				return fmt.Errorf("resolve rari: %w", err)
			}
			return out.Write(bin)
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", "", "Project directory (default: current directory)")
	return cmd
}
