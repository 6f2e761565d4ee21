package main

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/mdnls/internal/command"
	"github.com/ZebulonRouseFrantzich/mdnls/internal/resolver"
	"github.com/spf13/cobra"
)

func (a *app) commandCmd() *cobra.Command {
	var projectDir string

	cmd := &cobra.Command{
		Use:   "command",
		Short: "Print the language-server launch command for a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.writer()
			if err != nil {
				return err
			}
			root, err := projectRoot(projectDir)
			if err != nil {
				return err
			}

			r, err := a.newResolver(cmd.Context(), a.logger())
			if err != nil {
				return err
			}

			bin, err := r.Resolve(cmd.Context(), resolver.Project{Root: root})
			if err != nil {
				return fmt.Errorf("resolve rari: %w", err)
			}
			return out.Write(command.Build(bin, root))
		},
	}

	cmd.Flags().StringVarP(&projectDir, "project", "p", "", "Project directory (default: current directory)")
	return cmd
}
