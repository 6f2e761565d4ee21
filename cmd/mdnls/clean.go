package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) cleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove downloaded releases other than the latest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.writer()
			if err != nil {
				return err
			}

			r, err := a.newResolver(cmd.Context(), a.logger())
			if err != nil {
				return err
			}

			report, err := r.Clean(cmd.Context())
			if err != nil {
				return fmt.Errorf("clean: %w", err)
			}
			return out.Write(report)
		},
	}
}
