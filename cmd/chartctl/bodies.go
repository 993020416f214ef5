package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simaogato/bioastro-backend/internal/domain"
)

func newBodiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bodies",
		Short: "List the tracked body catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, b := range domain.DefaultCatalogue {
				retro := "direct only"
				if b.IsRetrogradeCapable {
					retro = "retrograde capable"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-11s %-11s %-8s %s\n", b.Slug, b.Name, b.Type, retro)
			}
			return nil
		},
	}
}
