package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lostfound/internal/domain/notification"
)

var pruneCmd = &cobra.Command{
	Use:   "prune-orphans",
	Short: "Delete notifications whose reports no longer exist",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.close()

		n, err := notification.NewRepository(e.db).DeleteOrphans(cmd.Context())
		if err != nil {
			return fmt.Errorf("prune orphans: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d orphaned notifications\n", n)
		return nil
	},
}
