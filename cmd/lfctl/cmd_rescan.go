package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
	"lostfound/internal/matching"
)

var rescanType string

var rescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Re-run keyword matching for active reports",
	Long: `Re-run the matching pass for every active report of one type and write
candidate notifications for the pairs found. Pairs that were already notified
get a second pair of notifications. Real-time push is skipped.`,
	RunE: runRescan,
}

func init() {
	rescanCmd.Flags().StringVar(&rescanType, "type", "lost", "Report type to scan from (lost or found)")
}

func runRescan(cmd *cobra.Command, _ []string) error {
	t := report.Type(rescanType)
	if !t.Valid() {
		return fmt.Errorf("--type must be lost or found, got %q", rescanType)
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	engine := matching.NewEngine(matching.Deps{
		Reports:       report.NewRepository(e.db),
		Notifications: notification.NewRepository(e.db),
		Users:         user.NewRepository(e.db),
	}, matching.Options{MinTokenLength: e.cfg.MatchMinTokenLength}, e.log)

	pairs, err := engine.Rescan(cmd.Context(), t)
	engine.Wait()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "rescan complete: %d notification pairs written\n", pairs)
	return nil
}
