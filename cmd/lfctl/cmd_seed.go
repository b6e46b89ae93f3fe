package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lostfound/internal/domain/notification"
	"lostfound/internal/domain/report"
	"lostfound/internal/domain/user"
	"lostfound/internal/matching"
	"lostfound/internal/pkg/jwt"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo users and reports",
	Long: `Insert a demo admin, three students and a handful of lost and found
reports. Reports go through the normal create path, so the matching pass
writes candidate notifications exactly as it would for real traffic.

Demo accounts:
  admin@campus.local / admin123
  aisha@campus.local, daniyar@campus.local, mira@campus.local / student123`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Delete all notifications, reports and users first")
}

type seedUser struct {
	name  string
	email string
	phone string
}

type seedReport struct {
	owner       int
	typ         report.Type
	name        string
	description string
	location    string
	contact     string
}

var demoStudents = []seedUser{
	{name: "Aisha", email: "aisha@campus.local", phone: "+7 777 123 4567"},
	{name: "Daniyar", email: "daniyar@campus.local", phone: "+7 777 123 4568"},
	{name: "Mira", email: "mira@campus.local"},
}

var demoReports = []seedReport{
	{owner: 0, typ: report.TypeLost, name: "Black Wallet", description: "leather wallet with student card", location: "Library, 2nd floor"},
	{owner: 0, typ: report.TypeLost, name: "Blue umbrella", description: "folding umbrella", location: "Main hall"},
	{owner: 1, typ: report.TypeFound, name: "Wallet", description: "black leather, no cash inside", location: "Library entrance", contact: "Security desk, room 101"},
	{owner: 2, typ: report.TypeFound, name: "Calculator", description: "TI-84 with initials on the back", location: "Room 305", contact: "mira@campus.local"},
	{owner: 1, typ: report.TypeLost, name: "AirPods case", description: "white case, scratched lid", location: "Gym"},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if seedReset {
		fmt.Fprintln(out, "Cleaning up existing data...")
		for _, table := range []string{"notifications", "reports", "users"} {
			if err := e.db.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clean %s: %w", table, err)
			}
		}
	}

	userRepo := user.NewRepository(e.db)
	reportRepo := report.NewRepository(e.db)
	notificationRepo := notification.NewRepository(e.db)
	users := user.NewService(userRepo, jwt.New(e.cfg.JWTSecret, e.cfg.JWTTTL))

	engine := matching.NewEngine(matching.Deps{
		Reports:       reportRepo,
		Notifications: notificationRepo,
		Users:         userRepo,
	}, matching.Options{MinTokenLength: e.cfg.MatchMinTokenLength}, e.log)
	reports := report.NewService(reportRepo, engine, engine, notificationRepo, e.log)

	fmt.Fprintln(out, "Creating users...")
	if _, err := users.EnsureAdmin(ctx, "Administrator", "admin@campus.local", "admin123"); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	ids := make([]string, len(demoStudents))
	for i, s := range demoStudents {
		res, err := users.Register(ctx, user.RegisterRequest{Name: s.name, Email: s.email, Password: "student123", Phone: s.phone})
		switch {
		case err == nil:
			ids[i] = res.User.ID
		case errors.Is(err, user.ErrEmailAlreadyExists):
			existing, err := userRepo.GetByEmail(ctx, s.email)
			if err != nil {
				return err
			}
			ids[i] = existing.ID
		default:
			return fmt.Errorf("seed user %s: %w", s.email, err)
		}
	}

	fmt.Fprintln(out, "Creating reports...")
	for _, r := range demoReports {
		_, err := reports.Create(ctx, ids[r.owner], report.CreateReportRequest{
			Type:            r.typ,
			ItemName:        r.name,
			ItemDescription: r.description,
			Location:        r.location,
			ContactInfo:     r.contact,
		}, "")
		if err != nil {
			return fmt.Errorf("seed report %q: %w", r.name, err)
		}
	}
	engine.Wait()

	var notes int64
	if err := e.db.Model(&notification.Notification{}).Count(&notes).Error; err != nil {
		return err
	}
	fmt.Fprintf(out, "Seed complete: %d users, %d reports, %d notifications\n", len(demoStudents)+1, len(demoReports), notes)
	return nil
}
