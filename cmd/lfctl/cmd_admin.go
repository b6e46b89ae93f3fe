package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lostfound/internal/domain/user"
	"lostfound/internal/pkg/jwt"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account or promote an existing user",
	Long: `Create an admin account. When the email already belongs to a user, that
user is promoted and the password is left unchanged.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "Display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (min 6 characters)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	if len(adminPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}

	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.close()

	svc := user.NewService(user.NewRepository(e.db), jwt.New(e.cfg.JWTSecret, e.cfg.JWTTTL))
	u, err := svc.EnsureAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin ready: %s <%s> id=%s\n", u.Name, u.Email, u.ID)
	return nil
}
