package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"business-directory/internal/common/validation"
	"business-directory/internal/directory"
)

const minPasswordLength = 8

var (
	adminEmail     string
	adminPassword  string
	adminSuperuser bool
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create or update a dashboard operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := hashPassword(adminEmail, adminPassword)
		if err != nil {
			return err
		}

		_, pg, err := openPostgres(cmd.Context())
		if err != nil {
			return err
		}
		defer pg.Close()

		user, err := directory.NewRepository(pg.DB).UpsertAdmin(cmd.Context(), adminEmail, string(hash), adminSuperuser)
		if err != nil {
			return fmt.Errorf("save admin: %w", err)
		}
		zapLog.Info("admin saved", zap.Int64("id", user.ID), zap.String("email", user.Email), zap.Bool("superuser", user.IsSuperuser))
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminEmail, "email", "", "operator email (required)")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "operator password (required)")
	seedAdminCmd.Flags().BoolVar(&adminSuperuser, "superuser", true, "grant superuser")
	_ = seedAdminCmd.MarkFlagRequired("email")
	_ = seedAdminCmd.MarkFlagRequired("password")
}

func hashPassword(email, password string) ([]byte, error) {
	if !validation.ValidateEmail(email) {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
