package main

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vrsandeep/cropduster/internal/auth"
	"github.com/vrsandeep/cropduster/internal/core"
	"github.com/vrsandeep/cropduster/internal/store"
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin user",
	RunE:  runCreateAdmin,
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Change the password of an existing user",
	RunE:  runSetPassword,
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	rootCmd.AddCommand(setPasswordCmd)

	for _, cmd := range []*cobra.Command{createAdminCmd, setPasswordCmd} {
		cmd.Flags().String("username", "", "Username")
		cmd.Flags().String("password", "", "Password")
	}
}

func credentials(cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", errors.New("--username is required")
	}
	if password == "" {
		return "", "", errors.New("--password is required")
	}
	return username, password, nil
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	username, password, err := credentials(cmd)
	if err != nil {
		return err
	}
	app, err := core.New()
	if err != nil {
		return err
	}
	defer app.Close()

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user, err := store.New(app.DB()).CreateUser(username, hash, "admin")
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", username, err)
	}
	log.Printf("Created admin user %s (id %d)", user.Username, user.ID)
	return nil
}

func runSetPassword(cmd *cobra.Command, _ []string) error {
	username, password, err := credentials(cmd)
	if err != nil {
		return err
	}
	app, err := core.New()
	if err != nil {
		return err
	}
	defer app.Close()

	st := store.New(app.DB())
	user, err := st.GetUserByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to find user %q: %w", username, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := st.UpdateUserPassword(user.ID, hash); err != nil {
		return err
	}
	log.Printf("Password updated for %s", user.Username)
	return nil
}
