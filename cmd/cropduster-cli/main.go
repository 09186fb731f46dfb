package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/vrsandeep/cropduster/internal/core"
)

var rootCmd = &cobra.Command{
	Use:           "cropduster-cli",
	Short:         "Administrative tasks for a cropduster installation",
	Long:          "Apply migrations, manage users, load size sets and run maintenance jobs against the database named in config.yml.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// core.New applies pending migrations while opening the database.
		app, err := core.New()
		if err != nil {
			return err
		}
		defer app.Close()
		log.Println("Migrations applied successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
