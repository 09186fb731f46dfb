package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/vrsandeep/cropduster/internal/core"
	"github.com/vrsandeep/cropduster/internal/jobs"
)

var runJobCmd = &cobra.Command{
	Use:   "run-job <id>",
	Short: "Run a maintenance job in the foreground",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if args[0] != jobs.ThumbCleanupJobID {
			return fmt.Errorf("unknown job %q", args[0])
		}
		app, err := core.New()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := jobs.RunThumbCleanup(app); err != nil {
			return err
		}
		log.Printf("Job %s finished.", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runJobCmd)
}
