package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// StartJobs registers the built-in jobs with the manager and starts the
// background scheduler. The returned scheduler is stopped by the caller.
func StartJobs(app JobContext) *gocron.Scheduler {
	RegisterJobs(app.JobManager())

	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	scheduleThumbCleanupJob(s, app)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

// RegisterJobs adds every built-in job to jm.
func RegisterJobs(jm *JobManager) {
	jm.Register(ThumbCleanupJobID, "Temporary thumbnail cleanup", RunThumbCleanup)
}

func scheduleThumbCleanupJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().Cleanup.Interval
	if interval == 0 {
		log.Println("Cleanup interval is 0, scheduled thumbnail cleanup is disabled.")
		return
	}

	jobID := ThumbCleanupJobID
	log.Printf("Scheduling job: '%s' to run every %d minutes.", jobID, interval)

	_, err := s.Every(interval).Minutes().Do(func() {
		log.Println("Scheduler is triggering job:", jobID)
		// Go through the manager so a manual run and a scheduled run never overlap.
		if err := app.JobManager().RunJob(jobID, app); err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", jobID, err)
	}
}
