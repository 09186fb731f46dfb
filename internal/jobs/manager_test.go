package jobs_test

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrsandeep/cropduster/internal/config"
	"github.com/vrsandeep/cropduster/internal/jobs"
	"github.com/vrsandeep/cropduster/internal/media"
)

type fakeJobContext struct {
	db     *sql.DB
	cfg    *config.Config
	media  *media.Storage
	jobMgr *jobs.JobManager
}

func (f *fakeJobContext) DB() *sql.DB                  { return f.db }
func (f *fakeJobContext) Config() *config.Config       { return f.cfg }
func (f *fakeJobContext) Media() *media.Storage        { return f.media }
func (f *fakeJobContext) JobManager() *jobs.JobManager { return f.jobMgr }

func newFakeContext() *fakeJobContext {
	ctx := &fakeJobContext{cfg: &config.Config{}}
	ctx.jobMgr = jobs.NewManager(ctx)
	return ctx
}

func waitForStatus(t *testing.T, mgr *jobs.JobManager, want string) jobs.JobStatus {
	t.Helper()
	var last jobs.JobStatus
	require.Eventually(t, func() bool {
		last = mgr.GetStatus()[0]
		return last.Status == want
	}, time.Second, 10*time.Millisecond)
	return last
}

func TestManager_RegisterAndGetStatus(t *testing.T) {
	ctx := newFakeContext()
	assert.Empty(t, ctx.jobMgr.GetStatus())

	ctx.jobMgr.Register("jobB", "Job B", func(jobs.JobContext) error { return nil })
	ctx.jobMgr.Register("jobA", "Job A", func(jobs.JobContext) error { return nil })

	statuses := ctx.jobMgr.GetStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, "jobA", statuses[0].ID)
	assert.Equal(t, "Job B", statuses[1].Name)
	assert.Equal(t, "idle", statuses[0].Status)
}

func TestManager_RunJob(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		ctx := newFakeContext()
		called := make(chan struct{})
		ctx.jobMgr.Register("jobX", "Job X", func(jobs.JobContext) error {
			close(called)
			return nil
		})
		require.NoError(t, ctx.jobMgr.RunJob("jobX", ctx))
		<-called
		status := waitForStatus(t, ctx.jobMgr, "success")
		assert.False(t, status.EndTime.IsZero())
	})

	t.Run("Failure", func(t *testing.T) {
		ctx := newFakeContext()
		ctx.jobMgr.Register("jobF", "Job F", func(jobs.JobContext) error { return errors.New("disk full") })
		require.NoError(t, ctx.jobMgr.RunJob("jobF", ctx))
		status := waitForStatus(t, ctx.jobMgr, "failed")
		assert.Equal(t, "disk full", status.Message)
	})

	t.Run("Panic", func(t *testing.T) {
		ctx := newFakeContext()
		ctx.jobMgr.Register("jobP", "Job P", func(jobs.JobContext) error { panic("boom") })
		require.NoError(t, ctx.jobMgr.RunJob("jobP", ctx))
		status := waitForStatus(t, ctx.jobMgr, "failed")
		assert.Contains(t, status.Message, "boom")
	})

	t.Run("Already running", func(t *testing.T) {
		ctx := newFakeContext()
		block := make(chan struct{})
		ctx.jobMgr.Register("jobY", "Job Y", func(jobs.JobContext) error { <-block; return nil })
		require.NoError(t, ctx.jobMgr.RunJob("jobY", ctx))
		assert.Error(t, ctx.jobMgr.RunJob("jobY", ctx))
		close(block)
		waitForStatus(t, ctx.jobMgr, "success")
	})

	t.Run("Not found", func(t *testing.T) {
		ctx := newFakeContext()
		assert.Error(t, ctx.jobMgr.RunJob("nope", ctx))
	})
}
