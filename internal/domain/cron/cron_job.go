package cron

import (
	"context"
	"sync"
	"time"

	"github.com/tokenraffle/backend/pkg/xcontext"
)

// CronJob is a periodic task. Next is asked again after every run, so a job
// can move its own schedule.
type CronJob interface {
	Do(context.Context)
	RunNow() bool
	Next() time.Time
}

type CronJobManager struct {
	wait sync.WaitGroup
	stop chan struct{}
	once sync.Once
	jobs []CronJob
}

func NewCronJobManager() *CronJobManager {
	return &CronJobManager{stop: make(chan struct{})}
}

// Register must be called before Start.
func (m *CronJobManager) Register(job CronJob) {
	m.jobs = append(m.jobs, job)
}

// Start runs every registered job on its own schedule and blocks until the
// manager is cancelled.
func (m *CronJobManager) Start(ctx context.Context) {
	xcontext.Logger(ctx).Infof("Cron job manager started with %d jobs", len(m.jobs))

	for _, job := range m.jobs {
		m.wait.Add(1)
		go m.loop(ctx, job)
	}

	m.wait.Wait()
	xcontext.Logger(ctx).Infof("Cron job manager stopped")
}

func (m *CronJobManager) Cancel(context.Context) {
	m.once.Do(func() { close(m.stop) })
}

func (m *CronJobManager) loop(ctx context.Context, job CronJob) {
	defer m.wait.Done()

	if job.RunNow() {
		m.run(ctx, job)
	}

	timer := time.NewTimer(time.Until(job.Next()))
	defer timer.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-timer.C:
			m.run(ctx, job)
			timer.Reset(time.Until(job.Next()))
		}
	}
}

func (m *CronJobManager) run(ctx context.Context, job CronJob) {
	xcontext.Logger(ctx).Infof("%T is running...", job)
	job.Do(ctx)
	xcontext.Logger(ctx).Infof("%T ok", job)
}
