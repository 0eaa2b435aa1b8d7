// Package workers runs the periodic compliance sweeps outside the request path.
package workers

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var jobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "complyhr_worker_job_runs_total",
	Help: "Background job runs by job and result.",
}, []string{"job", "result"})

// Job reports how many rows it changed.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

type Runner struct {
	jobs []Job
}

func NewRunner(jobs ...Job) *Runner {
	return &Runner{jobs: jobs}
}

// RunOnce runs every job in order. A failing job is logged and does not stop the rest.
func (r *Runner) RunOnce(ctx context.Context) {
	for _, job := range r.jobs {
		start := time.Now()
		n, err := job.Run(ctx)
		if err != nil {
			jobRuns.WithLabelValues(job.Name, "error").Inc()
			log.Error().Err(err).Str("job", job.Name).Msg("worker job failed")
			continue
		}
		jobRuns.WithLabelValues(job.Name, "ok").Inc()
		log.Info().
			Str("job", job.Name).
			Int64("updated", n).
			Dur("duration", time.Since(start)).
			Msg("worker job finished")
	}
}

// Start runs the jobs immediately and then every interval until ctx is cancelled.
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	r.RunOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// Counted adapts a job that returns an int count.
func Counted(fn func(ctx context.Context) (int, error)) func(ctx context.Context) (int64, error) {
	return func(ctx context.Context) (int64, error) {
		n, err := fn(ctx)
		return int64(n), err
	}
}
