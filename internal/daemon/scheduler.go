package daemon

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Scheduler runs periodic rebuilds.
type Scheduler struct {
	scheduler gocron.Scheduler
}

// NewScheduler creates a scheduler firing task every interval. interval is
// a Go duration string from the daemon configuration.
func NewScheduler(interval string, task func()) (*Scheduler, error) {
	every, err := time.ParseDuration(interval)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", interval, err)
	}
	if every < time.Minute {
		return nil, fmt.Errorf("schedule %q is below the 1m minimum", interval)
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task),
		gocron.WithName("scheduled-build"),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduled build job: %w", err)
	}

	return &Scheduler{scheduler: s}, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() {
	slog.Info("Starting build scheduler")
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}
