package scheduler

import (
	"fmt"

	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// PeriodicConfig combines the config interfaces the periodic enqueuer needs.
type PeriodicConfig interface {
	config.SchedulerConfig
	config.LeadPolicyConfig
}

// Periodic enqueues the recurring lead sweep on the configured cadence.
// The sweep itself is idempotent, so overlapping runs are harmless.
type Periodic struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

func NewPeriodic(cfg PeriodicConfig, log *logger.Logger) (*Periodic, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	sched := asynq.NewScheduler(opt, nil)

	spec := fmt.Sprintf("@every %s", cfg.GetLeadSweepInterval())
	if _, err := sched.Register(spec, NewLeadSweepTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("failed to register lead sweep: %w", err)
	}
	log.Info("lead sweep registered", "interval", cfg.GetLeadSweepInterval().String())

	return &Periodic{scheduler: sched, log: log}, nil
}

// Run starts the periodic enqueuer and blocks until it stops.
func (p *Periodic) Run() error {
	return p.scheduler.Run()
}

// Shutdown stops the periodic enqueuer.
func (p *Periodic) Shutdown() {
	p.scheduler.Shutdown()
}
