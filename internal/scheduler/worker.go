package scheduler

import (
	"context"
	"fmt"

	"marketplace_backend/internal/events"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// LeadSweeper reclassifies stale direct leads into open opportunities.
type LeadSweeper interface {
	SweepExpiredLeads(ctx context.Context) (int64, error)
}

// PaymentSettler settles a pending payment intent.
type PaymentSettler interface {
	SettleIntent(ctx context.Context, intentID uuid.UUID) error
}

// BookingReminderLoader loads the data the reminder event needs.
type BookingReminderLoader interface {
	ReminderInfo(ctx context.Context, bookingID uuid.UUID) (*ReminderInfo, error)
}

// ReminderInfo is the subset of a booking needed to send a reminder.
type ReminderInfo struct {
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	ProviderID uuid.UUID
	Status     string
	Date       string
	Time       string
}

type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	sweeper   LeadSweeper
	settler   PaymentSettler
	reminders BookingReminderLoader
	bus       events.Bus
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sweeper LeadSweeper, settler PaymentSettler, reminders BookingReminderLoader, bus events.Bus, log *logger.Logger) (*Worker, error) {
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

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		sweeper:   sweeper,
		settler:   settler,
		reminders: reminders,
		bus:       bus,
		log:       log,
	}

	mux.HandleFunc(TaskLeadSweep, w.handleLeadSweep)
	mux.HandleFunc(TaskPaymentSettle, w.handlePaymentSettle)
	mux.HandleFunc(TaskBookingReminder, w.handleBookingReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadSweep(ctx context.Context, _ *asynq.Task) error {
	if w.sweeper == nil {
		return nil
	}

	expired, err := w.sweeper.SweepExpiredLeads(ctx)
	if err != nil {
		return err
	}

	if expired > 0 && w.bus != nil {
		w.bus.Publish(ctx, events.LeadExpired{
			BaseEvent: events.NewBaseEvent(),
			Expired:   expired,
		})
	}

	return nil
}

func (w *Worker) handlePaymentSettle(ctx context.Context, task *asynq.Task) error {
	if w.settler == nil {
		return nil
	}

	payload, err := ParsePaymentSettlePayload(task)
	if err != nil {
		return err
	}

	intentID, err := uuid.Parse(payload.IntentID)
	if err != nil {
		return err
	}

	return w.settler.SettleIntent(ctx, intentID)
}

func (w *Worker) handleBookingReminder(ctx context.Context, task *asynq.Task) error {
	if w.reminders == nil || w.bus == nil {
		return nil
	}

	payload, err := ParseBookingReminderPayload(task)
	if err != nil {
		return err
	}

	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		return err
	}

	info, err := w.reminders.ReminderInfo(ctx, bookingID)
	if err != nil {
		return err
	}

	// Cancelled and declined bookings get no reminder.
	if info.Status != "Upcoming" && info.Status != "Confirmed" {
		return nil
	}

	w.bus.Publish(ctx, events.BookingReminderDue{
		BaseEvent:  events.NewBaseEvent(),
		BookingID:  info.BookingID,
		CustomerID: info.CustomerID,
		ProviderID: info.ProviderID,
		Date:       info.Date,
		Time:       info.Time,
	})

	return nil
}
