package scheduler

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"marketplace_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

type Client struct {
	client *asynq.Client
	queue  string
}

// SettlementScheduler enqueues the delayed settlement of a payment intent.
type SettlementScheduler interface {
	SchedulePaymentSettlement(ctx context.Context, intentID uuid.UUID, runAt time.Time) error
}

// ReminderScheduler enqueues a booking reminder at the given time.
type ReminderScheduler interface {
	ScheduleBookingReminder(ctx context.Context, bookingID uuid.UUID, runAt time.Time) error
}

func NewClient(cfg config.SchedulerConfig) (*Client, error) {
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

	return &Client{
		client: asynq.NewClient(opt),
		queue:  queue,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Client) SchedulePaymentSettlement(ctx context.Context, intentID uuid.UUID, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewPaymentSettleTask(PaymentSettlePayload{IntentID: intentID.String()})
	if err != nil {
		return err
	}

	// TaskID dedupes retried enqueues for the same intent.
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.ProcessAt(runAt),
		asynq.Queue(c.queue),
		asynq.TaskID("payments:settle:"+intentID.String()),
	)
	if err != nil && err != asynq.ErrTaskIDConflict {
		return err
	}
	return nil
}

func (c *Client) ScheduleBookingReminder(ctx context.Context, bookingID uuid.UUID, runAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}

	task, err := NewBookingReminderTask(BookingReminderPayload{BookingID: bookingID.String()})
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task, asynq.ProcessAt(runAt), asynq.Queue(c.queue))
	return err
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		tlsConfig = clone
	} else if tlsInsecure {
		tlsConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
