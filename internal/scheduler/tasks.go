package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

// TaskLeadSweep reclassifies direct leads whose exclusivity window elapsed.
// It carries no payload; the cutoff is computed at execution time.
const TaskLeadSweep = "leads.sweep"

// TaskPaymentSettle settles a pending payment intent after the configured delay.
const TaskPaymentSettle = "payments.settle"

// TaskBookingReminder fires shortly before a booking's scheduled start.
const TaskBookingReminder = "bookings.reminder"

type PaymentSettlePayload struct {
	IntentID string `json:"intentId"`
}

type BookingReminderPayload struct {
	BookingID string `json:"bookingId"`
}

func NewLeadSweepTask() *asynq.Task {
	return asynq.NewTask(TaskLeadSweep, nil)
}

func NewPaymentSettleTask(payload PaymentSettlePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentSettle, data), nil
}

func ParsePaymentSettlePayload(task *asynq.Task) (PaymentSettlePayload, error) {
	var payload PaymentSettlePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PaymentSettlePayload{}, err
	}
	return payload, nil
}

func NewBookingReminderTask(payload BookingReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingReminder, data), nil
}

func ParseBookingReminderPayload(task *asynq.Task) (BookingReminderPayload, error) {
	var payload BookingReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BookingReminderPayload{}, err
	}
	return payload, nil
}
