// Package email renders and delivers transactional emails.
package email

import "context"

// Sender delivers the transactional emails the platform sends in
// response to domain events.
type Sender interface {
	SendBookingConfirmation(ctx context.Context, toEmail, customerName, serviceTitle, date, timeSlot string, price float64) error
	SendBookingStatusUpdate(ctx context.Context, toEmail, recipientName, serviceTitle, status string) error
	SendBookingReminder(ctx context.Context, toEmail, recipientName, serviceTitle, date, timeSlot string) error
	SendLeadAlert(ctx context.Context, toEmail, providerName, customerName, inboxURL string) error
	SendPaymentReceipt(ctx context.Context, toEmail, customerName, serviceTitle string, amount float64) error
}

// NoopSender discards every email. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendBookingConfirmation(ctx context.Context, toEmail, customerName, serviceTitle, date, timeSlot string, price float64) error {
	return nil
}

func (NoopSender) SendBookingStatusUpdate(ctx context.Context, toEmail, recipientName, serviceTitle, status string) error {
	return nil
}

func (NoopSender) SendBookingReminder(ctx context.Context, toEmail, recipientName, serviceTitle, date, timeSlot string) error {
	return nil
}

func (NoopSender) SendLeadAlert(ctx context.Context, toEmail, providerName, customerName, inboxURL string) error {
	return nil
}

func (NoopSender) SendPaymentReceipt(ctx context.Context, toEmail, customerName, serviceTitle string, amount float64) error {
	return nil
}

var _ Sender = NoopSender{}
