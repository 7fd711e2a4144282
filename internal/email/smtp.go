package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"marketplace_backend/platform/config"
)

// SMTPSender implements the Sender interface over a direct SMTP
// connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

// NewSenderFromConfig returns an SMTPSender when email delivery is
// enabled, otherwise a NoopSender.
func NewSenderFromConfig(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendBookingConfirmation(ctx context.Context, toEmail, customerName, serviceTitle, date, timeSlot string, price float64) error {
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking confirmed",
			Heading: "Booking confirmed",
		},
		CustomerName:   customerName,
		ServiceTitle:   serviceTitle,
		Date:           date,
		TimeSlot:       timeSlot,
		PriceFormatted: formatCurrencyUSD(price),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectBookingConfirmation, content)
}

func (s *SMTPSender) SendBookingStatusUpdate(ctx context.Context, toEmail, recipientName, serviceTitle, status string) error {
	subject := fmt.Sprintf(subjectBookingStatusFmt, status)
	content, err := renderEmailTemplate("booking_status.html", bookingStatusEmailData{
		baseEmailData: baseEmailData{
			Title:   "Booking update",
			Heading: "Booking update",
		},
		RecipientName: recipientName,
		ServiceTitle:  serviceTitle,
		Status:        status,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendBookingReminder(ctx context.Context, toEmail, recipientName, serviceTitle, date, timeSlot string) error {
	content, err := renderEmailTemplate("booking_reminder.html", bookingReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Upcoming booking",
			Heading: "Upcoming booking",
		},
		RecipientName: recipientName,
		ServiceTitle:  serviceTitle,
		Date:          date,
		TimeSlot:      timeSlot,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectBookingReminder, content)
}

func (s *SMTPSender) SendLeadAlert(ctx context.Context, toEmail, providerName, customerName, inboxURL string) error {
	subject := fmt.Sprintf(subjectLeadAlertFmt, customerName)
	content, err := renderEmailTemplate("lead_alert.html", leadAlertEmailData{
		baseEmailData: baseEmailData{
			Title:    "New request",
			Heading:  "You have a new request",
			CTALabel: "Open inbox",
			CTAURL:   inboxURL,
		},
		ProviderName: providerName,
		CustomerName: customerName,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendPaymentReceipt(ctx context.Context, toEmail, customerName, serviceTitle string, amount float64) error {
	content, err := renderEmailTemplate("payment_receipt.html", paymentReceiptEmailData{
		baseEmailData: baseEmailData{
			Title:   "Payment receipt",
			Heading: "Payment received",
		},
		CustomerName:    customerName,
		ServiceTitle:    serviceTitle,
		AmountFormatted: formatCurrencyUSD(amount),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectPaymentReceipt, content)
}

var _ Sender = (*SMTPSender)(nil)
