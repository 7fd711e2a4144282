package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type bookingConfirmationEmailData struct {
	baseEmailData
	CustomerName   string
	ServiceTitle   string
	Date           string
	TimeSlot       string
	PriceFormatted string
}

type bookingStatusEmailData struct {
	baseEmailData
	RecipientName string
	ServiceTitle  string
	Status        string
}

type bookingReminderEmailData struct {
	baseEmailData
	RecipientName string
	ServiceTitle  string
	Date          string
	TimeSlot      string
}

type leadAlertEmailData struct {
	baseEmailData
	ProviderName string
	CustomerName string
}

type paymentReceiptEmailData struct {
	baseEmailData
	CustomerName    string
	ServiceTitle    string
	AmountFormatted string
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyUSD(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
