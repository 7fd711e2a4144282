package email

const (
	subjectBookingConfirmation = "Your booking is confirmed"
	subjectBookingStatusFmt    = "Booking update: %s"
	subjectBookingReminder     = "Reminder: your booking is tomorrow"
	subjectLeadAlertFmt        = "New request from %s"
	subjectPaymentReceipt      = "Payment receipt"
)
