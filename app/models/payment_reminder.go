package models

import "time"

// Reminder escalation levels. Level 1 is a friendly reminder, level 2 an
// urgent notice, level 3 the final demand. No invoice ever receives more
// than MaxReminderLevel reminders.
const (
	ReminderLevelFriendly = 1
	ReminderLevelUrgent   = 2
	ReminderLevelFinal    = 3

	MaxReminderLevel = 3
)

// PaymentReminder is one entry in the append-only reminder ledger. The
// unique index on (invoice_id, level) is the durable guard against sending
// the same escalation level twice; rows are never updated or deleted.
type PaymentReminder struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	InvoiceID uint      `gorm:"not null;index:ux_payment_reminders_invoice_level,unique,priority:1" json:"invoice_id"`
	Level     int       `gorm:"not null;index:ux_payment_reminders_invoice_level,unique,priority:2" json:"level"`
	SentAt    time.Time `gorm:"autoCreateTime" json:"sent_at"`
}

// IsValidReminderLevel reports whether level is within the escalation range.
func IsValidReminderLevel(level int) bool {
	return level >= ReminderLevelFriendly && level <= MaxReminderLevel
}
