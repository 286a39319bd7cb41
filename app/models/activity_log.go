package models

import "time"

// Activity actions recorded by the billing workflow.
const (
	ActivityInvoiceCreated        = "invoice_created"
	ActivityInvoicePaid           = "invoice_paid"
	ActivityInvoiceCancelled      = "invoice_cancelled"
	ActivityReminderSent          = "reminder_sent"
	ActivitySubscriptionActivated = "subscription_activated"
	ActivityExpiryWarningSent     = "expiry_warning_sent"
)

// ActivityLog is the append-only CRM audit trail of workflow side effects.
// It exists for display only and is never read back as authoritative state.
type ActivityLog struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ReferenceID string    `gorm:"type:varchar(40);index" json:"reference_id"`
	Action      string    `gorm:"type:varchar(50);not null;index" json:"action"`
	SubjectType string    `gorm:"type:varchar(50);not null" json:"subject_type"`
	SubjectID   uint      `gorm:"not null;index" json:"subject_id"`
	CompanyID   uint      `gorm:"index" json:"company_id"`
	Note        string    `gorm:"type:text" json:"note"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
