package billing

import (
	"github.com/RegioJobs/RegioJobs/app/models"
)

// Action names the workflow operations addressable through the dispatcher.
// The set is closed; anything else is rejected with UnknownActionError.
type Action string

const (
	ActionCreateAndSendInvoice      Action = "create_and_send_invoice"
	ActionCreateSubscriptionInvoice Action = "create_subscription_invoice"
	ActionActivateSubscription      Action = "activate_subscription"
	ActionSendPaymentReminder       Action = "send_payment_reminder"
	ActionSendBulkReminders         Action = "send_bulk_reminders"
	ActionCheckOverdueInvoices      Action = "check_overdue_invoices"
	ActionSendExpiryWarnings        Action = "send_expiry_warnings"
	ActionMarkInvoicePaid           Action = "mark_invoice_paid"
	ActionCancelInvoice             Action = "cancel_invoice"
)

// DefaultDueDays is applied when an invoice request does not carry a
// payment target.
const DefaultDueDays = 14

// TierMonthlyPriceCents is the fixed per-tier monthly price table for
// subscription invoices.
var TierMonthlyPriceCents = map[string]int64{
	models.TierBasic:   2900,
	models.TierPremium: 9900,
}

// InvoiceItemInput is one requested invoice line.
type InvoiceItemInput struct {
	Description    string `json:"description" validate:"required"`
	Quantity       int    `json:"quantity" validate:"min=1"`
	UnitPriceCents int64  `json:"unit_price_cents" validate:"min=0"`
}

// CreateInvoiceInput carries the parameters of create_and_send_invoice.
type CreateInvoiceInput struct {
	CompanyID uint               `json:"company_id" validate:"required"`
	Items     []InvoiceItemInput `json:"items" validate:"required,min=1,dive"`
	DueDays   *int               `json:"due_days,omitempty" validate:"omitempty,min=0"`
}

// CreateSubscriptionInvoiceInput carries the parameters of
// create_subscription_invoice.
type CreateSubscriptionInvoiceInput struct {
	CompanyID uint   `json:"company_id" validate:"required"`
	Tier      string `json:"tier" validate:"required,oneof=basic premium"`
	Months    int    `json:"months" validate:"min=1"`
}

// ActivateSubscriptionInput carries the parameters of activate_subscription.
type ActivateSubscriptionInput struct {
	RequestID uint `json:"subscription_request_id" validate:"required"`
}

// SendReminderInput carries the parameters of send_payment_reminder. When
// Level is nil the next level is derived from the reminder ledger.
type SendReminderInput struct {
	InvoiceID uint `json:"invoice_id" validate:"required"`
	Level     *int `json:"level,omitempty" validate:"omitempty,min=1,max=3"`
}

// InvoiceRefInput addresses a single invoice (mark_invoice_paid,
// cancel_invoice).
type InvoiceRefInput struct {
	InvoiceID uint `json:"invoice_id" validate:"required"`
}

// InvoiceResult is returned by the invoice creation operations. A failed
// notification dispatch does not undo the invoice; it is reported here so
// the dispatch can be retried without re-creating the invoice.
type InvoiceResult struct {
	Invoice        *models.Invoice `json:"invoice"`
	Message        string          `json:"message"`
	DispatchFailed bool            `json:"dispatch_failed,omitempty"`
	DispatchError  string          `json:"dispatch_error,omitempty"`
}

// ReminderResult is returned by send_payment_reminder.
type ReminderResult struct {
	InvoiceID      uint   `json:"invoice_id"`
	Level          int    `json:"level,omitempty"`
	Skipped        bool   `json:"skipped,omitempty"`
	Message        string `json:"message"`
	DispatchFailed bool   `json:"dispatch_failed,omitempty"`
	DispatchError  string `json:"dispatch_error,omitempty"`
}

// ActivationResult is returned by activate_subscription. AlreadyActivated
// marks the idempotent no-op path for non-pending requests.
type ActivationResult struct {
	Subscription     *models.Subscription `json:"subscription"`
	AlreadyActivated bool                 `json:"already_activated,omitempty"`
	Message          string               `json:"message"`
}

// SweepResult summarizes a batch operation. One item's failure never aborts
// the sweep; it only increments Failed.
type SweepResult struct {
	Attempted int    `json:"attempted"`
	Sent      int    `json:"sent"`
	Failed    int    `json:"failed"`
	Updated   int    `json:"updated,omitempty"`
	Message   string `json:"message"`
}

// StatusResult is returned by the single-invoice status operations.
type StatusResult struct {
	InvoiceID uint   `json:"invoice_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}
