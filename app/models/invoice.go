package models

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
)

// Invoice lifecycle states. Paid and cancelled are terminal; a paid or
// cancelled invoice is never modified again.
const (
	InvoiceStatusDraft     = "draft"
	InvoiceStatusSent      = "sent"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// DefaultTaxRatePercent is the German VAT rate applied to all invoices.
const DefaultTaxRatePercent = 19.0

// Invoice is a billing document issued to a company. All monetary amounts
// are stored in cents, the totals are derived from the line items via
// ComputeTotals and must never be written independently.
type Invoice struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string        `gorm:"type:varchar(50);uniqueIndex" json:"invoice_number" validate:"required"`
	CompanyID      uint          `gorm:"not null;index" json:"company_id" validate:"required"`
	CustomerName   string        `gorm:"type:varchar(200)" json:"customer_name"`
	CustomerEmail  string        `gorm:"type:varchar(200)" json:"customer_email" validate:"omitempty,email"`
	CustomerStreet string        `gorm:"type:varchar(200)" json:"customer_street"`
	CustomerCity   string        `gorm:"type:varchar(200)" json:"customer_city"`
	Items          []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	SubtotalCents  int64         `json:"subtotal_cents"`
	TaxRatePercent float64       `gorm:"default:19" json:"tax_rate_percent"`
	TaxCents       int64         `json:"tax_cents"`
	TotalCents     int64         `json:"total_cents"`
	DueDate        time.Time     `gorm:"type:date" json:"due_date"`
	Status         string        `gorm:"type:varchar(20);not null;default:'draft';index" json:"status" validate:"oneof=draft sent paid overdue cancelled"`
	PaidAt         *time.Time    `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CreatedAt      time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// InvoiceItem is a single line on an invoice.
type InvoiceItem struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	InvoiceID      uint   `gorm:"not null;index" json:"-"`
	Description    string `gorm:"type:varchar(255)" json:"description" validate:"required"`
	Quantity       int    `gorm:"not null" json:"quantity" validate:"min=1"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents" validate:"min=0"`
}

// LineTotalCents returns quantity * unit price for one item.
func (it InvoiceItem) LineTotalCents() int64 {
	return int64(it.Quantity) * it.UnitPriceCents
}

// ComputeTotals recalculates subtotal, tax and total from the line items.
// Tax is rounded half away from zero on the subtotal, so the invariant
// total == subtotal + tax holds for any item combination.
func (i *Invoice) ComputeTotals() {
	var subtotal int64
	for _, it := range i.Items {
		subtotal += it.LineTotalCents()
	}
	i.SubtotalCents = subtotal
	i.TaxCents = int64(math.Round(float64(subtotal) * i.TaxRatePercent / 100))
	i.TotalCents = i.SubtotalCents + i.TaxCents
}

// IsTerminal reports whether the invoice may never change again.
func (i *Invoice) IsTerminal() bool {
	return i.Status == InvoiceStatusPaid || i.Status == InvoiceStatusCancelled
}

// IsOverdueAt reports whether a sent invoice has passed its due date.
func (i *Invoice) IsOverdueAt(now time.Time) bool {
	return i.Status == InvoiceStatusSent && now.After(i.DueDate)
}

// CanTransition reports whether the status change from -> to is part of the
// invoice lifecycle. Paid is reachable from sent and overdue, overdue only
// from sent, cancelled from every non-terminal state.
func CanTransition(from, to string) bool {
	switch to {
	case InvoiceStatusSent:
		return from == InvoiceStatusDraft
	case InvoiceStatusOverdue:
		return from == InvoiceStatusSent
	case InvoiceStatusPaid:
		return from == InvoiceStatusSent || from == InvoiceStatusOverdue
	case InvoiceStatusCancelled:
		return from == InvoiceStatusDraft || from == InvoiceStatusSent || from == InvoiceStatusOverdue
	default:
		return false
	}
}

func (i *Invoice) Validate() error {
	v := validator.New()

	return v.Struct(i)
}
