package models

import "time"

// Subscription request states. A request is created pending at checkout and
// changed exactly once by an administrator action.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// SubscriptionRequest is an order for a subscription awaiting manual payment
// confirmation (bank transfer). Activation happens off an approved request.
type SubscriptionRequest struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CompanyID      uint       `gorm:"not null;index" json:"company_id"`
	Tier           string     `gorm:"type:varchar(20);not null" json:"tier"`
	DurationMonths int        `gorm:"not null" json:"duration_months"`
	PriceCents     int64      `gorm:"not null" json:"price_cents"`
	Status         string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DecidedAt      *time.Time `gorm:"type:timestamp;default:null" json:"decided_at,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsPending reports whether the request still awaits a decision.
func (r *SubscriptionRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
