package models

import "time"

// Subscription tiers sold to companies.
const (
	TierBasic   = "basic"
	TierPremium = "premium"
)

const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusExpired   = "expired"
	SubscriptionStatusCancelled = "cancelled"
)

// Subscription is a time-bounded premium entitlement for a company.
// ExpiresAt is only ever advanced by a new activation, never rolled back.
// ExpiryWarnedFor records the expiry date a renewal warning was already
// sent for, so the daily expiry sweep warns once per expiry date.
type Subscription struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	CompanyID      uint       `gorm:"not null;index" json:"company_id"`
	Tier           string     `gorm:"type:varchar(20);not null;default:'basic'" json:"tier"`
	Status         string     `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ExpiresAt      time.Time  `gorm:"type:timestamp;not null" json:"expires_at"`
	ExpiryWarnedFor *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActiveAt reports whether the subscription entitles the company at the
// given time. A company's premium flag mirrors this predicate.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && !s.ExpiresAt.Before(now)
}

// ExpiresWithin reports whether an active subscription runs out inside the
// window [now, now+d].
func (s *Subscription) ExpiresWithin(now time.Time, d time.Duration) bool {
	return s.IsActiveAt(now) && !s.ExpiresAt.After(now.Add(d))
}

// WasWarnedFor reports whether a renewal warning for the current expiry
// date has already gone out.
func (s *Subscription) WasWarnedFor(expiresAt time.Time) bool {
	return s.ExpiryWarnedFor != nil && s.ExpiryWarnedFor.Equal(expiresAt)
}
