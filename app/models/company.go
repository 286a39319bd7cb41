package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Company is an employer account on the job board. Premium mirrors the
// company's active-subscription state and is maintained by the billing
// workflow, never edited directly.
type Company struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"type:varchar(200);not null" json:"name" validate:"required,min=2,max=200"`
	Email        string         `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email"`
	Street       string         `gorm:"type:varchar(200)" json:"street"`
	ZipCode      string         `gorm:"type:varchar(10)" json:"zip_code"`
	City         string         `gorm:"type:varchar(100)" json:"city"`
	Premium      bool           `gorm:"default:false;index" json:"premium"`
	PremiumUntil *time.Time     `gorm:"type:timestamp;default:null" json:"premium_until,omitempty"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Company) Validate() error {
	v := validator.New()

	return v.Struct(c)
}

// BillingAddress returns the address line used on invoice documents.
func (c *Company) BillingAddress() string {
	if c.Street == "" && c.City == "" {
		return ""
	}
	return c.Street + ", " + c.ZipCode + " " + c.City
}
