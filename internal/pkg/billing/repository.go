package billing

import (
	"errors"
	"strings"
	"time"

	"github.com/RegioJobs/RegioJobs/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the store operations used by the workflow engine.
// The engine keeps no authoritative state between invocations; everything
// it needs is reloaded through this interface.
type Repository interface {
	GetCompany(id uint) (*models.Company, error)
	SetCompanyPremium(id uint, premium bool, until *time.Time) error

	GetInvoice(id uint) (*models.Invoice, error)
	GetInvoiceByNumber(number string) (*models.Invoice, error)
	CreateInvoiceWithItems(inv *models.Invoice) error
	// UpdateInvoiceStatusIf applies from -> to as a conditional write and
	// reports whether this call performed the transition.
	UpdateInvoiceStatusIf(id uint, from, to string) (bool, error)
	MarkInvoicePaidIf(id uint, paidAt time.Time) (bool, error)
	ListDueInvoices(statuses []string, dueBefore time.Time) ([]models.Invoice, error)

	LastReminderLevel(invoiceID uint) (int, error)
	// AppendReminder inserts into the append-only ledger. A duplicate
	// (invoice_id, level) is rejected by the unique key and reported as
	// a ConflictError.
	AppendReminder(r *models.PaymentReminder) error

	GetRequest(id uint) (*models.SubscriptionRequest, error)
	// DecideRequestIf flips a request from one status to another as a
	// compare-and-swap; exactly one of two concurrent callers wins.
	DecideRequestIf(id uint, from, to string, decidedAt time.Time) (bool, error)
	SubscriptionForCompany(companyID uint) (*models.Subscription, error)
	GetSubscription(id uint) (*models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error
	ListExpiringSubscriptions(from, to time.Time) ([]models.Subscription, error)
	// MarkExpiryWarned records that a warning for the given expiry date
	// went out; the conditional write makes repeated sweeps skip it.
	MarkExpiryWarned(subID uint, expiresAt time.Time) (bool, error)

	AppendActivity(entry *models.ActivityLog) error
	ListActivities(companyID uint, limit int) ([]models.ActivityLog, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a workflow repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetCompany(id uint) (*models.Company, error) {
	var c models.Company
	if err := r.db.First(&c, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("company", id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *gormRepository) SetCompanyPremium(id uint, premium bool, until *time.Time) error {
	return r.db.Model(&models.Company{}).Where("id = ?", id).
		Updates(map[string]interface{}{"premium": premium, "premium_until": until}).Error
}

func (r *gormRepository) GetInvoice(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.Preload("Items").First(&inv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("invoice", id)
		}
		return nil, err
	}
	return &inv, nil
}

func (r *gormRepository) GetInvoiceByNumber(number string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.Preload("Items").Where("invoice_number = ?", number).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("invoice", number)
		}
		return nil, err
	}
	return &inv, nil
}

// CreateInvoiceWithItems persists the invoice and its line items in one
// transaction. Invoice and items never exist independently.
func (r *gormRepository) CreateInvoiceWithItems(inv *models.Invoice) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(inv).Error
	})
}

func (r *gormRepository) UpdateInvoiceStatusIf(id uint, from, to string) (bool, error) {
	res := r.db.Model(&models.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) MarkInvoicePaidIf(id uint, paidAt time.Time) (bool, error) {
	res := r.db.Model(&models.Invoice{}).
		Where("id = ? AND status IN ?", id, []string{models.InvoiceStatusSent, models.InvoiceStatusOverdue}).
		Updates(map[string]interface{}{"status": models.InvoiceStatusPaid, "paid_at": paidAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) ListDueInvoices(statuses []string, dueBefore time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").
		Where("status IN ? AND due_date < ?", statuses, dueBefore).
		Order("due_date asc").
		Find(&invoices).Error
	return invoices, err
}

func (r *gormRepository) LastReminderLevel(invoiceID uint) (int, error) {
	var rem models.PaymentReminder
	err := r.db.Where("invoice_id = ?", invoiceID).
		Order("level desc").
		First(&rem).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return rem.Level, nil
}

func (r *gormRepository) AppendReminder(rem *models.PaymentReminder) error {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "invoice_id"},
			{Name: "level"},
		},
		DoNothing: true,
	}).Create(rem)
	if tx.Error != nil {
		// MySQL surfaces the race on the unique key as a duplicate entry
		// error when OnConflict cannot absorb it.
		if isDuplicateKeyErr(tx.Error) {
			return newConflictError("reminder level %d already recorded for invoice %d", rem.Level, rem.InvoiceID)
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return newConflictError("reminder level %d already recorded for invoice %d", rem.Level, rem.InvoiceID)
	}
	return nil
}

func (r *gormRepository) GetRequest(id uint) (*models.SubscriptionRequest, error) {
	var req models.SubscriptionRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("subscription request", id)
		}
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) DecideRequestIf(id uint, from, to string, decidedAt time.Time) (bool, error) {
	res := r.db.Model(&models.SubscriptionRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "decided_at": decidedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) SubscriptionForCompany(companyID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Where("company_id = ?", companyID).
		Order("expires_at desc").
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) GetSubscription(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newNotFoundError("subscription", id)
		}
		return nil, err
	}
	return &sub, nil
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) ListExpiringSubscriptions(from, to time.Time) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("status = ? AND expires_at >= ? AND expires_at <= ?",
		models.SubscriptionStatusActive, from, to).
		Find(&subs).Error
	return subs, err
}

func (r *gormRepository) MarkExpiryWarned(subID uint, expiresAt time.Time) (bool, error) {
	res := r.db.Model(&models.Subscription{}).
		Where("id = ? AND expires_at = ? AND (expiry_warned_for IS NULL OR expiry_warned_for <> ?)",
			subID, expiresAt, expiresAt).
		Update("expiry_warned_for", expiresAt)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRepository) AppendActivity(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

func (r *gormRepository) ListActivities(companyID uint, limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	q := r.db.Order("created_at desc").Limit(limit)
	if companyID != 0 {
		q = q.Where("company_id = ?", companyID)
	}
	err := q.Find(&entries).Error
	return entries, err
}

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
