package repository

import (
	"github.com/RegioJobs/RegioJobs/app/models"
	"gorm.io/gorm"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// GetByID retrieves an invoice with its items by ID
func (r *invoiceRepository) GetByID(id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Items").First(&invoice, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByNumber retrieves an invoice with its items by its external number
func (r *invoiceRepository) GetByNumber(number string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Items").Where("invoice_number = ?", number).First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ListByCompany returns a company's invoices, newest first
func (r *invoiceRepository) ListByCompany(companyID uint, offset, limit int) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Items").
		Where("company_id = ?", companyID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&invoices).Error
	return invoices, err
}
