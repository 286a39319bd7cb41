package repository

import (
	"github.com/RegioJobs/RegioJobs/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for operator-account database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByAPIKeyHash(hash string) (*models.User, error)
	Update(user *models.User) error
}

// CompanyRepository defines the interface for employer-account database operations
type CompanyRepository interface {
	Create(company *models.Company) error
	GetByID(id uint) (*models.Company, error)
	GetByEmail(email string) (*models.Company, error)
	List(offset, limit int) ([]models.Company, error)
	Count() (int64, error)
}

// InvoiceRepository defines the read-side interface used by the invoice
// document page. Writes go through the billing engine exclusively.
type InvoiceRepository interface {
	GetByID(id uint) (*models.Invoice, error)
	GetByNumber(number string) (*models.Invoice, error)
	ListByCompany(companyID uint, offset, limit int) ([]models.Invoice, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User    UserRepository
	Company CompanyRepository
	Invoice InvoiceRepository
}

// NewRepositories creates all repositories sharing one GORM handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Company: NewCompanyRepository(db),
		Invoice: NewInvoiceRepository(db),
	}
}
