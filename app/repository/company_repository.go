package repository

import (
	"github.com/RegioJobs/RegioJobs/app/models"
	"gorm.io/gorm"
)

// companyRepository implements the CompanyRepository interface
type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository instance
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

// Create creates a new company in the database
func (r *companyRepository) Create(company *models.Company) error {
	return r.db.Create(company).Error
}

// GetByID retrieves a company by its ID
func (r *companyRepository) GetByID(id uint) (*models.Company, error) {
	var company models.Company
	err := r.db.First(&company, id).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// GetByEmail retrieves a company by its billing email address
func (r *companyRepository) GetByEmail(email string) (*models.Company, error) {
	var company models.Company
	err := r.db.Where("email = ?", email).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// List returns companies with pagination
func (r *companyRepository) List(offset, limit int) ([]models.Company, error) {
	var companies []models.Company
	err := r.db.Order("name asc").Offset(offset).Limit(limit).Find(&companies).Error
	return companies, err
}

// Count returns the total number of companies
func (r *companyRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Company{}).Count(&count).Error
	return count, err
}
