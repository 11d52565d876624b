package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/accelefreight/af-server/internal/domain/company"
)

// GormCompanyRepository implements company.Repository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GORM company repository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// FindByID retrieves a company by ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	var model CompanyModel
	result := r.db.WithContext(ctx).Where("id = ?", id).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", result.Error)
	}
	return r.modelToEntity(&model)
}

// Exists reports whether a non-trashed company exists
func (r *GormCompanyRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CompanyModel{}).
		Where("id = ? AND trash = ?", id, false).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check company: %w", result.Error)
	}
	return count > 0, nil
}

// ListActive lists all non-trashed companies
func (r *GormCompanyRepository) ListActive(ctx context.Context) ([]company.Company, error) {
	var models []CompanyModel
	result := r.db.WithContext(ctx).
		Where("trash = ?", false).
		Order("name ASC").
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list companies: %w", result.Error)
	}

	companies := make([]company.Company, 0, len(models))
	for i := range models {
		entity, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert company %s: %w", models[i].ID, err)
		}
		companies = append(companies, *entity)
	}
	return companies, nil
}

// Upsert writes a company row, replacing an existing one with the same
// ID. Used by the catalog migration.
func (r *GormCompanyRepository) Upsert(ctx context.Context, c *company.Company) error {
	var address *string
	if c.Address != nil {
		raw, err := marshalOptional(&c.Address)
		if err != nil {
			return fmt.Errorf("address: %w", err)
		}
		address = raw
	}
	model := &CompanyModel{
		ID:                c.ID,
		Name:              c.Name,
		ShortName:         c.ShortName,
		AccountType:       c.AccountType,
		Email:             c.Email,
		Phone:             c.Phone,
		Address:           address,
		XeroContactID:     c.XeroContactID,
		Approved:          c.Approved,
		HasPlatformAccess: c.HasPlatformAccess,
		Trash:             c.Trash,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert company %s: %w", c.ID, result.Error)
	}
	return nil
}

func (r *GormCompanyRepository) modelToEntity(model *CompanyModel) (*company.Company, error) {
	address, err := unmarshalOptional[map[string]any](model.Address)
	if err != nil {
		return nil, fmt.Errorf("address: %w", err)
	}

	entity := &company.Company{
		ID:                model.ID,
		Name:              model.Name,
		ShortName:         model.ShortName,
		AccountType:       model.AccountType,
		Email:             model.Email,
		Phone:             model.Phone,
		XeroContactID:     model.XeroContactID,
		Approved:          model.Approved,
		HasPlatformAccess: model.HasPlatformAccess,
		Trash:             model.Trash,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
	if address != nil {
		entity.Address = *address
	}
	return entity, nil
}
