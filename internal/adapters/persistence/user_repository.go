package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/accelefreight/af-server/internal/domain/identity"
)

// GormUserAccountRepository implements identity.UserAccountRepository using GORM
type GormUserAccountRepository struct {
	db *gorm.DB
}

// NewGormUserAccountRepository creates a new GORM user account repository
func NewGormUserAccountRepository(db *gorm.DB) *GormUserAccountRepository {
	return &GormUserAccountRepository{db: db}
}

// FindByUID retrieves a user account by provider UID
func (r *GormUserAccountRepository) FindByUID(ctx context.Context, uid string) (*identity.UserAccount, error) {
	var model UserAccountModel
	result := r.db.WithContext(ctx).Where("uid = ?", uid).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find user account: %w", result.Error)
	}
	return modelToUserAccount(&model), nil
}

// FindByEmail retrieves a user account by email
func (r *GormUserAccountRepository) FindByEmail(ctx context.Context, email string) (*identity.UserAccount, error) {
	var model UserAccountModel
	result := r.db.WithContext(ctx).Where("email = ?", email).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find user account: %w", result.Error)
	}
	return modelToUserAccount(&model), nil
}

func modelToUserAccount(model *UserAccountModel) *identity.UserAccount {
	return &identity.UserAccount{
		UID:         model.UID,
		Email:       model.Email,
		AccountType: model.AccountType,
		Role:        model.Role,
		CompanyID:   model.CompanyID,
		Name:        model.Name,
		ValidAccess: model.ValidAccess,
	}
}
