package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/accelefreight/af-server/internal/domain/ports"
	"github.com/accelefreight/af-server/internal/domain/shipment"
)

// GormPortRepository implements ports.Repository using GORM
type GormPortRepository struct {
	db *gorm.DB
}

// NewGormPortRepository creates a new GORM port repository
func NewGormPortRepository(db *gorm.DB) *GormPortRepository {
	return &GormPortRepository{db: db}
}

// FindByCode retrieves a port by UN/LOCODE
func (r *GormPortRepository) FindByCode(ctx context.Context, unCode string) (*ports.Port, error) {
	var model PortModel
	result := r.db.WithContext(ctx).Where("un_code = ?", unCode).Take(&model)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to find port: %w", result.Error)
	}
	return r.modelToEntity(&model)
}

// ListAll lists the full port catalog
func (r *GormPortRepository) ListAll(ctx context.Context) ([]ports.Port, error) {
	var models []PortModel
	result := r.db.WithContext(ctx).Order("un_code ASC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list ports: %w", result.Error)
	}

	catalog := make([]ports.Port, 0, len(models))
	for i := range models {
		entity, err := r.modelToEntity(&models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to convert port %s: %w", models[i].UNCode, err)
		}
		catalog = append(catalog, *entity)
	}
	return catalog, nil
}

// Upsert writes a port catalog row, replacing an existing one with the
// same UN/LOCODE. Used by the catalog migration and terminal seeding.
func (r *GormPortRepository) Upsert(ctx context.Context, p *ports.Port) error {
	terminals, err := marshalSlice(p.Terminals)
	if err != nil {
		return fmt.Errorf("terminals: %w", err)
	}
	model := &PortModel{
		UNCode:       p.UNCode,
		Name:         p.Name,
		Country:      p.Country,
		CountryCode:  p.CountryCode,
		PortType:     p.PortType,
		HasTerminals: p.HasTerminals,
		Terminals:    terminals,
		CreatedAt:    p.CreatedAt,
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert port %s: %w", p.UNCode, result.Error)
	}
	return nil
}

func (r *GormPortRepository) modelToEntity(model *PortModel) (*ports.Port, error) {
	terminals, err := unmarshalSlice[string](model.Terminals)
	if err != nil {
		return nil, fmt.Errorf("terminals: %w", err)
	}

	return &ports.Port{
		UNCode:       model.UNCode,
		Name:         model.Name,
		Country:      model.Country,
		CountryCode:  model.CountryCode,
		PortType:     model.PortType,
		HasTerminals: model.HasTerminals,
		Terminals:    terminals,
		CreatedAt:    model.CreatedAt,
	}, nil
}

// GormFileTagRepository implements shipment.FileTagRepository using GORM
type GormFileTagRepository struct {
	db *gorm.DB
}

// NewGormFileTagRepository creates a new GORM file tag repository
func NewGormFileTagRepository(db *gorm.DB) *GormFileTagRepository {
	return &GormFileTagRepository{db: db}
}

// ListAll lists the file tag catalog
func (r *GormFileTagRepository) ListAll(ctx context.Context) ([]shipment.FileTag, error) {
	var models []FileTagModel
	result := r.db.WithContext(ctx).Order("label ASC").Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list file tags: %w", result.Error)
	}

	tags := make([]shipment.FileTag, 0, len(models))
	for _, m := range models {
		tags = append(tags, shipment.FileTag{ID: m.ID, Label: m.Label, Color: m.Color})
	}
	return tags, nil
}

// Upsert writes a file tag catalog row. Used by the catalog migration.
func (r *GormFileTagRepository) Upsert(ctx context.Context, tag shipment.FileTag) error {
	model := &FileTagModel{ID: tag.ID, Label: tag.Label, Color: tag.Color}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model)
	if result.Error != nil {
		return fmt.Errorf("failed to upsert file tag %s: %w", tag.ID, result.Error)
	}
	return nil
}
