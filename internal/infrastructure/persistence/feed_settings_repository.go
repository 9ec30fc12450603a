package persistence

import (
	"context"
	"errors"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormFeedSettingsRepository implements FeedSettingsRepository using GORM
type GormFeedSettingsRepository struct {
	db *gorm.DB
}

// NewGormFeedSettingsRepository creates a new GormFeedSettingsRepository
func NewGormFeedSettingsRepository(db *gorm.DB) *GormFeedSettingsRepository {
	return &GormFeedSettingsRepository{db: db}
}

// FindByTenant returns the tenant's stored settings
func (r *GormFeedSettingsRepository) FindByTenant(ctx context.Context, tenantKey string) (*integration.StoredFeedSettings, error) {
	var model models.FeedSettingsModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantKey)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrSettingsNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the tenant's settings
func (r *GormFeedSettingsRepository) Save(ctx context.Context, settings *integration.StoredFeedSettings) error {
	model := models.FeedSettingsModelFromDomain(settings)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"settings", "updated_at"}),
		}).
		Create(model).Error
}

// DeleteByTenant removes the tenant's settings
func (r *GormFeedSettingsRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return r.db.WithContext(ctx).Scopes(tenantScope(tenantKey)).Delete(&models.FeedSettingsModel{}).Error
}

// Ensure GormFeedSettingsRepository implements FeedSettingsRepository
var _ integration.FeedSettingsRepository = (*GormFeedSettingsRepository)(nil)
