package persistence

import (
	"context"
	"errors"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPostMetaRepository implements PostMetaRepository using GORM
type GormPostMetaRepository struct {
	db *gorm.DB
}

// NewGormPostMetaRepository creates a new GormPostMetaRepository
func NewGormPostMetaRepository(db *gorm.DB) *GormPostMetaRepository {
	return &GormPostMetaRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormPostMetaRepository) WithTx(tx *gorm.DB) *GormPostMetaRepository {
	return &GormPostMetaRepository{db: tx}
}

// FindByTenant returns all metadata rows of a tenant
func (r *GormPostMetaRepository) FindByTenant(ctx context.Context, tenantKey string) ([]integration.PostMeta, error) {
	var rows []models.PostMetaModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantKey)).Order("media_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	metas := make([]integration.PostMeta, 0, len(rows))
	for i := range rows {
		metas = append(metas, *rows[i].ToDomain())
	}
	return metas, nil
}

// FindOne returns the metadata of one media item
func (r *GormPostMetaRepository) FindOne(ctx context.Context, tenantKey, mediaID string) (*integration.PostMeta, error) {
	var model models.PostMetaModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantKey)).
		Where("media_id = ?", mediaID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrPostMetaNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts by (tenant, media id)
func (r *GormPostMetaRepository) Save(ctx context.Context, meta *integration.PostMeta) error {
	model := models.PostMetaModelFromDomain(meta)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_key"}, {Name: "media_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"pinned", "hidden", "products", "updated_at"}),
		}).
		Create(model).Error
}

// Patch upserts by (tenant, media id), overwriting only the named columns of an existing row
func (r *GormPostMetaRepository) Patch(ctx context.Context, meta *integration.PostMeta, fields []integration.PostMetaField) error {
	columns := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		columns = append(columns, string(f))
	}
	columns = append(columns, "updated_at")

	model := models.PostMetaModelFromDomain(meta)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_key"}, {Name: "media_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(model).Error
}

// DeleteByTenant removes all rows of a tenant
func (r *GormPostMetaRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return r.db.WithContext(ctx).Scopes(tenantScope(tenantKey)).Delete(&models.PostMetaModel{}).Error
}

// Ensure GormPostMetaRepository implements PostMetaRepository
var _ integration.PostMetaRepository = (*GormPostMetaRepository)(nil)
