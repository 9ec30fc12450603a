package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/integration"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAccountRepository implements AccountRepository using GORM
type GormAccountRepository struct {
	db *gorm.DB
}

// NewGormAccountRepository creates a new GormAccountRepository
func NewGormAccountRepository(db *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormAccountRepository) WithTx(tx *gorm.DB) *GormAccountRepository {
	return &GormAccountRepository{db: tx}
}

// FindByTenant finds the account connected to a tenant
func (r *GormAccountRepository) FindByTenant(ctx context.Context, tenantKey string) (*integration.Account, error) {
	var model models.AccountModel
	if err := r.db.WithContext(ctx).Scopes(tenantScope(tenantKey)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns every connected account ordered by tenant key
func (r *GormAccountRepository) FindAll(ctx context.Context) ([]integration.Account, error) {
	var rows []models.AccountModel
	if err := r.db.WithContext(ctx).Order("tenant_key ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return accountsToDomain(rows), nil
}

// FindExpiringBefore returns accounts whose credential expires before t
func (r *GormAccountRepository) FindExpiringBefore(ctx context.Context, t time.Time) ([]integration.Account, error) {
	var rows []models.AccountModel
	err := r.db.WithContext(ctx).
		Where("token_expires_at IS NOT NULL AND token_expires_at < ?", t.UTC()).
		Order("token_expires_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return accountsToDomain(rows), nil
}

// Save creates or replaces the tenant's account
func (r *GormAccountRepository) Save(ctx context.Context, account *integration.Account) error {
	model := models.AccountModelFromDomain(account)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"access_token",
				"token_expires_at",
				"token_degraded",
				"remote_user_id",
				"display_name",
				"avatar_url",
				"connected_at",
				"updated_at",
			}),
		}).
		Create(model).Error
}

// DeleteByTenant removes the tenant's account, if any
func (r *GormAccountRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return r.db.WithContext(ctx).Scopes(tenantScope(tenantKey)).Delete(&models.AccountModel{}).Error
}

func accountsToDomain(rows []models.AccountModel) []integration.Account {
	accounts := make([]integration.Account, 0, len(rows))
	for i := range rows {
		accounts = append(accounts, *rows[i].ToDomain())
	}
	return accounts
}

// Ensure GormAccountRepository implements AccountRepository
var _ integration.AccountRepository = (*GormAccountRepository)(nil)
