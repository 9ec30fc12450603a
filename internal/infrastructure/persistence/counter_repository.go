package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MaxTopPostsLimit caps the number of rows TopPosts returns
const MaxTopPostsLimit = 50

// GormCounterRepository implements CounterRepository using GORM.
// Increments are a single INSERT ... ON CONFLICT DO UPDATE statement so
// concurrent events for the same key never lose updates.
type GormCounterRepository struct {
	db *gorm.DB
}

// NewGormCounterRepository creates a new GormCounterRepository
func NewGormCounterRepository(db *gorm.DB) *GormCounterRepository {
	return &GormCounterRepository{db: db}
}

// IncrementDaily adds one to the event column of (tenant, day)
func (r *GormCounterRepository) IncrementDaily(ctx context.Context, tenantKey string, day time.Time, event analytics.EventType) error {
	model := models.DailyCounterModel{
		TenantKey: tenantKey,
		Day:       analytics.DayOf(day),
	}
	seedCounter(event, &model.Views, &model.Clicks)

	col := event.Column()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_key"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				col: gorm.Expr(fmt.Sprintf("%s.%s + 1", model.TableName(), col)),
			}),
		}).
		Create(&model).Error
}

// IncrementPost adds one to the event column of (tenant, media), refreshing display fields
func (r *GormCounterRepository) IncrementPost(ctx context.Context, tenantKey, mediaID string, event analytics.EventType, display analytics.PostDisplay) error {
	model := models.PostCounterModel{
		TenantKey: tenantKey,
		MediaID:   mediaID,
		MediaURL:  display.MediaURL,
		Permalink: display.Permalink,
		UpdatedAt: time.Now().UTC(),
	}
	seedCounter(event, &model.Views, &model.Clicks)

	table := model.TableName()
	col := event.Column()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tenant_key"}, {Name: "media_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				col:          gorm.Expr(fmt.Sprintf("%s.%s + 1", table, col)),
				"media_url":  gorm.Expr(keepNonEmpty(table, "media_url")),
				"permalink":  gorm.Expr(keepNonEmpty(table, "permalink")),
				"updated_at": gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(&model).Error
}

// FindDailySince returns daily rows with day >= since, ordered by day
func (r *GormCounterRepository) FindDailySince(ctx context.Context, tenantKey string, since time.Time) ([]analytics.DailyCounter, error) {
	var rows []models.DailyCounterModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantKey)).
		Where("day >= ?", analytics.DayOf(since)).
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counters := make([]analytics.DailyCounter, 0, len(rows))
	for i := range rows {
		counters = append(counters, rows[i].ToDomain())
	}
	return counters, nil
}

// TopPosts returns post counters ordered by clicks then views
func (r *GormCounterRepository) TopPosts(ctx context.Context, tenantKey string, limit int) ([]analytics.PostCounter, error) {
	if limit <= 0 || limit > MaxTopPostsLimit {
		limit = MaxTopPostsLimit
	}
	var rows []models.PostCounterModel
	err := r.db.WithContext(ctx).
		Scopes(tenantScope(tenantKey)).
		Order("clicks DESC").
		Order("views DESC").
		Order("media_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counters := make([]analytics.PostCounter, 0, len(rows))
	for i := range rows {
		counters = append(counters, rows[i].ToDomain())
	}
	return counters, nil
}

// DeleteByTenant removes every counter row of the tenant
func (r *GormCounterRepository) DeleteByTenant(ctx context.Context, tenantKey string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Scopes(tenantScope(tenantKey)).Delete(&models.DailyCounterModel{}).Error; err != nil {
			return err
		}
		return tx.Scopes(tenantScope(tenantKey)).Delete(&models.PostCounterModel{}).Error
	})
}

// seedCounter sets the insert value of the incremented column to 1
func seedCounter(event analytics.EventType, views, clicks *int64) {
	if event == analytics.EventClick {
		*clicks = 1
		return
	}
	*views = 1
}

func keepNonEmpty(table, col string) string {
	return fmt.Sprintf("CASE WHEN excluded.%[2]s <> '' THEN excluded.%[2]s ELSE %[1]s.%[2]s END", table, col)
}

// Ensure GormCounterRepository implements CounterRepository
var _ analytics.CounterRepository = (*GormCounterRepository)(nil)
