package models

import (
	"time"

	"github.com/Huseyinctnkaya/Wallify-IG-sub000/internal/domain/analytics"
)

// DailyCounterModel stores one tenant's interactions for one UTC day.
type DailyCounterModel struct {
	TenantKey string    `gorm:"type:varchar(255);primaryKey"`
	Day       time.Time `gorm:"type:date;primaryKey"`
	Views     int64     `gorm:"not null;default:0"`
	Clicks    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DailyCounterModel) TableName() string {
	return "daily_counters"
}

// ToDomain converts the persistence model to a domain DailyCounter.
func (m *DailyCounterModel) ToDomain() analytics.DailyCounter {
	return analytics.DailyCounter{
		TenantKey: m.TenantKey,
		Day:       analytics.DayOf(m.Day),
		Views:     m.Views,
		Clicks:    m.Clicks,
	}
}

// PostCounterModel stores one tenant's interactions for one media item.
type PostCounterModel struct {
	TenantKey string    `gorm:"type:varchar(255);primaryKey"`
	MediaID   string    `gorm:"type:varchar(64);primaryKey"`
	Views     int64     `gorm:"not null;default:0"`
	Clicks    int64     `gorm:"not null;default:0"`
	MediaURL  string    `gorm:"type:text"`
	Permalink string    `gorm:"type:text"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PostCounterModel) TableName() string {
	return "post_counters"
}

// ToDomain converts the persistence model to a domain PostCounter.
func (m *PostCounterModel) ToDomain() analytics.PostCounter {
	return analytics.PostCounter{
		TenantKey: m.TenantKey,
		MediaID:   m.MediaID,
		Views:     m.Views,
		Clicks:    m.Clicks,
		MediaURL:  m.MediaURL,
		Permalink: m.Permalink,
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

// All returns every model managed by this package, for AutoMigrate in tests
func All() []any {
	return []any{
		&AccountModel{},
		&PostMetaModel{},
		&FeedSettingsModel{},
		&DailyCounterModel{},
		&PostCounterModel{},
	}
}
