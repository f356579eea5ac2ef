package location

import "time"

type Location struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	CountryCode string    `gorm:"column:country_code;size:2"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Location) TableName() string {
	return "locations"
}

func (l Location) PrimaryKey() int64 {
	return l.ID
}
