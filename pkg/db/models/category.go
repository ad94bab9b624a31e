package models

import "time"

// Category groups storefront products. Listings order by (position, name).
type Category struct {
	ID          uint      `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name;size:100;not null;uniqueIndex:ux_categories_name"`
	Slug        string    `gorm:"column:slug;size:120;not null;uniqueIndex:ux_categories_slug"`
	Description string    `gorm:"column:description;type:text"`
	Active      bool      `gorm:"column:active;not null"`
	Position    int       `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
