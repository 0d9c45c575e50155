package model

import (
	"time"

	"gorm.io/gorm"
)

type Collection struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User  *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []CollectionItem `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Collection) TableName() string {
	return "collections"
}

// CollectionItem links a fragrance into a collection. A fragrance appears
// at most once per collection.
type CollectionItem struct {
	ID           uint `gorm:"primarykey" json:"id"`
	CollectionID uint `gorm:"not null;uniqueIndex:idx_collection_items_collection_fragrance" json:"collection_id"`
	FragranceID  uint `gorm:"not null;uniqueIndex:idx_collection_items_collection_fragrance" json:"fragrance_id"`

	// PersonalRating is 1..10, unlike the 0..5 community scale.
	PersonalRating *int   `json:"personal_rating,omitempty"`
	Notes          string `json:"notes"`
	BottleSize     string `json:"bottle_size"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Fragrance *Fragrance `gorm:"foreignKey:FragranceID" json:"fragrance,omitempty"`
}

func (CollectionItem) TableName() string {
	return "collection_items"
}
