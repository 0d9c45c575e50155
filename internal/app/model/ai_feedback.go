package model

import (
	"time"
)

type AICategoryType string

const (
	AICategorySeason   AICategoryType = "season"
	AICategoryOccasion AICategoryType = "occasion"
	AICategoryMood     AICategoryType = "mood"
)

// AICategorFeedback records a user's correction to an AI categorization
// suggestion. Corrections feed future prompt tuning; they are never applied
// to the catalog automatically.
type AICategorFeedback struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	FragranceID    uint           `gorm:"not null;index" json:"fragrance_id"`
	CategoryType   AICategoryType `gorm:"type:varchar(20);not null" json:"category_type"`
	AISuggestion   string         `gorm:"not null" json:"ai_suggestion"`
	UserCorrection string         `gorm:"not null" json:"user_correction"`
	CreatedAt      time.Time      `json:"created_at"`

	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Fragrance *Fragrance `gorm:"foreignKey:FragranceID" json:"fragrance,omitempty"`
}

func (AICategorFeedback) TableName() string {
	return "ai_categor_feedbacks"
}
