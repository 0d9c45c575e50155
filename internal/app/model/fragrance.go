package model

import (
	"time"

	"github.com/scentarena/fragrance-battle-backend/pkg/util"
	"gorm.io/gorm"
)

type Concentration string

const (
	ConcentrationEDC     Concentration = "eau_de_cologne"
	ConcentrationEDT     Concentration = "eau_de_toilette"
	ConcentrationEDP     Concentration = "eau_de_parfum"
	ConcentrationParfum  Concentration = "parfum"
	ConcentrationBodyOil Concentration = "body_oil"
)

// Fragrance is a catalog entry. Identity fields (name, brand, year) are
// immutable after import; ratings, popularity and AI tags are updated by
// admin endpoints and background jobs.
type Fragrance struct {
	ID            uint          `gorm:"primarykey" json:"id"`
	Name          string        `gorm:"not null;index" json:"name"`
	Brand         string        `gorm:"not null;index" json:"brand"`
	Year          int           `json:"year"`
	Concentration Concentration `gorm:"type:varchar(30)" json:"concentration"`
	ImageURL      string        `json:"image_url"`

	TopNotes    []string `gorm:"serializer:json" json:"top_notes"`
	MiddleNotes []string `gorm:"serializer:json" json:"middle_notes"`
	BaseNotes   []string `gorm:"serializer:json" json:"base_notes"`

	// Community rating is externally sourced, 0..5.
	CommunityRating float64 `gorm:"default:0" json:"community_rating"`
	Popularity      float64 `gorm:"default:0;index" json:"popularity"`

	// AI-derived categorization tags.
	AISeasons    []string `gorm:"serializer:json" json:"ai_seasons"`
	AIOccasions  []string `gorm:"serializer:json" json:"ai_occasions"`
	AIMoods      []string `gorm:"serializer:json" json:"ai_moods"`
	AIConfidence float64  `json:"ai_confidence"`

	Verified bool `gorm:"default:false" json:"verified"`

	// Market intelligence fields maintained by admin tooling.
	Priority          int    `gorm:"default:0" json:"priority"`
	Trending          bool   `gorm:"default:false" json:"trending"`
	TargetDemographic string `json:"target_demographic"`

	// DisplayName is the normalized name served to clients; computed on
	// read, never stored.
	DisplayName string `gorm:"-" json:"display_name"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Fragrance) TableName() string {
	return "fragrances"
}

// AfterFind populates DisplayName so every fetched fragrance carries the
// cleaned-up name without callers having to remember to do it.
func (f *Fragrance) AfterFind(_ *gorm.DB) error {
	f.DisplayName = util.CleanFragranceName(f.Name, f.Brand)
	return nil
}
