package model

import (
	"time"

	"gorm.io/gorm"
)

type BattleStatus string

const (
	BattleStatusActive    BattleStatus = "ACTIVE"
	BattleStatusCompleted BattleStatus = "COMPLETED"
	BattleStatusCancelled BattleStatus = "CANCELLED"
)

// Battle is a user-created poll comparing 2 to 10 fragrances by vote count.
// A COMPLETED battle and its items are immutable.
type Battle struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	UserID      uint         `gorm:"not null;index" json:"user_id"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      BattleStatus `gorm:"type:varchar(20);default:'ACTIVE';index" json:"status"`

	// ShareToken allows read-only access for users who did not create the
	// battle.
	ShareToken  string     `gorm:"uniqueIndex;not null" json:"share_token"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User  *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items []BattleItem `gorm:"foreignKey:BattleID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Votes []Vote       `gorm:"foreignKey:BattleID;constraint:OnDelete:CASCADE" json:"votes,omitempty"`
}

func (Battle) TableName() string {
	return "battles"
}

type BattleItem struct {
	ID          uint `gorm:"primarykey" json:"id"`
	BattleID    uint `gorm:"not null;uniqueIndex:idx_battle_items_battle_fragrance" json:"battle_id"`
	FragranceID uint `gorm:"not null;uniqueIndex:idx_battle_items_battle_fragrance" json:"fragrance_id"`
	VoteCount   int  `gorm:"default:0" json:"vote_count"`
	Position    int  `gorm:"default:0" json:"position"`
	IsWinner    bool `gorm:"default:false" json:"is_winner"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Fragrance *Fragrance `gorm:"foreignKey:FragranceID" json:"fragrance,omitempty"`
}

func (BattleItem) TableName() string {
	return "battle_items"
}

// Vote records a single user's choice within a battle. One vote per
// (user, battle), enforced by the composite unique index.
type Vote struct {
	ID          uint `gorm:"primarykey" json:"id"`
	BattleID    uint `gorm:"not null;uniqueIndex:idx_votes_battle_user" json:"battle_id"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_votes_battle_user" json:"user_id"`
	FragranceID uint `gorm:"not null" json:"fragrance_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (Vote) TableName() string {
	return "votes"
}
