package repository

import (
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

type BattleRepository interface {
	Create(battle *model.Battle) error
	FindByUser(userID uint, status *model.BattleStatus) ([]model.Battle, error)
	FindByID(id uint) (*model.Battle, error)
	FindByIDWithItems(id uint) (*model.Battle, error)
	FindByShareToken(token string) (*model.Battle, error)
	Update(battle *model.Battle) error
	Delete(id uint) error
	Count() (int64, error)
	CountByUser(userID uint) (int64, error)

	CreateVote(vote *model.Vote) error
	FindVote(battleID, userID uint) (*model.Vote, error)
	IncrementVoteCount(battleID, fragranceID uint) error
	CountVotes() (int64, error)
	UpdateItem(item *model.BattleItem) error
	WinsByFragrance() (map[uint]int64, error)
	VotesByFragrance() (map[uint]int64, error)
}

type battleRepository struct {
	db *gorm.DB
}

func NewBattleRepository(db *gorm.DB) BattleRepository {
	return &battleRepository{db: db}
}

func (r *battleRepository) Create(battle *model.Battle) error {
	logger.Debug("Creating battle in database", map[string]interface{}{
		"user_id": battle.UserID,
		"title":   battle.Title,
		"items":   len(battle.Items),
	})

	// Battle and its items land in one transaction; a battle with a
	// partial item list is never visible.
	if err := r.db.Create(battle).Error; err != nil {
		logger.Error("Failed to create battle in database", err, map[string]interface{}{
			"user_id": battle.UserID,
		})
		return err
	}
	return nil
}

func (r *battleRepository) FindByUser(userID uint, status *model.BattleStatus) ([]model.Battle, error) {
	query := r.db.Where("user_id = ?", userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var battles []model.Battle
	err := query.Preload("Items").
		Preload("Items.Fragrance").
		Order("created_at DESC").
		Find(&battles).Error
	if err != nil {
		logger.Error("Failed to find battles by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return battles, nil
}

func (r *battleRepository) FindByID(id uint) (*model.Battle, error) {
	var battle model.Battle
	if err := r.db.First(&battle, id).Error; err != nil {
		logger.Error("Failed to find battle by ID in database", err, map[string]interface{}{
			"battle_id": id,
		})
		return nil, err
	}
	return &battle, nil
}

func (r *battleRepository) FindByIDWithItems(id uint) (*model.Battle, error) {
	var battle model.Battle
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("battle_items.position ASC")
	}).Preload("Items.Fragrance").First(&battle, id).Error
	if err != nil {
		logger.Error("Failed to find battle with items in database", err, map[string]interface{}{
			"battle_id": id,
		})
		return nil, err
	}
	return &battle, nil
}

func (r *battleRepository) FindByShareToken(token string) (*model.Battle, error) {
	var battle model.Battle
	err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("battle_items.position ASC")
	}).Preload("Items.Fragrance").
		Where("share_token = ?", token).
		First(&battle).Error
	if err != nil {
		return nil, err
	}
	return &battle, nil
}

func (r *battleRepository) Update(battle *model.Battle) error {
	if err := r.db.Save(battle).Error; err != nil {
		logger.Error("Failed to update battle in database", err, map[string]interface{}{
			"battle_id": battle.ID,
		})
		return err
	}
	return nil
}

func (r *battleRepository) Delete(id uint) error {
	// Votes and items go first; SQLite in tests does not enforce the
	// cascade that Postgres handles through the FK constraints.
	if err := r.db.Where("battle_id = ?", id).Delete(&model.Vote{}).Error; err != nil {
		logger.Error("Failed to delete battle votes from database", err, map[string]interface{}{
			"battle_id": id,
		})
		return err
	}
	if err := r.db.Where("battle_id = ?", id).Delete(&model.BattleItem{}).Error; err != nil {
		logger.Error("Failed to delete battle items from database", err, map[string]interface{}{
			"battle_id": id,
		})
		return err
	}
	if err := r.db.Delete(&model.Battle{}, id).Error; err != nil {
		logger.Error("Failed to delete battle from database", err, map[string]interface{}{
			"battle_id": id,
		})
		return err
	}
	return nil
}

func (r *battleRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Battle{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count battles in database", err)
		return 0, err
	}
	return count, nil
}

func (r *battleRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Battle{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to count battles by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return 0, err
	}
	return count, nil
}

func (r *battleRepository) CreateVote(vote *model.Vote) error {
	logger.Debug("Creating vote in database", map[string]interface{}{
		"battle_id":    vote.BattleID,
		"user_id":      vote.UserID,
		"fragrance_id": vote.FragranceID,
	})

	if err := r.db.Create(vote).Error; err != nil {
		logger.Error("Failed to create vote in database", err, map[string]interface{}{
			"battle_id": vote.BattleID,
			"user_id":   vote.UserID,
		})
		return err
	}
	return nil
}

func (r *battleRepository) FindVote(battleID, userID uint) (*model.Vote, error) {
	var vote model.Vote
	err := r.db.Where("battle_id = ? AND user_id = ?", battleID, userID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *battleRepository) IncrementVoteCount(battleID, fragranceID uint) error {
	err := r.db.Model(&model.BattleItem{}).
		Where("battle_id = ? AND fragrance_id = ?", battleID, fragranceID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + 1")).Error
	if err != nil {
		logger.Error("Failed to increment vote count in database", err, map[string]interface{}{
			"battle_id":    battleID,
			"fragrance_id": fragranceID,
		})
		return err
	}
	return nil
}

func (r *battleRepository) CountVotes() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Vote{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count votes in database", err)
		return 0, err
	}
	return count, nil
}

func (r *battleRepository) UpdateItem(item *model.BattleItem) error {
	if err := r.db.Save(item).Error; err != nil {
		logger.Error("Failed to update battle item in database", err, map[string]interface{}{
			"battle_id":    item.BattleID,
			"fragrance_id": item.FragranceID,
		})
		return err
	}
	return nil
}

type fragranceTally struct {
	FragranceID uint
	Total       int64
}

// WinsByFragrance tallies completed-battle wins per fragrance, for the
// popularity recalculation job.
func (r *battleRepository) WinsByFragrance() (map[uint]int64, error) {
	var rows []fragranceTally
	err := r.db.Model(&model.BattleItem{}).
		Select("battle_items.fragrance_id, COUNT(*) AS total").
		Joins("JOIN battles ON battles.id = battle_items.battle_id").
		Where("battle_items.is_winner = ? AND battles.status = ?", true, model.BattleStatusCompleted).
		Group("battle_items.fragrance_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to tally battle wins in database", err)
		return nil, err
	}

	wins := make(map[uint]int64, len(rows))
	for _, row := range rows {
		wins[row.FragranceID] = row.Total
	}
	return wins, nil
}

// VotesByFragrance tallies votes received per fragrance across all battles.
func (r *battleRepository) VotesByFragrance() (map[uint]int64, error) {
	var rows []fragranceTally
	err := r.db.Model(&model.Vote{}).
		Select("fragrance_id, COUNT(*) AS total").
		Group("fragrance_id").
		Scan(&rows).Error
	if err != nil {
		logger.Error("Failed to tally votes in database", err)
		return nil, err
	}

	votes := make(map[uint]int64, len(rows))
	for _, row := range rows {
		votes[row.FragranceID] = row.Total
	}
	return votes, nil
}
