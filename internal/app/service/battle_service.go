package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrBattleNotFound       = errors.New("battle not found")
	ErrBattleAccessDenied   = errors.New("battle access denied")
	ErrBattleNotActive      = errors.New("battle is not active")
	ErrAlreadyVoted         = errors.New("user has already voted in this battle")
	ErrFragranceNotInBattle = errors.New("fragrance is not part of this battle")
	ErrInvalidBattleSize    = errors.New("battle requires between 2 and 10 fragrances")
	ErrDuplicateBattleItem  = errors.New("battle contains the same fragrance twice")
)

const (
	minBattleItems = 2
	maxBattleItems = 10
)

type BattleService interface {
	ListBattles(userID uint, status *model.BattleStatus) ([]model.Battle, error)
	GetBattle(battleID uint) (*model.Battle, error)
	GetBattleByShareToken(token string) (*model.Battle, error)
	CreateBattle(userID uint, title, description string, fragranceIDs []uint) (*model.Battle, error)
	Vote(userID, battleID, fragranceID uint) (*model.Battle, error)
	CompleteBattle(userID, battleID uint) (*model.Battle, error)
	CancelBattle(userID, battleID uint) (*model.Battle, error)
	DeleteBattle(userID, battleID uint) error
}

type battleService struct {
	battleRepo    repository.BattleRepository
	fragranceRepo repository.FragranceRepository
}

func NewBattleService(
	battleRepo repository.BattleRepository,
	fragranceRepo repository.FragranceRepository,
) BattleService {
	return &battleService{
		battleRepo:    battleRepo,
		fragranceRepo: fragranceRepo,
	}
}

func (s *battleService) ListBattles(userID uint, status *model.BattleStatus) ([]model.Battle, error) {
	logger.Debug("Listing battles", map[string]interface{}{
		"user_id": userID,
		"status":  status,
	})

	battles, err := s.battleRepo.FindByUser(userID, status)
	if err != nil {
		logger.Error("Failed to list battles", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return battles, nil
}

func (s *battleService) GetBattle(battleID uint) (*model.Battle, error) {
	battle, err := s.battleRepo.FindByIDWithItems(battleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Battle not found", map[string]interface{}{
				"battle_id": battleID,
			})
			return nil, ErrBattleNotFound
		}
		logger.Error("Failed to fetch battle", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return nil, err
	}
	return battle, nil
}

func (s *battleService) GetBattleByShareToken(token string) (*model.Battle, error) {
	battle, err := s.battleRepo.FindByShareToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Battle not found by share token", nil)
			return nil, ErrBattleNotFound
		}
		logger.Error("Failed to fetch battle by share token", err)
		return nil, err
	}
	return battle, nil
}

func (s *battleService) CreateBattle(userID uint, title, description string, fragranceIDs []uint) (*model.Battle, error) {
	logger.Info("Creating battle", map[string]interface{}{
		"user_id": userID,
		"title":   title,
		"items":   len(fragranceIDs),
	})

	if len(fragranceIDs) < minBattleItems || len(fragranceIDs) > maxBattleItems {
		logger.Warn("Battle creation failed: invalid item count", map[string]interface{}{
			"user_id": userID,
			"items":   len(fragranceIDs),
		})
		return nil, ErrInvalidBattleSize
	}

	seen := make(map[uint]bool, len(fragranceIDs))
	for _, id := range fragranceIDs {
		if seen[id] {
			logger.Warn("Battle creation failed: duplicate fragrance", map[string]interface{}{
				"user_id":      userID,
				"fragrance_id": id,
			})
			return nil, ErrDuplicateBattleItem
		}
		seen[id] = true
	}

	fragrances, err := s.fragranceRepo.FindByIDs(fragranceIDs)
	if err != nil {
		logger.Error("Failed to fetch battle fragrances", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if len(fragrances) != len(fragranceIDs) {
		logger.Warn("Battle creation failed: unknown fragrance", map[string]interface{}{
			"user_id":   userID,
			"requested": len(fragranceIDs),
			"found":     len(fragrances),
		})
		return nil, ErrFragranceNotFound
	}

	battle := &model.Battle{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      model.BattleStatusActive,
		ShareToken:  uuid.NewString(),
	}
	for i, id := range fragranceIDs {
		battle.Items = append(battle.Items, model.BattleItem{
			FragranceID: id,
			Position:    i,
		})
	}

	if err := s.battleRepo.Create(battle); err != nil {
		logger.Error("Failed to create battle", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Battle created successfully", map[string]interface{}{
		"battle_id": battle.ID,
		"user_id":   userID,
	})

	return s.battleRepo.FindByIDWithItems(battle.ID)
}

func (s *battleService) Vote(userID, battleID, fragranceID uint) (*model.Battle, error) {
	logger.Info("Casting vote", map[string]interface{}{
		"battle_id":    battleID,
		"user_id":      userID,
		"fragrance_id": fragranceID,
	})

	battle, err := s.battleRepo.FindByIDWithItems(battleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBattleNotFound
		}
		return nil, err
	}

	if battle.Status != model.BattleStatusActive {
		logger.Warn("Vote rejected: battle not active", map[string]interface{}{
			"battle_id": battleID,
			"status":    battle.Status,
		})
		return nil, ErrBattleNotActive
	}

	inBattle := false
	for _, item := range battle.Items {
		if item.FragranceID == fragranceID {
			inBattle = true
			break
		}
	}
	if !inBattle {
		logger.Warn("Vote rejected: fragrance not in battle", map[string]interface{}{
			"battle_id":    battleID,
			"fragrance_id": fragranceID,
		})
		return nil, ErrFragranceNotInBattle
	}

	if _, err := s.battleRepo.FindVote(battleID, userID); err == nil {
		logger.Warn("Vote rejected: user already voted", map[string]interface{}{
			"battle_id": battleID,
			"user_id":   userID,
		})
		return nil, ErrAlreadyVoted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vote := &model.Vote{
		BattleID:    battleID,
		UserID:      userID,
		FragranceID: fragranceID,
	}
	if err := s.battleRepo.CreateVote(vote); err != nil {
		// Concurrent votes from one user race past the read above; the
		// unique index is the authority.
		if apperrors.IsUniqueViolation(err) {
			logger.Warn("Vote rejected by unique constraint", map[string]interface{}{
				"battle_id": battleID,
				"user_id":   userID,
			})
			return nil, ErrAlreadyVoted
		}
		logger.Error("Failed to record vote", err, map[string]interface{}{
			"battle_id": battleID,
			"user_id":   userID,
		})
		return nil, err
	}

	if err := s.battleRepo.IncrementVoteCount(battleID, fragranceID); err != nil {
		logger.Error("Failed to increment vote count", err, map[string]interface{}{
			"battle_id":    battleID,
			"fragrance_id": fragranceID,
		})
		return nil, err
	}

	logger.Info("Vote recorded", map[string]interface{}{
		"battle_id":    battleID,
		"user_id":      userID,
		"fragrance_id": fragranceID,
	})

	return s.battleRepo.FindByIDWithItems(battleID)
}

func (s *battleService) CompleteBattle(userID, battleID uint) (*model.Battle, error) {
	logger.Info("Completing battle", map[string]interface{}{
		"battle_id": battleID,
		"user_id":   userID,
	})

	battle, err := s.ownedBattle(userID, battleID)
	if err != nil {
		return nil, err
	}

	if battle.Status != model.BattleStatusActive {
		logger.Warn("Battle completion rejected: not active", map[string]interface{}{
			"battle_id": battleID,
			"status":    battle.Status,
		})
		return nil, ErrBattleNotActive
	}

	// Every item sharing the highest vote count wins. A battle with no
	// votes completes with no winners.
	maxVotes := 0
	for _, item := range battle.Items {
		if item.VoteCount > maxVotes {
			maxVotes = item.VoteCount
		}
	}
	if maxVotes > 0 {
		for i := range battle.Items {
			if battle.Items[i].VoteCount == maxVotes {
				battle.Items[i].IsWinner = true
				if err := s.battleRepo.UpdateItem(&battle.Items[i]); err != nil {
					return nil, err
				}
			}
		}
	}

	now := time.Now()
	battle.Status = model.BattleStatusCompleted
	battle.CompletedAt = &now
	if err := s.battleRepo.Update(battle); err != nil {
		logger.Error("Failed to complete battle", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return nil, err
	}

	logger.Info("Battle completed", map[string]interface{}{
		"battle_id": battleID,
		"max_votes": maxVotes,
	})

	return s.battleRepo.FindByIDWithItems(battleID)
}

func (s *battleService) CancelBattle(userID, battleID uint) (*model.Battle, error) {
	battle, err := s.ownedBattle(userID, battleID)
	if err != nil {
		return nil, err
	}

	if battle.Status != model.BattleStatusActive {
		logger.Warn("Battle cancellation rejected: not active", map[string]interface{}{
			"battle_id": battleID,
			"status":    battle.Status,
		})
		return nil, ErrBattleNotActive
	}

	battle.Status = model.BattleStatusCancelled
	if err := s.battleRepo.Update(battle); err != nil {
		logger.Error("Failed to cancel battle", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return nil, err
	}

	logger.Info("Battle cancelled", map[string]interface{}{
		"battle_id": battleID,
		"user_id":   userID,
	})

	return battle, nil
}

func (s *battleService) DeleteBattle(userID, battleID uint) error {
	if _, err := s.ownedBattle(userID, battleID); err != nil {
		return err
	}

	if err := s.battleRepo.Delete(battleID); err != nil {
		logger.Error("Failed to delete battle", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return err
	}

	logger.Info("Battle deleted", map[string]interface{}{
		"battle_id": battleID,
		"user_id":   userID,
	})
	return nil
}

func (s *battleService) ownedBattle(userID, battleID uint) (*model.Battle, error) {
	battle, err := s.battleRepo.FindByIDWithItems(battleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Battle not found", map[string]interface{}{
				"battle_id": battleID,
			})
			return nil, ErrBattleNotFound
		}
		logger.Error("Failed to fetch battle", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return nil, err
	}

	if battle.UserID != userID {
		logger.Warn("Battle access denied", map[string]interface{}{
			"battle_id": battleID,
			"owner_id":  battle.UserID,
			"user_id":   userID,
		})
		return nil, ErrBattleAccessDenied
	}

	return battle, nil
}
