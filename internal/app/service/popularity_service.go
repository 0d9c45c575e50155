package service

import (
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
)

// Popularity score weights. Winning a battle says more about a fragrance
// than a single vote or a collection save.
const (
	winWeight  = 5.0
	voteWeight = 1.0
	saveWeight = 2.0
)

type PopularityService interface {
	RecalculateAll() error
}

type popularityService struct {
	fragranceRepo  repository.FragranceRepository
	battleRepo     repository.BattleRepository
	collectionRepo repository.CollectionRepository
}

func NewPopularityService(
	fragranceRepo repository.FragranceRepository,
	battleRepo repository.BattleRepository,
	collectionRepo repository.CollectionRepository,
) PopularityService {
	return &popularityService{
		fragranceRepo:  fragranceRepo,
		battleRepo:     battleRepo,
		collectionRepo: collectionRepo,
	}
}

// RecalculateAll rebuilds the popularity score of every fragrance from
// battle wins, votes received and collection saves.
func (s *popularityService) RecalculateAll() error {
	wins, err := s.battleRepo.WinsByFragrance()
	if err != nil {
		return err
	}

	votes, err := s.battleRepo.VotesByFragrance()
	if err != nil {
		return err
	}

	fragrances, err := s.fragranceRepo.FindAll()
	if err != nil {
		return err
	}

	updated := 0
	for _, fragrance := range fragrances {
		saves, err := s.collectionRepo.CountSaves(fragrance.ID)
		if err != nil {
			logger.Error("Failed to count saves for fragrance", err, map[string]interface{}{
				"fragrance_id": fragrance.ID,
			})
			continue
		}

		score := winWeight*float64(wins[fragrance.ID]) +
			voteWeight*float64(votes[fragrance.ID]) +
			saveWeight*float64(saves)

		if score == fragrance.Popularity {
			continue
		}

		if err := s.fragranceRepo.UpdatePopularity(fragrance.ID, score); err != nil {
			logger.Error("Failed to update fragrance popularity", err, map[string]interface{}{
				"fragrance_id": fragrance.ID,
			})
			continue
		}
		updated++
	}

	logger.Info("Popularity recalculation finished", map[string]interface{}{
		"fragrances": len(fragrances),
		"updated":    updated,
	})

	return nil
}
