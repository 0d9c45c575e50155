package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	UserCount      int64 `json:"user_count"`
	FragranceCount int64 `json:"fragrance_count"`
	BattleCount    int64 `json:"battle_count"`
	VoteCount      int64 `json:"vote_count"`
	FeedbackCount  int64 `json:"feedback_count"`
}

type AdminService interface {
	GetStats() (*PlatformStats, error)
	VerifyFragrance(fragranceID uint, verified bool) (*model.Fragrance, error)
	ExportCatalog() ([]byte, error)
}

type adminService struct {
	userRepo      repository.UserRepository
	fragranceRepo repository.FragranceRepository
	battleRepo    repository.BattleRepository
	feedbackRepo  repository.FeedbackRepository
}

func NewAdminService(
	userRepo repository.UserRepository,
	fragranceRepo repository.FragranceRepository,
	battleRepo repository.BattleRepository,
	feedbackRepo repository.FeedbackRepository,
) AdminService {
	return &adminService{
		userRepo:      userRepo,
		fragranceRepo: fragranceRepo,
		battleRepo:    battleRepo,
		feedbackRepo:  feedbackRepo,
	}
}

func (s *adminService) GetStats() (*PlatformStats, error) {
	logger.Debug("Collecting platform stats", nil)

	stats := &PlatformStats{}
	var err error

	if stats.UserCount, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if stats.FragranceCount, err = s.fragranceRepo.Count(); err != nil {
		return nil, err
	}
	if stats.BattleCount, err = s.battleRepo.Count(); err != nil {
		return nil, err
	}
	if stats.VoteCount, err = s.battleRepo.CountVotes(); err != nil {
		return nil, err
	}
	if stats.FeedbackCount, err = s.feedbackRepo.Count(); err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *adminService) VerifyFragrance(fragranceID uint, verified bool) (*model.Fragrance, error) {
	logger.Info("Setting fragrance verification", map[string]interface{}{
		"fragrance_id": fragranceID,
		"verified":     verified,
	})

	fragrance, err := s.fragranceRepo.FindByID(fragranceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFragranceNotFound
		}
		return nil, err
	}

	fragrance.Verified = verified
	if err := s.fragranceRepo.Update(fragrance); err != nil {
		logger.Error("Failed to update fragrance verification", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		return nil, err
	}

	return fragrance, nil
}

var catalogExportHeaders = []string{
	"ID", "Name", "Brand", "Year", "Concentration",
	"Top Notes", "Middle Notes", "Base Notes",
	"Community Rating", "Popularity",
	"AI Seasons", "AI Occasions", "AI Moods", "AI Confidence",
	"Verified",
}

// ExportCatalog renders the full catalog as an XLSX workbook.
func (s *adminService) ExportCatalog() ([]byte, error) {
	logger.Info("Exporting fragrance catalog", nil)

	fragrances, err := s.fragranceRepo.FindAll()
	if err != nil {
		logger.Error("Failed to load catalog for export", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for col, header := range catalogExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, fragrance := range fragrances {
		values := []interface{}{
			fragrance.ID,
			fragrance.Name,
			fragrance.Brand,
			fragrance.Year,
			string(fragrance.Concentration),
			strings.Join(fragrance.TopNotes, ", "),
			strings.Join(fragrance.MiddleNotes, ", "),
			strings.Join(fragrance.BaseNotes, ", "),
			fragrance.CommunityRating,
			fragrance.Popularity,
			strings.Join(fragrance.AISeasons, ", "),
			strings.Join(fragrance.AIOccasions, ", "),
			strings.Join(fragrance.AIMoods, ", "),
			fragrance.AIConfidence,
			fragrance.Verified,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		logger.Error("Failed to render catalog export", err)
		return nil, err
	}

	logger.Info("Catalog exported", map[string]interface{}{
		"fragrances": len(fragrances),
	})

	return buf.Bytes(), nil
}
