package service

import (
	"errors"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

var ErrFragranceNotFound = errors.New("fragrance not found")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type FragranceSort string

const (
	FragranceSortName       FragranceSort = "name"
	FragranceSortYear       FragranceSort = "year"
	FragranceSortRating     FragranceSort = "rating"
	FragranceSortPopularity FragranceSort = "popularity"
	FragranceSortCreatedAt  FragranceSort = "created_at"
)

type FragranceListOptions struct {
	Brand         string
	Season        string
	Occasion      string
	Mood          string
	Concentration *model.Concentration
	Verified      *bool
	Search        string
	Sort          FragranceSort
	SortAscending bool
	Page          int
	PageSize      int
}

// FragranceList is one page of catalog results.
type FragranceList struct {
	Fragrances []model.Fragrance `json:"fragrances"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
}

type FragranceService interface {
	ListFragrances(opts FragranceListOptions) (*FragranceList, error)
	GetFragranceByID(id uint) (*model.Fragrance, error)
	ListBrands() ([]repository.BrandSummary, error)
	CreateFragrance(fragrance *model.Fragrance) error
	UpdateFragrance(id uint, update FragranceUpdate) (*model.Fragrance, error)
	DeleteFragrance(id uint) error
}

// FragranceUpdate carries the mutable catalog fields. Nil pointers leave
// the stored value untouched.
type FragranceUpdate struct {
	Name              *string
	Brand             *string
	Year              *int
	Concentration     *model.Concentration
	ImageURL          *string
	TopNotes          []string
	MiddleNotes       []string
	BaseNotes         []string
	CommunityRating   *float64
	Priority          *int
	Trending          *bool
	TargetDemographic *string
}

type fragranceService struct {
	fragranceRepo repository.FragranceRepository
}

func NewFragranceService(fragranceRepo repository.FragranceRepository) FragranceService {
	return &fragranceService{fragranceRepo: fragranceRepo}
}

func (s *fragranceService) ListFragrances(opts FragranceListOptions) (*FragranceList, error) {
	logger.Debug("Listing fragrances", map[string]interface{}{
		"brand":    opts.Brand,
		"season":   opts.Season,
		"occasion": opts.Occasion,
		"mood":     opts.Mood,
		"search":   opts.Search,
		"sort":     opts.Sort,
		"page":     opts.Page,
	})

	page := opts.Page
	if page < 1 {
		page = 1
	}
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := repository.FragranceFilter{
		Brand:         opts.Brand,
		Season:        opts.Season,
		Occasion:      opts.Occasion,
		Mood:          opts.Mood,
		Concentration: opts.Concentration,
		Verified:      opts.Verified,
		Search:        opts.Search,
		SortAscending: opts.SortAscending,
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	}

	switch opts.Sort {
	case FragranceSortName:
		filter.SortBy = repository.FragranceSortName
	case FragranceSortYear:
		filter.SortBy = repository.FragranceSortYear
	case FragranceSortRating:
		filter.SortBy = repository.FragranceSortRating
	case FragranceSortCreatedAt:
		filter.SortBy = repository.FragranceSortCreatedAt
	case FragranceSortPopularity:
		fallthrough
	default:
		filter.SortBy = repository.FragranceSortPopularity
	}

	fragrances, total, err := s.fragranceRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list fragrances", err)
		return nil, err
	}

	logger.Info("Fragrances listed", map[string]interface{}{
		"count": len(fragrances),
		"total": total,
	})

	return &FragranceList{
		Fragrances: fragrances,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (s *fragranceService) GetFragranceByID(id uint) (*model.Fragrance, error) {
	logger.Debug("Fetching fragrance by ID", map[string]interface{}{
		"fragrance_id": id,
	})

	fragrance, err := s.fragranceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Fragrance not found", map[string]interface{}{
				"fragrance_id": id,
			})
			return nil, ErrFragranceNotFound
		}
		logger.Error("Failed to fetch fragrance", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return nil, err
	}

	return fragrance, nil
}

func (s *fragranceService) ListBrands() ([]repository.BrandSummary, error) {
	brands, err := s.fragranceRepo.ListBrands()
	if err != nil {
		logger.Error("Failed to list brands", err)
		return nil, err
	}
	return brands, nil
}

func (s *fragranceService) CreateFragrance(fragrance *model.Fragrance) error {
	logger.Info("Creating fragrance", map[string]interface{}{
		"name":  fragrance.Name,
		"brand": fragrance.Brand,
	})

	if err := s.fragranceRepo.Create(fragrance); err != nil {
		logger.Error("Failed to create fragrance", err, map[string]interface{}{
			"name":  fragrance.Name,
			"brand": fragrance.Brand,
		})
		return err
	}

	logger.Info("Fragrance created successfully", map[string]interface{}{
		"fragrance_id": fragrance.ID,
	})
	return nil
}

func (s *fragranceService) UpdateFragrance(id uint, update FragranceUpdate) (*model.Fragrance, error) {
	logger.Info("Updating fragrance", map[string]interface{}{
		"fragrance_id": id,
	})

	fragrance, err := s.fragranceRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Fragrance not found for update", map[string]interface{}{
				"fragrance_id": id,
			})
			return nil, ErrFragranceNotFound
		}
		logger.Error("Failed to fetch fragrance for update", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return nil, err
	}

	if update.Name != nil {
		fragrance.Name = *update.Name
	}
	if update.Brand != nil {
		fragrance.Brand = *update.Brand
	}
	if update.Year != nil {
		fragrance.Year = *update.Year
	}
	if update.Concentration != nil {
		fragrance.Concentration = *update.Concentration
	}
	if update.ImageURL != nil {
		fragrance.ImageURL = *update.ImageURL
	}
	if update.TopNotes != nil {
		fragrance.TopNotes = update.TopNotes
	}
	if update.MiddleNotes != nil {
		fragrance.MiddleNotes = update.MiddleNotes
	}
	if update.BaseNotes != nil {
		fragrance.BaseNotes = update.BaseNotes
	}
	if update.CommunityRating != nil {
		fragrance.CommunityRating = *update.CommunityRating
	}
	if update.Priority != nil {
		fragrance.Priority = *update.Priority
	}
	if update.Trending != nil {
		fragrance.Trending = *update.Trending
	}
	if update.TargetDemographic != nil {
		fragrance.TargetDemographic = *update.TargetDemographic
	}

	if err := s.fragranceRepo.Update(fragrance); err != nil {
		logger.Error("Failed to update fragrance", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return nil, err
	}

	logger.Info("Fragrance updated successfully", map[string]interface{}{
		"fragrance_id": id,
	})

	return fragrance, nil
}

func (s *fragranceService) DeleteFragrance(id uint) error {
	logger.Info("Deleting fragrance", map[string]interface{}{
		"fragrance_id": id,
	})

	if _, err := s.fragranceRepo.FindByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFragranceNotFound
		}
		return err
	}

	if err := s.fragranceRepo.Delete(id); err != nil {
		logger.Error("Failed to delete fragrance", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return err
	}

	logger.Info("Fragrance deleted successfully", map[string]interface{}{
		"fragrance_id": id,
	})
	return nil
}
