package repository

import (
	"fmt"

	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

type FragranceSort string

const (
	FragranceSortName       FragranceSort = "name"
	FragranceSortYear       FragranceSort = "year"
	FragranceSortRating     FragranceSort = "rating"
	FragranceSortPopularity FragranceSort = "popularity"
	FragranceSortCreatedAt  FragranceSort = "created_at"
)

type FragranceFilter struct {
	Brand         string
	Season        string
	Occasion      string
	Mood          string
	Concentration *model.Concentration
	Verified      *bool
	Search        string
	SortBy        FragranceSort
	SortAscending bool
	Limit         int
	Offset        int
}

// BrandSummary is one row of the distinct-brand listing.
type BrandSummary struct {
	Brand          string `json:"brand"`
	FragranceCount int64  `json:"fragrance_count"`
}

type FragranceRepository interface {
	Create(fragrance *model.Fragrance) error
	FindWithFilter(filter FragranceFilter) ([]model.Fragrance, int64, error)
	FindByID(id uint) (*model.Fragrance, error)
	FindByIDs(ids []uint) ([]model.Fragrance, error)
	FindAll() ([]model.Fragrance, error)
	ListBrands() ([]BrandSummary, error)
	Update(fragrance *model.Fragrance) error
	Delete(id uint) error
	Count() (int64, error)
	UpdatePopularity(id uint, popularity float64) error
}

type fragranceRepository struct {
	db *gorm.DB
}

func NewFragranceRepository(db *gorm.DB) FragranceRepository {
	return &fragranceRepository{db: db}
}

func (r *fragranceRepository) Create(fragrance *model.Fragrance) error {
	logger.Debug("Creating fragrance in database", map[string]interface{}{
		"name":  fragrance.Name,
		"brand": fragrance.Brand,
	})

	if err := r.db.Create(fragrance).Error; err != nil {
		logger.Error("Failed to create fragrance in database", err, map[string]interface{}{
			"name":  fragrance.Name,
			"brand": fragrance.Brand,
		})
		return err
	}
	return nil
}

func (r *fragranceRepository) FindWithFilter(filter FragranceFilter) ([]model.Fragrance, int64, error) {
	logger.Debug("Finding fragrances with filter", map[string]interface{}{
		"brand":     filter.Brand,
		"season":    filter.Season,
		"occasion":  filter.Occasion,
		"mood":      filter.Mood,
		"verified":  filter.Verified,
		"search":    filter.Search,
		"sort_by":   filter.SortBy,
		"ascending": filter.SortAscending,
		"limit":     filter.Limit,
		"offset":    filter.Offset,
	})

	query := r.db.Model(&model.Fragrance{})

	if filter.Brand != "" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Concentration != nil {
		query = query.Where("concentration = ?", *filter.Concentration)
	}
	if filter.Verified != nil {
		query = query.Where("verified = ?", *filter.Verified)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR brand LIKE ?", pattern, pattern)
	}
	// AI tag lists are serialized JSON arrays; a LIKE against the quoted
	// value is portable across Postgres and the SQLite test driver.
	if filter.Season != "" {
		query = query.Where("ai_seasons LIKE ?", "%\""+filter.Season+"\"%")
	}
	if filter.Occasion != "" {
		query = query.Where("ai_occasions LIKE ?", "%\""+filter.Occasion+"\"%")
	}
	if filter.Mood != "" {
		query = query.Where("ai_moods LIKE ?", "%\""+filter.Mood+"\"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count fragrances in database", err)
		return nil, 0, err
	}

	query = query.Order(orderClause(filter.SortBy, filter.SortAscending))
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var fragrances []model.Fragrance
	if err := query.Find(&fragrances).Error; err != nil {
		logger.Error("Failed to find fragrances in database", err)
		return nil, 0, err
	}

	return fragrances, total, nil
}

func orderClause(sortBy FragranceSort, ascending bool) string {
	var column string
	switch sortBy {
	case FragranceSortName:
		column = "name"
	case FragranceSortYear:
		column = "year"
	case FragranceSortRating:
		column = "community_rating"
	case FragranceSortPopularity:
		column = "popularity"
	case FragranceSortCreatedAt:
		column = "created_at"
	default:
		column = "popularity"
	}

	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

func (r *fragranceRepository) FindByID(id uint) (*model.Fragrance, error) {
	var fragrance model.Fragrance
	if err := r.db.First(&fragrance, id).Error; err != nil {
		logger.Error("Failed to find fragrance by ID in database", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return nil, err
	}
	return &fragrance, nil
}

func (r *fragranceRepository) FindByIDs(ids []uint) ([]model.Fragrance, error) {
	var fragrances []model.Fragrance
	if err := r.db.Where("id IN ?", ids).Find(&fragrances).Error; err != nil {
		logger.Error("Failed to find fragrances by IDs in database", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return fragrances, nil
}

func (r *fragranceRepository) FindAll() ([]model.Fragrance, error) {
	var fragrances []model.Fragrance
	if err := r.db.Order("brand ASC, name ASC").Find(&fragrances).Error; err != nil {
		logger.Error("Failed to find all fragrances in database", err)
		return nil, err
	}
	return fragrances, nil
}

func (r *fragranceRepository) ListBrands() ([]BrandSummary, error) {
	var brands []BrandSummary
	err := r.db.Model(&model.Fragrance{}).
		Select("brand, COUNT(*) AS fragrance_count").
		Group("brand").
		Order("brand ASC").
		Scan(&brands).Error
	if err != nil {
		logger.Error("Failed to list brands in database", err)
		return nil, err
	}
	return brands, nil
}

func (r *fragranceRepository) Update(fragrance *model.Fragrance) error {
	logger.Debug("Updating fragrance in database", map[string]interface{}{
		"fragrance_id": fragrance.ID,
	})

	if err := r.db.Save(fragrance).Error; err != nil {
		logger.Error("Failed to update fragrance in database", err, map[string]interface{}{
			"fragrance_id": fragrance.ID,
		})
		return err
	}
	return nil
}

func (r *fragranceRepository) Delete(id uint) error {
	if err := r.db.Delete(&model.Fragrance{}, id).Error; err != nil {
		logger.Error("Failed to delete fragrance from database", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return err
	}
	return nil
}

func (r *fragranceRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.Fragrance{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count fragrances in database", err)
		return 0, err
	}
	return count, nil
}

func (r *fragranceRepository) UpdatePopularity(id uint, popularity float64) error {
	err := r.db.Model(&model.Fragrance{}).
		Where("id = ?", id).
		Update("popularity", popularity).Error
	if err != nil {
		logger.Error("Failed to update fragrance popularity in database", err, map[string]interface{}{
			"fragrance_id": id,
		})
		return err
	}
	return nil
}
