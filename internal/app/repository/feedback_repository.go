package repository

import (
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"gorm.io/gorm"
)

type FeedbackRepository interface {
	Create(feedback *model.AICategorFeedback) error
	FindByFragrance(fragranceID uint) ([]model.AICategorFeedback, error)
	Count() (int64, error)
}

type feedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

func (r *feedbackRepository) Create(feedback *model.AICategorFeedback) error {
	logger.Debug("Creating AI feedback in database", map[string]interface{}{
		"user_id":       feedback.UserID,
		"fragrance_id":  feedback.FragranceID,
		"category_type": feedback.CategoryType,
	})

	if err := r.db.Create(feedback).Error; err != nil {
		logger.Error("Failed to create AI feedback in database", err, map[string]interface{}{
			"user_id":      feedback.UserID,
			"fragrance_id": feedback.FragranceID,
		})
		return err
	}
	return nil
}

func (r *feedbackRepository) FindByFragrance(fragranceID uint) ([]model.AICategorFeedback, error) {
	var feedback []model.AICategorFeedback
	err := r.db.Where("fragrance_id = ?", fragranceID).
		Order("created_at DESC").
		Find(&feedback).Error
	if err != nil {
		logger.Error("Failed to find AI feedback by fragrance in database", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		return nil, err
	}
	return feedback, nil
}

func (r *feedbackRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.AICategorFeedback{}).Count(&count).Error; err != nil {
		logger.Error("Failed to count AI feedback in database", err)
		return 0, err
	}
	return count, nil
}
