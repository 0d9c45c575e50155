package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
)

type AIController struct {
	aiService service.AIService
}

func NewAIController(aiService service.AIService) *AIController {
	return &AIController{
		aiService: aiService,
	}
}

type CategorizeRequest struct {
	FragranceID uint `json:"fragrance_id" binding:"required"`
}

type FeedbackRequest struct {
	FragranceID    uint   `json:"fragrance_id" binding:"required"`
	CategoryType   string `json:"category_type" binding:"required"`
	AISuggestion   string `json:"ai_suggestion" binding:"required"`
	UserCorrection string `json:"user_correction" binding:"required"`
}

type ApplyCategorizationRequest struct {
	Seasons    []string `json:"seasons"`
	Occasions  []string `json:"occasions"`
	Moods      []string `json:"moods"`
	Confidence float64  `json:"confidence"`
}

// Categorize asks the LLM to suggest seasons, occasions and moods for a fragrance.
// Suggestions are returned to the caller, never written to the catalog.
// POST /api/ai/categorize
func (ctrl *AIController) Categorize(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid categorization request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Fragrance ID is required")
		return
	}

	categorization, err := ctrl.aiService.CategorizeFragrance(c.Request.Context(), req.FragranceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFragranceNotFound):
			apperrors.RespondNotFound(c, "Fragrance not found")
		case errors.Is(err, service.ErrAINotConfigured):
			apperrors.RespondWithError(c, http.StatusServiceUnavailable, apperrors.AIServiceError, "AI categorization is not available")
		case errors.Is(err, service.ErrAIServiceUnavailable):
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.AIServiceError, "AI categorization failed, please try again")
		default:
			log.Error("Categorization failed", err, map[string]interface{}{
				"fragrance_id": req.FragranceID,
			})
			apperrors.RespondInternalError(c, "")
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"categorization": categorization,
	})
}

// Feedback records a user's correction of an AI suggestion
// POST /api/ai/feedback
func (ctrl *AIController) Feedback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid feedback request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Fragrance ID, category type, suggestion and correction are required")
		return
	}

	feedback, err := ctrl.aiService.SubmitFeedback(
		userID,
		req.FragranceID,
		model.AICategoryType(req.CategoryType),
		req.AISuggestion,
		req.UserCorrection,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCategoryType):
			apperrors.BadRequest(c, "Category type must be season, occasion or mood")
		case errors.Is(err, service.ErrFragranceNotFound):
			apperrors.RespondNotFound(c, "Fragrance not found")
		default:
			log.Error("Failed to record AI feedback", err, map[string]interface{}{
				"user_id":      userID,
				"fragrance_id": req.FragranceID,
			})
			apperrors.RespondInternalError(c, "")
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, gin.H{
		"feedback": feedback,
	})
}

// Apply writes an accepted categorization onto the fragrance (admin only)
// PUT /api/admin/fragrances/:id/categorization
func (ctrl *AIController) Apply(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fragranceID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	var req ApplyCategorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid apply categorization request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid categorization payload")
		return
	}

	fragrance, err := ctrl.aiService.ApplyCategorization(fragranceID, service.Categorization{
		FragranceID: fragranceID,
		Seasons:     req.Seasons,
		Occasions:   req.Occasions,
		Moods:       req.Moods,
		Confidence:  req.Confidence,
	})
	if err != nil {
		if errors.Is(err, service.ErrFragranceNotFound) {
			apperrors.RespondNotFound(c, "Fragrance not found")
			return
		}
		log.Error("Failed to apply categorization", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"fragrance": fragrance,
	})
}
