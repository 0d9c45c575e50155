package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
)

type FragranceController struct {
	fragranceService service.FragranceService
}

func NewFragranceController(fragranceService service.FragranceService) *FragranceController {
	return &FragranceController{
		fragranceService: fragranceService,
	}
}

type CreateFragranceRequest struct {
	Name              string   `json:"name" binding:"required"`
	Brand             string   `json:"brand" binding:"required"`
	Year              int      `json:"year"`
	Concentration     string   `json:"concentration"`
	ImageURL          string   `json:"image_url"`
	TopNotes          []string `json:"top_notes"`
	MiddleNotes       []string `json:"middle_notes"`
	BaseNotes         []string `json:"base_notes"`
	CommunityRating   float64  `json:"community_rating" binding:"min=0,max=5"`
	TargetDemographic string   `json:"target_demographic"`
}

type UpdateFragranceRequest struct {
	Name              *string              `json:"name"`
	Brand             *string              `json:"brand"`
	Year              *int                 `json:"year"`
	Concentration     *model.Concentration `json:"concentration"`
	ImageURL          *string              `json:"image_url"`
	TopNotes          []string             `json:"top_notes"`
	MiddleNotes       []string             `json:"middle_notes"`
	BaseNotes         []string             `json:"base_notes"`
	CommunityRating   *float64             `json:"community_rating"`
	Priority          *int                 `json:"priority"`
	Trending          *bool                `json:"trending"`
	TargetDemographic *string              `json:"target_demographic"`
}

// List returns a filtered, paginated catalog page
// GET /api/fragrances
func (ctrl *FragranceController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.FragranceListOptions{
		Brand:    c.Query("brand"),
		Season:   c.Query("season"),
		Occasion: c.Query("occasion"),
		Mood:     c.Query("mood"),
		Search:   c.Query("search"),
		Sort:     service.FragranceSort(c.Query("sort")),
	}

	if concentration := c.Query("concentration"); concentration != "" {
		value := model.Concentration(concentration)
		opts.Concentration = &value
	}
	if verified := c.Query("verified"); verified != "" {
		value, err := strconv.ParseBool(verified)
		if err != nil {
			apperrors.BadRequest(c, "verified must be true or false")
			return
		}
		opts.Verified = &value
	}
	if order := c.Query("order"); order == "asc" {
		opts.SortAscending = true
	}
	opts.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	opts.PageSize, _ = strconv.Atoi(c.DefaultQuery("limit", c.DefaultQuery("page_size", "20")))

	list, err := ctrl.fragranceService.ListFragrances(opts)
	if err != nil {
		log.Error("Failed to list fragrances", err, nil)
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, list)
}

// Get returns one fragrance
// GET /api/fragrances/:id
func (ctrl *FragranceController) Get(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	fragrance, err := ctrl.fragranceService.GetFragranceByID(id)
	if err != nil {
		if errors.Is(err, service.ErrFragranceNotFound) {
			apperrors.RespondNotFound(c, "Fragrance not found")
			return
		}
		log.Error("Failed to fetch fragrance", err, map[string]interface{}{
			"fragrance_id": id,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"fragrance": fragrance,
	})
}

// ListBrands returns distinct brands with catalog counts
// GET /api/brands
func (ctrl *FragranceController) ListBrands(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	brands, err := ctrl.fragranceService.ListBrands()
	if err != nil {
		log.Error("Failed to list brands", err, nil)
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"brands": brands,
	})
}

// Create adds a fragrance to the catalog (admin only)
// POST /api/fragrances
func (ctrl *FragranceController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateFragranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid fragrance creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Name and brand are required; community rating must be 0 to 5")
		return
	}

	fragrance := &model.Fragrance{
		Name:              req.Name,
		Brand:             req.Brand,
		Year:              req.Year,
		Concentration:     model.Concentration(req.Concentration),
		ImageURL:          req.ImageURL,
		TopNotes:          req.TopNotes,
		MiddleNotes:       req.MiddleNotes,
		BaseNotes:         req.BaseNotes,
		CommunityRating:   req.CommunityRating,
		TargetDemographic: req.TargetDemographic,
	}

	if err := ctrl.fragranceService.CreateFragrance(fragrance); err != nil {
		log.Error("Failed to create fragrance", err, map[string]interface{}{
			"name":  req.Name,
			"brand": req.Brand,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create fragrance")
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, gin.H{
		"fragrance": fragrance,
	})
}

// Update modifies catalog fields (admin only)
// PUT /api/fragrances/:id
func (ctrl *FragranceController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	var req UpdateFragranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid fragrance update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "")
		return
	}

	if req.CommunityRating != nil && (*req.CommunityRating < 0 || *req.CommunityRating > 5) {
		apperrors.BadRequest(c, "Community rating must be between 0 and 5")
		return
	}

	fragrance, err := ctrl.fragranceService.UpdateFragrance(id, service.FragranceUpdate{
		Name:              req.Name,
		Brand:             req.Brand,
		Year:              req.Year,
		Concentration:     req.Concentration,
		ImageURL:          req.ImageURL,
		TopNotes:          req.TopNotes,
		MiddleNotes:       req.MiddleNotes,
		BaseNotes:         req.BaseNotes,
		CommunityRating:   req.CommunityRating,
		Priority:          req.Priority,
		Trending:          req.Trending,
		TargetDemographic: req.TargetDemographic,
	})
	if err != nil {
		if errors.Is(err, service.ErrFragranceNotFound) {
			apperrors.RespondNotFound(c, "Fragrance not found")
			return
		}
		log.Error("Failed to update fragrance", err, map[string]interface{}{
			"fragrance_id": id,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"fragrance": fragrance,
	})
}

// Delete removes a fragrance from the catalog (admin only)
// DELETE /api/fragrances/:id
func (ctrl *FragranceController) Delete(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	if err := ctrl.fragranceService.DeleteFragrance(id); err != nil {
		if errors.Is(err, service.ErrFragranceNotFound) {
			apperrors.RespondNotFound(c, "Fragrance not found")
			return
		}
		log.Error("Failed to delete fragrance", err, map[string]interface{}{
			"fragrance_id": id,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"deleted": true,
	})
}

func parseIDParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
