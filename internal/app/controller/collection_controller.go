package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
)

type CollectionController struct {
	collectionService service.CollectionService
}

func NewCollectionController(collectionService service.CollectionService) *CollectionController {
	return &CollectionController{
		collectionService: collectionService,
	}
}

type CreateCollectionRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
}

type UpdateCollectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AddCollectionItemRequest struct {
	FragranceID    uint   `json:"fragrance_id" binding:"required"`
	PersonalRating *int   `json:"personal_rating"`
	Notes          string `json:"notes"`
	BottleSize     string `json:"bottle_size"`
}

type UpdateCollectionItemRequest struct {
	PersonalRating *int   `json:"personal_rating"`
	Notes          string `json:"notes"`
	BottleSize     string `json:"bottle_size"`
}

// List returns the caller's collections
// GET /api/collections
func (ctrl *CollectionController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collections, err := ctrl.collectionService.ListCollections(userID)
	if err != nil {
		log.Error("Failed to list collections", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"collections": collections,
	})
}

// Get returns one collection with its items
// GET /api/collections/:id
func (ctrl *CollectionController) Get(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid collection ID")
		return
	}

	collection, err := ctrl.collectionService.GetCollection(userID, collectionID)
	if err != nil {
		ctrl.respondCollectionError(c, err, collectionID)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"collection": collection,
	})
}

// Create starts a new collection
// POST /api/collections
func (ctrl *CollectionController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	var req CreateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid collection creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Collection name is required")
		return
	}

	collection, err := ctrl.collectionService.CreateCollection(userID, req.Name, req.Description)
	if err != nil {
		log.Error("Failed to create collection", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, gin.H{
		"collection": collection,
	})
}

// Update renames or redescribes a collection
// PUT /api/collections/:id
func (ctrl *CollectionController) Update(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid collection ID")
		return
	}

	var req UpdateCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid collection update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "")
		return
	}

	collection, err := ctrl.collectionService.UpdateCollection(userID, collectionID, req.Name, req.Description)
	if err != nil {
		ctrl.respondCollectionError(c, err, collectionID)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"collection": collection,
	})
}

// Delete removes a collection and its items
// DELETE /api/collections/:id
func (ctrl *CollectionController) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid collection ID")
		return
	}

	if err := ctrl.collectionService.DeleteCollection(userID, collectionID); err != nil {
		ctrl.respondCollectionError(c, err, collectionID)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"deleted": true,
	})
}

// AddItem places a fragrance in a collection
// POST /api/collections/:id/items
func (ctrl *CollectionController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid collection ID")
		return
	}

	var req AddCollectionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid collection item request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Fragrance ID is required")
		return
	}

	item, err := ctrl.collectionService.AddItem(userID, collectionID, req.FragranceID, service.CollectionItemInput{
		PersonalRating: req.PersonalRating,
		Notes:          req.Notes,
		BottleSize:     req.BottleSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCollectionItem):
			apperrors.Conflict(c, apperrors.DuplicateItem, "This fragrance is already in the collection")
		case errors.Is(err, service.ErrFragranceNotFound):
			apperrors.RespondNotFound(c, "Fragrance not found")
		case errors.Is(err, service.ErrInvalidPersonalRating):
			apperrors.BadRequest(c, "Personal rating must be between 1 and 10")
		default:
			ctrl.respondCollectionError(c, err, collectionID)
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, gin.H{
		"item": item,
	})
}

// UpdateItem edits rating, notes or bottle size of an item
// PUT /api/collections/:id/items/:fragranceId
func (ctrl *CollectionController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid collection ID")
		return
	}
	fragranceID, err := parseIDParam(c, "fragranceId")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	var req UpdateCollectionItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid collection item update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "")
		return
	}

	item, err := ctrl.collectionService.UpdateItem(userID, collectionID, fragranceID, service.CollectionItemInput{
		PersonalRating: req.PersonalRating,
		Notes:          req.Notes,
		BottleSize:     req.BottleSize,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCollectionItemNotFound):
			apperrors.RespondNotFound(c, "This fragrance is not in the collection")
		case errors.Is(err, service.ErrInvalidPersonalRating):
			apperrors.BadRequest(c, "Personal rating must be between 1 and 10")
		default:
			ctrl.respondCollectionError(c, err, collectionID)
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"item": item,
	})
}

// RemoveItem takes a fragrance out of a collection
// DELETE /api/collections/:id/items/:fragranceId
func (ctrl *CollectionController) RemoveItem(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	collectionID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid collection ID")
		return
	}
	fragranceID, err := parseIDParam(c, "fragranceId")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	if err := ctrl.collectionService.RemoveItem(userID, collectionID, fragranceID); err != nil {
		if errors.Is(err, service.ErrCollectionItemNotFound) {
			apperrors.RespondNotFound(c, "This fragrance is not in the collection")
			return
		}
		ctrl.respondCollectionError(c, err, collectionID)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"removed": true,
	})
}

func (ctrl *CollectionController) respondCollectionError(c *gin.Context, err error, collectionID uint) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrCollectionNotFound):
		apperrors.RespondNotFound(c, "Collection not found")
	case errors.Is(err, service.ErrCollectionAccessDenied):
		apperrors.RespondForbidden(c, "This collection belongs to another user")
	default:
		log.Error("Collection operation failed", err, map[string]interface{}{
			"collection_id": collectionID,
		})
		apperrors.RespondInternalError(c, "")
	}
}
