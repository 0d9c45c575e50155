package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
	"github.com/scentarena/fragrance-battle-backend/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminController struct {
	adminService service.AdminService
	storage      *storage.S3Storage
}

func NewAdminController(adminService service.AdminService, storage *storage.S3Storage) *AdminController {
	return &AdminController{
		adminService: adminService,
		storage:      storage,
	}
}

type VerifyFragranceRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

type UploadImageRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Folder      string `json:"folder"`
}

// GetStats returns platform-wide counters
// GET /api/admin/stats
func (ctrl *AdminController) GetStats(c *gin.Context) {
	stats, err := ctrl.adminService.GetStats()
	if err != nil {
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to collect platform stats", err)
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"stats": stats,
	})
}

// VerifyFragrance toggles the verified flag on a catalog entry
// PUT /api/admin/fragrances/:id/verify
func (ctrl *AdminController) VerifyFragrance(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	fragranceID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid fragrance ID")
		return
	}

	var req VerifyFragranceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, "Verified flag is required")
		return
	}

	fragrance, err := ctrl.adminService.VerifyFragrance(fragranceID, *req.Verified)
	if err != nil {
		if errors.Is(err, service.ErrFragranceNotFound) {
			apperrors.RespondNotFound(c, "Fragrance not found")
			return
		}
		log.Error("Failed to update verification", err, map[string]interface{}{
			"fragrance_id": fragranceID,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"fragrance": fragrance,
	})
}

// ExportCatalog streams the full catalog as an xlsx attachment
// GET /api/admin/export
func (ctrl *AdminController) ExportCatalog(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	data, err := ctrl.adminService.ExportCatalog()
	if err != nil {
		log.Error("Failed to export catalog", err)
		apperrors.RespondInternalError(c, "")
		return
	}

	filename := fmt.Sprintf("fragrance-catalog-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// UploadImage hands out a presigned S3 URL for direct image upload
// POST /api/admin/upload/image
func (ctrl *AdminController) UploadImage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid upload request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Filename and content type are required")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, storage.AllowedImageTypes); err != nil {
		log.Warn("Rejected upload content type", map[string]interface{}{
			"content_type": req.ContentType,
		})
		apperrors.BadRequest(c, "Only JPEG, PNG and WEBP images are allowed")
		return
	}

	folder := req.Folder
	if folder == "" {
		folder = "fragrances"
	}

	response, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"folder":       folder,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	log.Info("Presigned upload URL issued", map[string]interface{}{
		"filename": req.Filename,
		"folder":   folder,
		"key":      response.Key,
	})

	apperrors.RespondWithData(c, http.StatusOK, response)
}
