package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
)

type UserController struct {
	userService service.UserService
}

func NewUserController(userService service.UserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

type UpdateProfileRequest struct {
	Username  string `json:"username" binding:"omitempty,min=3,max=30"`
	Bio       string `json:"bio" binding:"max=500"`
	AvatarURL string `json:"avatar_url" binding:"omitempty,url"`
}

// GetProfile returns a public profile with collection and battle counts
// GET /api/users/:id
func (ctrl *UserController) GetProfile(c *gin.Context) {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid user ID")
		return
	}

	profile, err := ctrl.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			apperrors.RespondNotFound(c, "User not found")
			return
		}
		log := middleware.GetLoggerFromContext(c)
		log.Error("Failed to load profile", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"profile": profile,
	})
}

// UpdateProfile updates the caller's own profile
// PUT /api/users/me
func (ctrl *UserController) UpdateProfile(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid profile update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Invalid profile payload")
		return
	}

	user, err := ctrl.userService.UpdateProfile(userID, req.Username, req.Bio, req.AvatarURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.RespondNotFound(c, "User not found")
		case errors.Is(err, service.ErrUsernameAlreadyExists):
			apperrors.Conflict(c, apperrors.AlreadyExists, "Username is already taken")
		default:
			log.Error("Failed to update profile", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.RespondInternalError(c, "")
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"user": user,
	})
}
