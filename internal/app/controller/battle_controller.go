package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
	ws "github.com/scentarena/fragrance-battle-backend/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS policy is enforced at the HTTP layer; share links make
		// battle streams intentionally public.
		return true
	},
}

type BattleController struct {
	battleService service.BattleService
	hub           *ws.Hub
}

func NewBattleController(battleService service.BattleService, hub *ws.Hub) *BattleController {
	return &BattleController{
		battleService: battleService,
		hub:           hub,
	}
}

type CreateBattleRequest struct {
	Title        string `json:"title" binding:"required,max=200"`
	Description  string `json:"description"`
	FragranceIDs []uint `json:"fragrance_ids" binding:"required,min=2,max=10"`
}

type VoteRequest struct {
	FragranceID uint `json:"fragrance_id" binding:"required"`
}

// List returns the caller's battles, optionally filtered by status
// GET /api/battles
func (ctrl *BattleController) List(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	var status *model.BattleStatus
	if raw := c.Query("status"); raw != "" {
		value := model.BattleStatus(raw)
		switch value {
		case model.BattleStatusActive, model.BattleStatusCompleted, model.BattleStatusCancelled:
			status = &value
		default:
			apperrors.BadRequest(c, "status must be ACTIVE, COMPLETED or CANCELLED")
			return
		}
	}

	battles, err := ctrl.battleService.ListBattles(userID, status)
	if err != nil {
		log.Error("Failed to list battles", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.RespondInternalError(c, "")
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"battles": battles,
	})
}

// Get returns one battle with items and tallies
// GET /api/battles/:id
func (ctrl *BattleController) Get(c *gin.Context) {
	battleID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid battle ID")
		return
	}

	battle, err := ctrl.battleService.GetBattle(battleID)
	if err != nil {
		ctrl.respondBattleError(c, err, battleID)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"battle": battle,
	})
}

// GetShared returns a battle by its share token, no authentication needed
// GET /api/battles/shared/:token
func (ctrl *BattleController) GetShared(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		apperrors.BadRequest(c, "Share token is required")
		return
	}

	battle, err := ctrl.battleService.GetBattleByShareToken(token)
	if err != nil {
		ctrl.respondBattleError(c, err, 0)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"battle": battle,
	})
}

// Create starts a new battle poll
// POST /api/battles
func (ctrl *BattleController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	var req CreateBattleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid battle creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "A title and 2 to 10 fragrance IDs are required")
		return
	}

	battle, err := ctrl.battleService.CreateBattle(userID, req.Title, req.Description, req.FragranceIDs)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidBattleSize):
			apperrors.BadRequest(c, "A battle needs between 2 and 10 fragrances")
		case errors.Is(err, service.ErrDuplicateBattleItem):
			apperrors.BadRequest(c, "A battle cannot contain the same fragrance twice")
		case errors.Is(err, service.ErrFragranceNotFound):
			apperrors.RespondNotFound(c, "One or more fragrances were not found")
		default:
			log.Error("Failed to create battle", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.RespondInternalError(c, "")
		}
		return
	}

	apperrors.RespondWithData(c, http.StatusCreated, gin.H{
		"battle": battle,
	})
}

// Vote records the caller's single vote in a battle
// POST /api/battles/:id/vote
func (ctrl *BattleController) Vote(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	battleID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid battle ID")
		return
	}

	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid vote request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, "Fragrance ID is required")
		return
	}

	battle, err := ctrl.battleService.Vote(userID, battleID, req.FragranceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyVoted):
			apperrors.Conflict(c, apperrors.AlreadyVoted, "You have already voted in this battle")
		case errors.Is(err, service.ErrBattleNotActive):
			apperrors.Conflict(c, apperrors.BattleCompleted, "This battle is no longer accepting votes")
		case errors.Is(err, service.ErrFragranceNotInBattle):
			apperrors.BadRequest(c, "That fragrance is not part of this battle")
		default:
			ctrl.respondBattleError(c, err, battleID)
		}
		return
	}

	ctrl.broadcastTally(battle)

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"battle": battle,
	})
}

// Complete closes a battle and marks the winners (owner only)
// POST /api/battles/:id/complete
func (ctrl *BattleController) Complete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	battleID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid battle ID")
		return
	}

	battle, err := ctrl.battleService.CompleteBattle(userID, battleID)
	if err != nil {
		if errors.Is(err, service.ErrBattleNotActive) {
			apperrors.Conflict(c, apperrors.BattleCompleted, "This battle has already ended")
			return
		}
		ctrl.respondBattleError(c, err, battleID)
		return
	}

	ctrl.hub.BroadcastTally(battle.ID, ws.TallyUpdate{
		Type:     "status",
		BattleID: battle.ID,
		Payload:  battle,
	})

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"battle": battle,
	})
}

// Cancel withdraws an active battle without declaring winners (owner only)
// POST /api/battles/:id/cancel
func (ctrl *BattleController) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	battleID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid battle ID")
		return
	}

	battle, err := ctrl.battleService.CancelBattle(userID, battleID)
	if err != nil {
		if errors.Is(err, service.ErrBattleNotActive) {
			apperrors.Conflict(c, apperrors.BattleCompleted, "This battle has already ended")
			return
		}
		ctrl.respondBattleError(c, err, battleID)
		return
	}

	ctrl.hub.BroadcastTally(battle.ID, ws.TallyUpdate{
		Type:     "status",
		BattleID: battle.ID,
		Payload:  battle,
	})

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"battle": battle,
	})
}

// Delete removes a battle with its items and votes (owner only)
// DELETE /api/battles/:id
func (ctrl *BattleController) Delete(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	battleID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid battle ID")
		return
	}

	if err := ctrl.battleService.DeleteBattle(userID, battleID); err != nil {
		ctrl.respondBattleError(c, err, battleID)
		return
	}

	apperrors.RespondWithData(c, http.StatusOK, gin.H{
		"deleted": true,
	})
}

// Live streams tally updates for a battle over WebSocket
// GET /api/battles/:id/live
func (ctrl *BattleController) Live(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.RespondUnauthorized(c, "")
		return
	}

	battleID, err := parseIDParam(c, "id")
	if err != nil {
		apperrors.BadRequest(c, "Invalid battle ID")
		return
	}

	// Reject subscriptions to battles that do not exist before upgrading.
	if _, err := ctrl.battleService.GetBattle(battleID); err != nil {
		ctrl.respondBattleError(c, err, battleID)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"battle_id": battleID,
		})
		return
	}

	client := &ws.Client{
		Hub:      ctrl.hub,
		Conn:     &ws.Conn{Conn: conn},
		UserID:   userID,
		BattleID: battleID,
		Send:     make(chan []byte, 256),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Battle stream opened", map[string]interface{}{
		"user_id":   userID,
		"battle_id": battleID,
	})
}

func (ctrl *BattleController) broadcastTally(battle *model.Battle) {
	type itemTally struct {
		FragranceID uint `json:"fragrance_id"`
		VoteCount   int  `json:"vote_count"`
	}

	tallies := make([]itemTally, 0, len(battle.Items))
	for _, item := range battle.Items {
		tallies = append(tallies, itemTally{
			FragranceID: item.FragranceID,
			VoteCount:   item.VoteCount,
		})
	}

	ctrl.hub.BroadcastTally(battle.ID, ws.TallyUpdate{
		Type:     "tally",
		BattleID: battle.ID,
		Payload:  tallies,
	})
}

func (ctrl *BattleController) respondBattleError(c *gin.Context, err error, battleID uint) {
	log := middleware.GetLoggerFromContext(c)

	switch {
	case errors.Is(err, service.ErrBattleNotFound):
		apperrors.RespondNotFound(c, "Battle not found")
	case errors.Is(err, service.ErrBattleAccessDenied):
		apperrors.RespondForbidden(c, "This battle belongs to another user")
	default:
		log.Error("Battle operation failed", err, map[string]interface{}{
			"battle_id": battleID,
		})
		apperrors.RespondInternalError(c, "")
	}
}
