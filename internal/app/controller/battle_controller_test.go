package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/internal/app/model"
	"github.com/scentarena/fragrance-battle-backend/internal/app/repository"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	"github.com/scentarena/fragrance-battle-backend/internal/db"
	ws "github.com/scentarena/fragrance-battle-backend/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeAuth stands in for the JWT middleware so handlers see a fixed caller.
func fakeAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

type battleControllerFixture struct {
	router     *gin.Engine
	db         *gorm.DB
	service    service.BattleService
	owner      model.User
	voter      model.User
	fragrances []model.Fragrance
}

func setupBattleControllerTest(t *testing.T, callerID uint) *battleControllerFixture {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	battleRepo := repository.NewBattleRepository(testDB)
	fragranceRepo := repository.NewFragranceRepository(testDB)
	battleService := service.NewBattleService(battleRepo, fragranceRepo)

	hub := ws.NewHub()
	go hub.Run()

	ctrl := NewBattleController(battleService, hub)

	router := gin.New()
	router.GET("/battles/shared/:token", ctrl.GetShared)

	authed := router.Group("")
	authed.Use(fakeAuth(callerID))
	authed.GET("/battles", ctrl.List)
	authed.POST("/battles", ctrl.Create)
	authed.GET("/battles/:id", ctrl.Get)
	authed.DELETE("/battles/:id", ctrl.Delete)
	authed.POST("/battles/:id/vote", ctrl.Vote)
	authed.POST("/battles/:id/complete", ctrl.Complete)
	authed.POST("/battles/:id/cancel", ctrl.Cancel)

	fx := &battleControllerFixture{
		router:  router,
		db:      testDB,
		service: battleService,
	}

	fx.owner = model.User{Email: "owner@example.com", Username: "owner", PasswordHash: "x"}
	require.NoError(t, testDB.Create(&fx.owner).Error)
	fx.voter = model.User{Email: "voter@example.com", Username: "voter", PasswordHash: "x"}
	require.NoError(t, testDB.Create(&fx.voter).Error)

	fx.fragrances = []model.Fragrance{
		{Name: "Aventus", Brand: "Creed"},
		{Name: "Eros", Brand: "Versace"},
		{Name: "Sauvage", Brand: "Dior"},
	}
	for i := range fx.fragrances {
		require.NoError(t, testDB.Create(&fx.fragrances[i]).Error)
	}

	return fx
}

func (fx *battleControllerFixture) fragranceIDs(n int) []uint {
	ids := make([]uint, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, fx.fragrances[i].ID)
	}
	return ids
}

func TestBattleController_Create(t *testing.T) {
	fx := setupBattleControllerTest(t, 1)

	t.Run("valid", func(t *testing.T) {
		w := postJSON(fx.router, "/battles", CreateBattleRequest{
			Title:        "Summer showdown",
			FragranceIDs: fx.fragranceIDs(3),
		}, "")

		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeEnvelope(t, w)
		battle, ok := resp.Data["battle"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "ACTIVE", battle["status"])
		assert.NotEmpty(t, battle["share_token"])

		items, ok := battle["items"].([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 3)
	})

	t.Run("too few fragrances", func(t *testing.T) {
		w := postJSON(fx.router, "/battles", CreateBattleRequest{
			Title:        "Solo",
			FragranceIDs: fx.fragranceIDs(1),
		}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown fragrance", func(t *testing.T) {
		w := postJSON(fx.router, "/battles", CreateBattleRequest{
			Title:        "Ghost entry",
			FragranceIDs: []uint{fx.fragrances[0].ID, 99999},
		}, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBattleController_Vote(t *testing.T) {
	fx := setupBattleControllerTest(t, 2)

	battle, err := fx.service.CreateBattle(fx.owner.ID, "Office picks", "", fx.fragranceIDs(2))
	require.NoError(t, err)

	path := "/battles/" + itoa(battle.ID) + "/vote"

	t.Run("first vote counts", func(t *testing.T) {
		w := postJSON(fx.router, path, VoteRequest{
			FragranceID: fx.fragrances[0].ID,
		}, "")

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeEnvelope(t, w)
		updated, ok := resp.Data["battle"].(map[string]interface{})
		require.True(t, ok)

		items, ok := updated["items"].([]interface{})
		require.True(t, ok)
		first, ok := items[0].(map[string]interface{})
		require.True(t, ok)
		assert.EqualValues(t, 1, first["vote_count"])
	})

	t.Run("second vote rejected", func(t *testing.T) {
		w := postJSON(fx.router, path, VoteRequest{
			FragranceID: fx.fragrances[1].ID,
		}, "")

		assert.Equal(t, http.StatusConflict, w.Code)

		resp := decodeEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "ALREADY_VOTED", resp.Error.Code)
	})

	t.Run("fragrance outside the battle", func(t *testing.T) {
		other := setupBattleControllerTest(t, 2)
		otherBattle, err := other.service.CreateBattle(other.owner.ID, "Pair", "", other.fragranceIDs(2))
		require.NoError(t, err)

		w := postJSON(other.router, "/battles/"+itoa(otherBattle.ID)+"/vote", VoteRequest{
			FragranceID: other.fragrances[2].ID,
		}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBattleController_CompleteAndImmutability(t *testing.T) {
	fx := setupBattleControllerTest(t, 1)

	battle, err := fx.service.CreateBattle(1, "Finals", "", fx.fragranceIDs(2))
	require.NoError(t, err)

	_, err = fx.service.Vote(fx.voter.ID, battle.ID, fx.fragrances[0].ID)
	require.NoError(t, err)

	w := postJSON(fx.router, "/battles/"+itoa(battle.ID)+"/complete", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	completed, ok := resp.Data["battle"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "COMPLETED", completed["status"])

	// A completed battle no longer accepts votes or further transitions.
	w = postJSON(fx.router, "/battles/"+itoa(battle.ID)+"/vote", VoteRequest{
		FragranceID: fx.fragrances[0].ID,
	}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	respVote := decodeEnvelope(t, w)
	require.NotNil(t, respVote.Error)
	assert.Equal(t, "BATTLE_COMPLETED", respVote.Error.Code)

	w = postJSON(fx.router, "/battles/"+itoa(battle.ID)+"/cancel", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBattleController_GetShared(t *testing.T) {
	fx := setupBattleControllerTest(t, 1)

	battle, err := fx.service.CreateBattle(1, "Public poll", "", fx.fragranceIDs(2))
	require.NoError(t, err)

	t.Run("valid token without auth", func(t *testing.T) {
		w := getJSON(fx.router, "/battles/shared/"+battle.ShareToken)

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeEnvelope(t, w)
		shared, ok := resp.Data["battle"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Public poll", shared["title"])
	})

	t.Run("unknown token", func(t *testing.T) {
		w := getJSON(fx.router, "/battles/shared/does-not-exist")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBattleController_Delete(t *testing.T) {
	fx := setupBattleControllerTest(t, 1)

	battle, err := fx.service.CreateBattle(1, "Ephemeral", "", fx.fragranceIDs(2))
	require.NoError(t, err)

	req := httptest.NewRequest("DELETE", "/battles/"+itoa(battle.ID), nil)
	w := httptest.NewRecorder()
	fx.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	w2 := getJSON(fx.router, "/battles/"+itoa(battle.ID))
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
