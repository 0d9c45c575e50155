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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupFragranceControllerTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	fragranceRepo := repository.NewFragranceRepository(testDB)
	fragranceService := service.NewFragranceService(fragranceRepo)
	ctrl := NewFragranceController(fragranceService)

	router := gin.New()
	router.GET("/fragrances", ctrl.List)
	router.GET("/fragrances/:id", ctrl.Get)
	router.GET("/brands", ctrl.ListBrands)
	router.POST("/fragrances", ctrl.Create)
	router.PUT("/fragrances/:id", ctrl.Update)
	router.DELETE("/fragrances/:id", ctrl.Delete)

	return router, testDB
}

func seedCatalog(t *testing.T, testDB *gorm.DB) []model.Fragrance {
	t.Helper()

	fragrances := []model.Fragrance{
		{Name: "Aventus", Brand: "Creed", Year: 2010, Popularity: 90, AISeasons: []string{"summer"}},
		{Name: "Eros", Brand: "Versace", Year: 2012, Popularity: 70, AISeasons: []string{"winter"}},
		{Name: "Dylan Blue", Brand: "Versace", Year: 2016, Popularity: 50, AISeasons: []string{"summer"}},
	}
	for i := range fragrances {
		require.NoError(t, testDB.Create(&fragrances[i]).Error)
	}
	return fragrances
}

func getJSON(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestFragranceController_List(t *testing.T) {
	router, testDB := setupFragranceControllerTest(t)
	seedCatalog(t, testDB)

	t.Run("returns full catalog page", func(t *testing.T) {
		w := getJSON(router, "/fragrances")

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeEnvelope(t, w)
		assert.True(t, resp.Success)
		assert.EqualValues(t, 3, resp.Data["total"])

		items, ok := resp.Data["fragrances"].([]interface{})
		require.True(t, ok)
		assert.Len(t, items, 3)
	})

	t.Run("filters by brand", func(t *testing.T) {
		w := getJSON(router, "/fragrances?brand=Versace")

		resp := decodeEnvelope(t, w)
		assert.EqualValues(t, 2, resp.Data["total"])
	})

	t.Run("filters by season", func(t *testing.T) {
		w := getJSON(router, "/fragrances?season=summer")

		resp := decodeEnvelope(t, w)
		assert.EqualValues(t, 2, resp.Data["total"])
	})

	t.Run("rejects bad verified flag", func(t *testing.T) {
		w := getJSON(router, "/fragrances?verified=maybe")

		assert.Equal(t, http.StatusBadRequest, w.Code)

		resp := decodeEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})
}

func TestFragranceController_Get(t *testing.T) {
	router, testDB := setupFragranceControllerTest(t)
	fragrances := seedCatalog(t, testDB)

	t.Run("found", func(t *testing.T) {
		w := getJSON(router, "/fragrances/"+itoa(fragrances[0].ID))

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeEnvelope(t, w)
		fragrance, ok := resp.Data["fragrance"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Aventus", fragrance["name"])
	})

	t.Run("missing", func(t *testing.T) {
		w := getJSON(router, "/fragrances/99999")

		assert.Equal(t, http.StatusNotFound, w.Code)

		resp := decodeEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := getJSON(router, "/fragrances/not-a-number")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFragranceController_ListBrands(t *testing.T) {
	router, testDB := setupFragranceControllerTest(t)
	seedCatalog(t, testDB)

	w := getJSON(router, "/brands")

	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeEnvelope(t, w)
	brands, ok := resp.Data["brands"].([]interface{})
	require.True(t, ok)
	assert.Len(t, brands, 2)
}

func TestFragranceController_Create(t *testing.T) {
	router, _ := setupFragranceControllerTest(t)

	t.Run("valid", func(t *testing.T) {
		w := postJSON(router, "/fragrances", CreateFragranceRequest{
			Name:            "Bleu de Chanel",
			Brand:           "Chanel",
			Year:            2010,
			Concentration:   "eau_de_parfum",
			TopNotes:        []string{"grapefruit", "lemon"},
			CommunityRating: 4.4,
		}, "")

		assert.Equal(t, http.StatusCreated, w.Code)

		resp := decodeEnvelope(t, w)
		fragrance, ok := resp.Data["fragrance"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Bleu de Chanel", fragrance["name"])
	})

	t.Run("missing brand", func(t *testing.T) {
		w := postJSON(router, "/fragrances", CreateFragranceRequest{
			Name: "Nameless",
		}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestFragranceController_UpdateAndDelete(t *testing.T) {
	router, testDB := setupFragranceControllerTest(t)
	fragrances := seedCatalog(t, testDB)
	id := itoa(fragrances[0].ID)

	t.Run("update rating", func(t *testing.T) {
		rating := 4.8
		w := putJSON(router, "/fragrances/"+id, UpdateFragranceRequest{
			CommunityRating: &rating,
		})

		assert.Equal(t, http.StatusOK, w.Code)

		resp := decodeEnvelope(t, w)
		fragrance, ok := resp.Data["fragrance"].(map[string]interface{})
		require.True(t, ok)
		assert.InDelta(t, 4.8, fragrance["community_rating"], 0.001)
	})

	t.Run("out of range rating", func(t *testing.T) {
		rating := 5.5
		w := putJSON(router, "/fragrances/"+id, UpdateFragranceRequest{
			CommunityRating: &rating,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("delete", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/fragrances/"+id, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		w = getJSON(router, "/fragrances/"+id)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
