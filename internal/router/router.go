package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/scentarena/fragrance-battle-backend/config"
	"github.com/scentarena/fragrance-battle-backend/internal/app/controller"
	apperrors "github.com/scentarena/fragrance-battle-backend/internal/errors"
	"github.com/scentarena/fragrance-battle-backend/internal/middleware"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
	"github.com/scentarena/fragrance-battle-backend/pkg/ratelimit"
)

type Router struct {
	authController       *controller.AuthController
	fragranceController  *controller.FragranceController
	collectionController *controller.CollectionController
	battleController     *controller.BattleController
	aiController         *controller.AIController
	userController       *controller.UserController
	adminController      *controller.AdminController
	authMiddleware       *middleware.AuthMiddleware
	apiLimiter           *ratelimit.Limiter
	aiLimiter            *ratelimit.Limiter
	config               *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	fragranceController *controller.FragranceController,
	collectionController *controller.CollectionController,
	battleController *controller.BattleController,
	aiController *controller.AIController,
	userController *controller.UserController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	apiLimiter *ratelimit.Limiter,
	aiLimiter *ratelimit.Limiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:       authController,
		fragranceController:  fragranceController,
		collectionController: collectionController,
		battleController:     battleController,
		aiController:         aiController,
		userController:       userController,
		adminController:      adminController,
		authMiddleware:       authMiddleware,
		apiLimiter:           apiLimiter,
		aiLimiter:            aiLimiter,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered", fmt.Errorf("%v", recovered), map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.RespondInternalError(c, "")
		c.Abort()
	}))
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Fragrance Battle API is running",
		})
	})

	api := router.Group("/api")
	api.Use(middleware.RateLimitMiddleware(r.apiLimiter, "api"))
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.Refresh)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		fragrances := api.Group("/fragrances")
		{
			fragrances.GET("", r.fragranceController.List)
			fragrances.GET("/:id", r.fragranceController.Get)

			fragrances.POST("",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.fragranceController.Create,
			)
			fragrances.PUT("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.fragranceController.Update,
			)
			fragrances.DELETE("/:id",
				r.authMiddleware.Authenticate(),
				r.authMiddleware.RequireRole("admin"),
				r.fragranceController.Delete,
			)
		}

		api.GET("/brands", r.fragranceController.ListBrands)

		collections := api.Group("/collections")
		collections.Use(r.authMiddleware.Authenticate())
		{
			collections.GET("", r.collectionController.List)
			collections.POST("", r.collectionController.Create)
			collections.GET("/:id", r.collectionController.Get)
			collections.PUT("/:id", r.collectionController.Update)
			collections.DELETE("/:id", r.collectionController.Delete)
			collections.POST("/:id/items", r.collectionController.AddItem)
			collections.PUT("/:id/items/:fragranceId", r.collectionController.UpdateItem)
			collections.DELETE("/:id/items/:fragranceId", r.collectionController.RemoveItem)
		}

		battles := api.Group("/battles")
		{
			// Share links work without an account.
			battles.GET("/shared/:token", r.battleController.GetShared)

			battles.Use(r.authMiddleware.Authenticate())
			battles.GET("", r.battleController.List)
			battles.POST("", r.battleController.Create)
			battles.GET("/:id", r.battleController.Get)
			battles.DELETE("/:id", r.battleController.Delete)
			battles.POST("/:id/vote", r.battleController.Vote)
			battles.POST("/:id/complete", r.battleController.Complete)
			battles.POST("/:id/cancel", r.battleController.Cancel)
			battles.GET("/:id/live", r.battleController.Live)
		}

		ai := api.Group("/ai")
		ai.Use(r.authMiddleware.Authenticate())
		ai.Use(middleware.RateLimitMiddleware(r.aiLimiter, "ai"))
		{
			ai.POST("/categorize", r.aiController.Categorize)
			ai.POST("/feedback", r.aiController.Feedback)
		}

		users := api.Group("/users")
		{
			users.PUT("/me", r.authMiddleware.Authenticate(), r.userController.UpdateProfile)
			users.GET("/:id", r.userController.GetProfile)
		}

		admin := api.Group("/admin")
		admin.Use(r.authMiddleware.Authenticate())
		admin.Use(r.authMiddleware.RequireRole("admin"))
		{
			admin.GET("/stats", r.adminController.GetStats)
			admin.GET("/export", r.adminController.ExportCatalog)
			admin.POST("/upload/image", r.adminController.UploadImage)
			admin.PUT("/fragrances/:id/verify", r.adminController.VerifyFragrance)
			admin.PUT("/fragrances/:id/categorization", r.aiController.Apply)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
