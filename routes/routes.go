package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-backend/controllers"
	"wedding-backend/middleware"
)

// Controllers groups everything the router mounts.
type Controllers struct {
	RSVP      *controllers.RSVPController
	WellWish  *controllers.WellWishController
	Visit     *controllers.VisitController
	Auth      *controllers.AuthController
	Dashboard *controllers.DashboardController
	Health    *controllers.HealthController
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter wires every endpoint under /api plus /health.
func SetupRouter(ctrl Controllers, tokens middleware.TokenVerifier, origins []string, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.Logger(log))
	r.Use(cors.New(corsConfig(origins)))

	r.GET("/health", ctrl.Health.Health)

	requireDashboard := middleware.RequireDashboard(tokens)

	api := r.Group("/api")
	{
		rsvp := api.Group("/rsvp")
		{
			rsvp.POST("", ctrl.RSVP.Submit)
			// unauthenticated on purpose: the public site reads it
			rsvp.GET("", ctrl.RSVP.List)
			rsvp.POST("/check", ctrl.RSVP.Check)
		}

		wishes := api.Group("/well-wishes")
		{
			wishes.POST("", ctrl.WellWish.Submit)
			wishes.GET("", ctrl.WellWish.List)
		}

		visits := api.Group("/visit-tracking")
		{
			visits.POST("", ctrl.Visit.Track)
			visits.GET("", requireDashboard, ctrl.Visit.List)
		}

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/dashboard", ctrl.Auth.Login)
			authRoutes.GET("/dashboard", requireDashboard, ctrl.Auth.Verify)
		}

		dashboard := api.Group("/dashboard", requireDashboard)
		{
			dashboard.GET("/stats", ctrl.Dashboard.Stats)
			dashboard.GET("/rsvps", ctrl.Dashboard.ListRSVPs)
			dashboard.DELETE("/rsvps", ctrl.Dashboard.DeleteRSVP)
			dashboard.GET("/export", ctrl.Dashboard.Export)
		}

		api.GET("/invitation", controllers.Invitation)
	}

	return r
}
