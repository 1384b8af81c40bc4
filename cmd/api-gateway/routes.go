package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/tutor-sessions-api/internal/handler"
	"github.com/noah-isme/tutor-sessions-api/internal/middleware"
	"github.com/noah-isme/tutor-sessions-api/internal/models"
	"github.com/noah-isme/tutor-sessions-api/pkg/config"
)

type routeHandlers struct {
	auth         gin.HandlerFunc
	availability *handler.AvailabilityHandler
	sessions     *handler.SessionHandler
	bookings     *handler.BookingHandler
	requests     *handler.RequestHandler
	rooms        *handler.RoomHandler
	ops          *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h routeHandlers) {
	r.GET("/health", h.ops.Health)
	r.GET("/ready", h.ops.Ready)
	r.GET("/metrics", h.ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	tutorOnly := middleware.RequireRoles(models.RoleTutor)
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	api := r.Group(cfg.APIPrefix, h.auth)

	sessions := api.Group("/sessions")
	sessions.POST("/availability", tutorOnly, h.availability.Create)
	sessions.GET("/availability", tutorOnly, h.availability.List)
	sessions.DELETE("/availability/:id", tutorOnly, h.availability.Delete)

	sessions.POST("", tutorOnly, h.sessions.Create)
	sessions.POST("/:id/duplicate", tutorOnly, h.sessions.Duplicate)
	sessions.DELETE("/:id", tutorOnly, h.sessions.Cancel)
	sessions.GET("/course/:courseId", h.sessions.ListByCourse)
	sessions.GET("/tutor", tutorOnly, h.sessions.ListByTutor)
	sessions.GET("/tutor/export", tutorOnly, h.sessions.ExportCalendar)
	sessions.GET("/suggested-slots", tutorOnly, h.sessions.SuggestedSlots)

	sessions.POST("/:id/book", studentOnly, h.bookings.Book)
	sessions.GET("/bookings", studentOnly, h.bookings.ListMine)
	sessions.DELETE("/bookings/:id", studentOnly, h.bookings.Cancel)

	sessions.POST("/:id/room-token", middleware.RequireRoles(models.RoleTutor, models.RoleStudent), h.rooms.Token)

	requests := api.Group("/requests")
	requests.POST("/reschedule", tutorOnly, h.requests.SubmitReschedule)
	requests.GET("/reschedule/mine", tutorOnly, h.requests.ListMyReschedule)
	requests.GET("/reschedule/pending", adminOnly, h.requests.ListPendingReschedule)
	requests.PATCH("/reschedule/:id", adminOnly, h.requests.ReviewReschedule)
	requests.POST("/add-session", tutorOnly, h.requests.SubmitAddSession)
	requests.GET("/add-session/mine", tutorOnly, h.requests.ListMyAddSession)
	requests.GET("/add-session/pending", adminOnly, h.requests.ListPendingAddSession)
	requests.PATCH("/add-session/:id", adminOnly, h.requests.ReviewAddSession)

	api.POST("/courses/:courseId/bookings/fan-out", adminOnly, h.bookings.FanOut)
}
