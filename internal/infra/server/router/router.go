// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/dental-clinic/backend/internal/domain/entity"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/controller"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	reportController      *controller.ReportController
	appointmentController *controller.AppointmentController
	doctorController      *controller.DoctorController
	authMiddleware        *middleware.AuthMiddleware
	writeLimiter          middleware.Limiter
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	reportController *controller.ReportController,
	appointmentController *controller.AppointmentController,
	doctorController *controller.DoctorController,
	authMiddleware *middleware.AuthMiddleware,
	writeLimiter middleware.Limiter,
) *Router {
	return &Router{
		healthController:      healthController,
		reportController:      reportController,
		appointmentController: appointmentController,
		doctorController:      doctorController,
		authMiddleware:        authMiddleware,
		writeLimiter:          writeLimiter,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	if environment != "test" {
		r.engine.Use(gin.Logger())
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	if r.authMiddleware == nil {
		return
	}

	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())

	admin := middleware.RequireRole(entity.UserRoleAdmin)

	// write chains the admin check and the rate limiter in front of a mutating handler.
	write := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		chain := []gin.HandlerFunc{admin}
		if r.writeLimiter != nil {
			chain = append(chain, middleware.RateLimit(r.writeLimiter))
		}
		return append(chain, handler)
	}

	// Report routes
	if r.reportController != nil {
		reports := v1.Group("/reports")
		{
			reports.POST("/profits", write(r.reportController.RecordProfit)...)
			reports.POST("/consumptions", write(r.reportController.RecordConsumption)...)
			reports.POST("/salaries", write(r.reportController.RecordSalary)...)
			reports.GET("", admin, r.reportController.GetRange)
			reports.GET("/:date", admin, r.reportController.Get)
		}
	}

	// Appointment routes
	if r.appointmentController != nil {
		appointments := v1.Group("/appointments")
		{
			appointments.GET("", middleware.RequireRole(entity.UserRoleAdmin, entity.UserRoleDoctor), r.appointmentController.List)
			appointments.POST("/:id/recompute-status", write(r.appointmentController.RecomputeStatus)...)
		}
	}

	// Doctor routes
	if r.doctorController != nil {
		doctors := v1.Group("/doctors")
		{
			doctors.GET("/balances/reconcile", admin, r.doctorController.ReconcileBalances)
			// Ownership is checked by the use case so doctors can read their own ledger.
			doctors.GET("/:id/ledger", middleware.RequireRole(entity.UserRoleAdmin, entity.UserRoleDoctor), r.doctorController.Ledger)
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
