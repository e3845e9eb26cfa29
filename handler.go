package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// logger is replaced by main once the configured zap logger exists.
var logger = zap.NewNop()

// Handler holds shared dependencies (local store, cloud mirror, reconciler,
// step accumulator) for all route handlers.
type Handler struct {
	store      *localStore
	cloud      cloudMirror
	reconciler *cloudReconciler
	steps      *stepAccumulator
}

func newHandler(store *localStore, cloud cloudMirror, syncTimeout time.Duration) *Handler {
	return &Handler{
		store:      store,
		cloud:      cloud,
		reconciler: newCloudReconciler(store, cloud, syncTimeout),
		steps:      newStepAccumulator(store, time.Now),
	}
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondError maps a domain error onto a status code. Anything unrecognised
// is logged and reported as a 500 with fallback as the message.
func respondError(c *gin.Context, err error, fallback string) {
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		apiError(c, http.StatusBadRequest, ve.Message)
	case errors.Is(err, errProfileNotFound), errors.Is(err, errDoctorNotFound):
		apiError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, errPermissionRequired):
		apiError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, errTrackingDisabled):
		apiError(c, http.StatusConflict, err.Error())
	case errors.Is(err, errInvalidCredentials):
		apiError(c, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, errCloudUnavailable):
		apiError(c, http.StatusServiceUnavailable, "cloud sync is unavailable, try again later")
	default:
		logger.Error(fallback, zap.String("path", c.FullPath()), zap.Error(err))
		apiError(c, http.StatusInternalServerError, fallback)
	}
}

// requestLogger logs one line per request through zap.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	// Public routes
	router.POST("/api/login", h.login)
	router.GET("/api/meal-plans", h.getMealPlans)
	router.GET("/api/helplines", h.getHelplines)
	router.GET("/api/mental-health", h.getMentalHealthContent)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/logout", h.logout)
	api.GET("/startup", h.getStartup)
	api.POST("/onboarding", h.completeOnboarding)
	api.POST("/diet-survey", h.submitDietSurvey)
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.updateProfile)
	api.PATCH("/profile/weight", h.patchWeight)
	api.GET("/meal-plan", h.getMealPlan)
	api.GET("/steps/status", h.getStepStatus)
	api.PUT("/steps/tracking", h.setStepTracking)
	api.POST("/steps/readings", h.recordStepReading)
	api.GET("/steps", h.getStepHistory)
	api.GET("/steps/week-summary", h.getStepWeekSummary)
	api.GET("/doctors", h.listDoctors)
	api.POST("/doctors", h.createDoctor)
	api.PUT("/doctors/:id", h.updateDoctor)
	api.DELETE("/doctors/:id", h.deleteDoctor)
	api.POST("/doctors/sync", h.syncDoctors)
}
