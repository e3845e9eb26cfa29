package main

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// login verifies username/password against the cloud account directory,
// stores a fresh local session and runs the startup reconciliation.
// POST /api/login (public, no auth required).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	uid, err := h.cloud.authenticate(c, body.Username, body.Password)
	if err != nil {
		respondError(c, err, "failed to sign in")
		return
	}

	previousUID, _, err := h.store.session(c)
	if err != nil {
		respondError(c, err, "failed to read session")
		return
	}
	token := uuid.NewString()
	if err := h.store.setSession(c, uid, token); err != nil {
		respondError(c, err, "failed to save session")
		return
	}
	// A different account on the same device gets its own reconciliation.
	if previousUID != uid {
		h.reconciler.reset()
	}

	restored, err := h.reconciler.resolve(c, uid)
	if err != nil {
		respondError(c, err, "failed to restore profile")
		return
	}
	has, err := h.store.hasProfile(c)
	if err != nil {
		respondError(c, err, "failed to read profile")
		return
	}

	logger.Info("signed in", zap.String("uid", uid), zap.Bool("restored", restored))
	c.JSON(http.StatusOK, gin.H{
		"token":            token,
		"uid":              uid,
		"restored":         restored,
		"needs_onboarding": !has,
	})
}

// logout drops the local session. Local data is kept.
// POST /api/logout.
func (h *Handler) logout(c *gin.Context) {
	if err := h.store.clearSession(c); err != nil {
		respondError(c, err, "failed to sign out")
		return
	}
	h.reconciler.reset()
	c.Status(http.StatusNoContent)
}

// getStartup reports whether onboarding can be skipped. If reconciliation
// has not run yet for the signed-in user it runs here, so this call is the
// one place navigation waits on the cloud.
// GET /api/startup.
func (h *Handler) getStartup(c *gin.Context) {
	uid := c.GetString("uid")
	state, restored := h.reconciler.status()
	if state == awaitingDecision {
		var err error
		if restored, err = h.reconciler.resolve(c, uid); err != nil {
			respondError(c, err, "failed to restore profile")
			return
		}
		state = resolved
	}
	has, err := h.store.hasProfile(c)
	if err != nil {
		respondError(c, err, "failed to read profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"resolved":         state == resolved,
		"restored":         restored,
		"has_profile":      has,
		"needs_onboarding": !has,
	})
}

// authMiddleware validates the Bearer token against the local session and
// sets uid on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		uid, stored, err := h.store.session(c)
		if err != nil {
			logger.Error("read session failed", zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to read session")
			c.Abort()
			return
		}
		if stored == "" || subtle.ConstantTimeCompare([]byte(token), []byte(stored)) != 1 {
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("uid", uid)
		c.Next()
	}
}
