package main

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (r updateProfileRequest) validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return invalid("name", "name must not be blank")
	}
	return validateBody(r.Age, editMinAge, editMaxAge, r.HeightCM, r.WeightKG)
}

// editProfile applies a profile edit, recomputes target calories and pushes
// the result to the mirror. errProfileNotFound when there is nothing to edit.
func (h *Handler) editProfile(ctx context.Context, uid string, req updateProfileRequest) (*userProfile, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if req.Name != nil {
		req.Name = ptr(strings.TrimSpace(*req.Name))
	}
	n, err := h.store.updateProfile(ctx, req.Name, req.Age, req.HeightCM, req.WeightKG)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errProfileNotFound
	}
	return h.recalculateAndPush(ctx, uid)
}

// changeWeight updates only the weight, then recomputes and pushes.
func (h *Handler) changeWeight(ctx context.Context, uid string, weightKG float64) (*userProfile, error) {
	if err := validateWeight(weightKG); err != nil {
		return nil, err
	}
	n, err := h.store.updateWeight(ctx, weightKG)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errProfileNotFound
	}
	return h.recalculateAndPush(ctx, uid)
}

func (h *Handler) recalculateAndPush(ctx context.Context, uid string) (*userProfile, error) {
	if _, err := h.store.recalculateTargetCalories(ctx); err != nil {
		return nil, err
	}
	p, err := h.store.loadProfile(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errProfileNotFound
	}
	h.reconciler.pushProfile(uid, *p)
	return p, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getProfile returns the stored profile.
// GET /api/profile. 404 before onboarding.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.store.loadProfile(c)
	if err != nil {
		respondError(c, err, "failed to load profile")
		return
	}
	if p == nil {
		apiError(c, http.StatusNotFound, "profile not found")
		return
	}
	c.JSON(http.StatusOK, p)
}

// updateProfile edits name, age, height and weight in place.
// PUT /api/profile. Body: { name?, age, height_cm, weight_kg }. An omitted
// name keeps the stored one. Target calories are recomputed afterwards.
func (h *Handler) updateProfile(c *gin.Context) {
	var body updateProfileRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.editProfile(c, c.GetString("uid"), body)
	if err != nil {
		respondError(c, err, "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// patchWeight updates the current weight only.
// PATCH /api/profile/weight. Body: { "weight_kg": 72.5 }.
func (h *Handler) patchWeight(c *gin.Context) {
	var body struct {
		WeightKG *float64 `json:"weight_kg"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.WeightKG == nil {
		apiError(c, http.StatusBadRequest, "weight_kg is required")
		return
	}
	p, err := h.changeWeight(c, c.GetString("uid"), *body.WeightKG)
	if err != nil {
		respondError(c, err, "failed to update weight")
		return
	}
	c.JSON(http.StatusOK, p)
}
