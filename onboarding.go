package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const onboardingDefaultStepGoal = 8000

func (r onboardingRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return invalid("name", "please enter your name")
	}
	if err := validateBody(r.Age, onboardingMinAge, onboardingMaxAge, r.HeightCM, r.WeightKG); err != nil {
		return err
	}
	if r.StepGoal != nil {
		return validateStepGoal(*r.StepGoal)
	}
	return nil
}

func (r dietSurveyRequest) validate() error {
	if _, ok := parseSex(r.Sex); !ok {
		return invalid("sex", "please select Male or Female")
	}
	if !knownActivityLevel(r.ActivityLevel) {
		return invalid("activity_level", "please select an activity level")
	}
	if _, ok := parseDietType(r.DietPreference); !ok {
		return invalid("diet_preference", "please select Vegetarian or Non-Veg")
	}
	return validateBody(r.Age, editMinAge, editMaxAge, float64(r.HeightCM), r.WeightKG)
}

// onboard validates and stores the first-run profile, replacing any existing
// one. Target calories use the fixed onboarding estimate.
func (h *Handler) onboard(ctx context.Context, uid string, req onboardingRequest) (userProfile, error) {
	if err := req.validate(); err != nil {
		return userProfile{}, err
	}
	goal := onboardingDefaultStepGoal
	if req.StepGoal != nil {
		goal = *req.StepGoal
	}

	p := userProfile{
		Name:           ptr(strings.TrimSpace(req.Name)),
		Age:            ptr(req.Age),
		HeightCM:       ptr(req.HeightCM),
		WeightKG:       req.WeightKG,
		TargetCalories: onboardingTargetCalories(req.Age, req.HeightCM, req.WeightKG),
	}
	if uid != "" {
		p.FirebaseUID = ptr(uid)
	}
	id, err := h.store.saveProfile(ctx, p)
	if err != nil {
		return userProfile{}, err
	}
	p.ID = id
	if err := h.store.setSetting(ctx, settingStepGoal, strconv.Itoa(goal)); err != nil {
		return userProfile{}, err
	}

	h.reconciler.pushProfile(uid, p)
	return p, nil
}

// applyDietSurvey validates the survey and replaces the profile with one
// computed from the real sex and activity level. Name and uid carry over.
func (h *Handler) applyDietSurvey(ctx context.Context, uid string, req dietSurveyRequest) (userProfile, error) {
	if err := req.validate(); err != nil {
		return userProfile{}, err
	}
	s, _ := parseSex(req.Sex)
	level := parseActivityLevel(req.ActivityLevel)
	diet, _ := parseDietType(req.DietPreference)
	height := float64(req.HeightCM)

	existing, err := h.store.loadProfile(ctx)
	if err != nil {
		return userProfile{}, err
	}

	p := userProfile{
		Age:            ptr(req.Age),
		Gender:         ptr(string(s)),
		HeightCM:       ptr(height),
		WeightKG:       req.WeightKG,
		ActivityLevel:  ptr(level.String()),
		DietPreference: ptr(diet.preferenceLabel()),
		TargetCalories: targetCaloriesFor(computeBMR(req.Age, s, height, req.WeightKG), level),
	}
	if existing != nil {
		p.Name = existing.Name
		p.FirebaseUID = existing.FirebaseUID
	}
	if uid != "" {
		p.FirebaseUID = ptr(uid)
	}
	id, err := h.store.saveProfile(ctx, p)
	if err != nil {
		return userProfile{}, err
	}
	p.ID = id

	h.reconciler.pushProfile(uid, p)
	return p, nil
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// completeOnboarding stores the first-run profile and step goal.
// POST /api/onboarding. Body: { name, age, height_cm, weight_kg, step_goal? }.
func (h *Handler) completeOnboarding(c *gin.Context) {
	var body onboardingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.onboard(c, c.GetString("uid"), body)
	if err != nil {
		respondError(c, err, "failed to save profile")
		return
	}
	logger.Info("onboarding complete", zap.Int64("profile_id", p.ID), zap.Int("target_calories", p.TargetCalories))
	c.JSON(http.StatusCreated, p)
}

// submitDietSurvey replaces the profile with the survey answers.
// POST /api/diet-survey. Body: { activity_level, diet_preference, age, sex,
// height_cm, weight_kg }.
func (h *Handler) submitDietSurvey(c *gin.Context) {
	var body dietSurveyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	p, err := h.applyDietSurvey(c, c.GetString("uid"), body)
	if err != nil {
		respondError(c, err, "failed to save profile")
		return
	}
	c.JSON(http.StatusCreated, p)
}
