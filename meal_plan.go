package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// dietType is the meal-plan diet column. Profiles store the longer
// "Vegetarian"/"Non-Veg" preference label; parseDietType accepts both.
type dietType int

const (
	dietVeg dietType = iota
	dietNonVeg
)

func (d dietType) String() string {
	if d == dietNonVeg {
		return "Non-Veg"
	}
	return "Veg"
}

// preferenceLabel is the profile-side label for d.
func (d dietType) preferenceLabel() string {
	if d == dietNonVeg {
		return "Non-Veg"
	}
	return "Vegetarian"
}

func parseDietType(s string) (dietType, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "veg", "vegetarian":
		return dietVeg, true
	case "non-veg", "nonveg", "non-vegetarian", "nonvegetarian":
		return dietNonVeg, true
	}
	return 0, false
}

const mealPlanColumns = `id, min_calories, max_calories, diet_type, breakfast, lunch, dinner, snacks`

// selectMealPlan returns the plan whose [min, max) band contains
// targetCalories for diet d, lowest id first. Targets below every band get
// the lowest tier and targets at or above every band get the highest.
// errMealPlanConfig means the table has no rows for d at all.
func (s *localStore) selectMealPlan(ctx context.Context, targetCalories int, d dietType) (*mealPlan, error) {
	plan, err := s.queryMealPlan(ctx, `
SELECT `+mealPlanColumns+` FROM meal_plans
WHERE diet_type = ? AND min_calories <= ? AND ? < max_calories
ORDER BY id LIMIT 1`, d.String(), targetCalories, targetCalories)
	if err == nil {
		return plan, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("select meal plan: %w", err)
	}

	lowest, err := s.queryMealPlan(ctx, `
SELECT `+mealPlanColumns+` FROM meal_plans
WHERE diet_type = ? ORDER BY min_calories ASC, id ASC LIMIT 1`, d.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", errMealPlanConfig, d)
	}
	if err != nil {
		return nil, fmt.Errorf("select lowest meal plan: %w", err)
	}
	if targetCalories < lowest.MinCalories {
		return lowest, nil
	}

	highest, err := s.queryMealPlan(ctx, `
SELECT `+mealPlanColumns+` FROM meal_plans
WHERE diet_type = ? ORDER BY max_calories DESC, id ASC LIMIT 1`, d.String())
	if err != nil {
		return nil, fmt.Errorf("select highest meal plan: %w", err)
	}
	return highest, nil
}

func (s *localStore) queryMealPlan(ctx context.Context, query string, args ...any) (*mealPlan, error) {
	var m mealPlan
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&m.ID, &m.MinCalories, &m.MaxCalories,
		&m.DietType, &m.Breakfast, &m.Lunch, &m.Dinner, &m.Snacks)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// listMealPlans returns the whole static table ordered by diet then band.
func (s *localStore) listMealPlans(ctx context.Context) ([]mealPlan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+mealPlanColumns+` FROM meal_plans ORDER BY diet_type DESC, min_calories`)
	if err != nil {
		return nil, fmt.Errorf("list meal plans: %w", err)
	}
	defer rows.Close()

	plans := []mealPlan{}
	for rows.Next() {
		var m mealPlan
		if err := rows.Scan(&m.ID, &m.MinCalories, &m.MaxCalories, &m.DietType,
			&m.Breakfast, &m.Lunch, &m.Dinner, &m.Snacks); err != nil {
			return nil, fmt.Errorf("scan meal plan: %w", err)
		}
		plans = append(plans, m)
	}
	return plans, rows.Err()
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getMealPlan returns the meal plan for a calorie target and diet type.
// GET /api/meal-plan?calories=N&diet=Veg|Non-Veg. Either param defaults to
// the stored profile's target calories / diet preference.
func (h *Handler) getMealPlan(c *gin.Context) {
	caloriesParam := c.Query("calories")
	dietParam := c.Query("diet")

	if caloriesParam == "" || dietParam == "" {
		p, err := h.store.loadProfile(c)
		if err != nil {
			logger.Error("load profile for meal plan failed", zap.Error(err))
			apiError(c, http.StatusInternalServerError, "failed to load profile")
			return
		}
		if p == nil {
			apiError(c, http.StatusBadRequest, "calories and diet are required when no profile exists")
			return
		}
		if caloriesParam == "" {
			caloriesParam = strconv.Itoa(p.TargetCalories)
		}
		if dietParam == "" {
			if p.DietPreference == nil {
				apiError(c, http.StatusBadRequest, "diet is required until a diet preference is saved")
				return
			}
			dietParam = *p.DietPreference
		}
	}

	calories, err := strconv.Atoi(caloriesParam)
	if err != nil {
		apiError(c, http.StatusBadRequest, "calories must be an integer")
		return
	}
	d, ok := parseDietType(dietParam)
	if !ok {
		apiError(c, http.StatusBadRequest, "diet must be one of: Veg, Non-Veg")
		return
	}

	plan, err := h.store.selectMealPlan(c, calories, d)
	if err != nil {
		logger.Error("meal plan lookup failed", zap.Int("calories", calories), zap.Stringer("diet", d), zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to select meal plan")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// getMealPlans returns the full static meal-plan table.
// GET /api/meal-plans.
func (h *Handler) getMealPlans(c *gin.Context) {
	plans, err := h.store.listMealPlans(c)
	if err != nil {
		logger.Error("list meal plans failed", zap.Error(err))
		apiError(c, http.StatusInternalServerError, "failed to fetch meal plans")
		return
	}
	c.JSON(http.StatusOK, plans)
}
