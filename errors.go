package main

import (
	"errors"
	"fmt"
)

var (
	errStorageFailure     = errors.New("local storage failure")
	errProfileNotFound    = errors.New("profile not found")
	errMealPlanConfig     = errors.New("meal plan table has no rows for diet type")
	errCloudUnavailable   = errors.New("cloud mirror unavailable")
	errInvalidCredentials = errors.New("invalid credentials")
	errPermissionRequired = errors.New("activity recognition permission required")
	errTrackingDisabled   = errors.New("step tracking is disabled")
	errDoctorNotFound     = errors.New("doctor not found")
)

// validationError reports an input outside its documented range. It is
// always returned before anything is persisted.
type validationError struct {
	Field   string
	Message string
}

func (e *validationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *validationError {
	return &validationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

/* ─── Range checks ───────────────────────────────────────────────────── */

// Onboarding and profile edit accept different age ranges; both are kept.
const (
	onboardingMinAge = 18
	onboardingMaxAge = 100
	editMinAge       = 10
	editMaxAge       = 120
	minHeightCM      = 100
	maxHeightCM      = 250
	minWeightKG      = 30
	maxWeightKG      = 200
	minStepGoal      = 1000
	maxStepGoal      = 50000
)

func validateAge(age, lo, hi int) error {
	if age < lo || age > hi {
		return invalid("age", "please enter a valid age (%d-%d)", lo, hi)
	}
	return nil
}

func validateHeight(heightCM float64) error {
	if heightCM < minHeightCM || heightCM > maxHeightCM {
		return invalid("height_cm", "please enter a valid height (%d-%d cm)", minHeightCM, maxHeightCM)
	}
	return nil
}

func validateWeight(weightKG float64) error {
	if weightKG < minWeightKG || weightKG > maxWeightKG {
		return invalid("weight_kg", "please enter a valid weight (%d-%d kg)", minWeightKG, maxWeightKG)
	}
	return nil
}

func validateStepGoal(goal int) error {
	if goal < minStepGoal || goal > maxStepGoal {
		return invalid("step_goal", "please enter a valid goal (%d-%d steps)", minStepGoal, maxStepGoal)
	}
	return nil
}

// validateBody checks age against [lo, hi] and the shared height/weight
// ranges, reporting the first failure.
func validateBody(age, lo, hi int, heightCM, weightKG float64) error {
	if err := validateAge(age, lo, hi); err != nil {
		return err
	}
	if err := validateHeight(heightCM); err != nil {
		return err
	}
	return validateWeight(weightKG)
}
