package main

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format(dateLayout) + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.ParseInLocation(`"2006-01-02"`, string(b), time.Local)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Scan implements sql.Scanner for the TEXT date keys SQLite hands back.
func (d *DateOnly) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case time.Time:
		d.Time = v
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("scan DateOnly: unsupported type %T", src)
}

func (d *DateOnly) parse(s string) error {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// dateKey formats t as the local calendar-day key used by daily_steps.
func dateKey(t time.Time) string {
	return t.In(time.Local).Format(dateLayout)
}

/* ─── Domain structs ─────────────────────────────────────────────────── */

// userProfile maps to the single-row user_profile table. Nullable columns use
// pointers so NULLs round-trip and JSON carries them as null.
type userProfile struct {
	ID             int64    `json:"id"`
	Name           *string  `json:"name"`
	Age            *int     `json:"age"`
	Gender         *string  `json:"gender"`
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       float64  `json:"weight_kg"`
	ActivityLevel  *string  `json:"activity_level"`
	DietPreference *string  `json:"diet_preference"`
	TargetCalories int      `json:"target_calories"`
	FirebaseUID    *string  `json:"firebase_uid"`
}

// mealPlan maps to the static meal_plans table. Bands are [min, max).
type mealPlan struct {
	ID          int    `json:"id"`
	MinCalories int    `json:"min_calories"`
	MaxCalories int    `json:"max_calories"`
	DietType    string `json:"diet_type"`
	Breakfast   string `json:"breakfast"`
	Lunch       string `json:"lunch"`
	Dinner      string `json:"dinner"`
	Snacks      string `json:"snacks"`
}

// dailyStepRecord maps to daily_steps. One row per local calendar date.
type dailyStepRecord struct {
	Date  DateOnly `json:"date"`
	Steps int      `json:"steps"`
}

// stepWeekDay is one day's entry in the GET /api/steps/week-summary response.
// Days with no record have HasData=false and zero steps.
type stepWeekDay struct {
	Date    DateOnly `json:"date"`
	Steps   int      `json:"steps"`
	Goal    int      `json:"goal"`
	GoalMet bool     `json:"goal_met"`
	HasData bool     `json:"has_data"`
}

// stepStatus is the response shape for GET /api/steps/status.
type stepStatus struct {
	Tracking    bool   `json:"tracking"`
	Date        string `json:"date"`
	TodaySteps  int    `json:"today_steps"`
	Goal        int    `json:"goal"`
	ProgressPct int    `json:"progress_pct"`
}

// doctor maps to the doctors table. IDs are UUIDs so the same key addresses
// the cloud mirror document.
type doctor struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Specialty   string     `json:"specialty"`
	PhoneNumber string     `json:"phone_number"`
	Email       *string    `json:"email"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// helpline maps to the seeded helplines table.
type helpline struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description"`
}

// mentalHealthContent maps to mental_health_content. Type is Video or Tip;
// ContentData is a link for videos and the tip text otherwise.
type mentalHealthContent struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Category    string `json:"category"`
	ContentData string `json:"content_data"`
}

/* ─── Request bodies ─────────────────────────────────────────────────── */

// onboardingRequest is the request body for POST /api/onboarding.
type onboardingRequest struct {
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	HeightCM float64 `json:"height_cm"`
	WeightKG float64 `json:"weight_kg"`
	StepGoal *int    `json:"step_goal"`
}

// dietSurveyRequest is the request body for POST /api/diet-survey.
type dietSurveyRequest struct {
	ActivityLevel  string  `json:"activity_level"`
	DietPreference string  `json:"diet_preference"`
	Age            int     `json:"age"`
	Sex            string  `json:"sex"`
	HeightCM       int     `json:"height_cm"`
	WeightKG       float64 `json:"weight_kg"`
}

// updateProfileRequest is the request body for PUT /api/profile.
// A nil name leaves the stored name untouched.
type updateProfileRequest struct {
	Name     *string `json:"name"`
	Age      int     `json:"age"`
	HeightCM float64 `json:"height_cm"`
	WeightKG float64 `json:"weight_kg"`
}

// doctorRequest is the request body for POST and PUT /api/doctors.
type doctorRequest struct {
	Name        string  `json:"name"`
	Specialty   string  `json:"specialty"`
	PhoneNumber string  `json:"phone_number"`
	Email       *string `json:"email"`
}
