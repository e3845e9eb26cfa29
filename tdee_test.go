package main

import (
	"testing"
	"time"
)

// makeProfile constructs a fully-populated userProfile for recalculation
// tests. Individual tests nil out specific fields to exercise the guards.
func makeProfile(gender string, age int, heightCM, weightKG float64, activity string) *userProfile {
	return &userProfile{
		Age:           &age,
		Gender:        &gender,
		HeightCM:      &heightCM,
		WeightKG:      weightKG,
		ActivityLevel: &activity,
	}
}

/* ─── BMR tests ──────────────────────────────────────────────────────── */

// TestComputeBMR_Male verifies the male Mifflin-St Jeor formula.
// Inputs: 30 years, 175cm, 70kg. 10*70 + 6.25*175 - 5*30 + 5 = 1648.75
func TestComputeBMR_Male(t *testing.T) {
	if got := computeBMR(30, sexMale, 175, 70); got != 1648.75 {
		t.Errorf("male BMR = %v, want 1648.75", got)
	}
}

// TestComputeBMR_NonMale verifies that female and any other value use -161.
func TestComputeBMR_NonMale(t *testing.T) {
	for _, s := range []sex{sexFemale, "", "male"} {
		if got := computeBMR(30, s, 175, 70); got != 1482.75 {
			t.Errorf("BMR for sex %q = %v, want 1482.75", s, got)
		}
	}
}

/* ─── Activity multiplier tests ──────────────────────────────────────── */

// TestComputeTargetCalories_Levels checks every tier against the male
// 1648.75 BMR, truncated toward zero.
func TestComputeTargetCalories_Levels(t *testing.T) {
	cases := []struct {
		label string
		want  int
	}{
		{"Sedentary", 1978},
		{"Lightly Active", 2267},
		{"Moderately Active", 2555},
		{"Very Active", 2844},
		{"Extra Active", 3132},
		{"very active", 2844},
		{"VERY ACTIVE", 2844},
		{"couch potato", 1978},
		{"", 1978},
	}
	for _, tc := range cases {
		t.Run(tc.label, func(t *testing.T) {
			if got := computeTargetCalories(1648.75, tc.label); got != tc.want {
				t.Errorf("computeTargetCalories(1648.75, %q) = %d, want %d", tc.label, got, tc.want)
			}
		})
	}
}

// TestComputeTargetCalories_FemaleSedentary: 1482.75 * 1.2 = 1779.3.
func TestComputeTargetCalories_FemaleSedentary(t *testing.T) {
	bmr := computeBMR(30, sexFemale, 175, 70)
	if got := computeTargetCalories(bmr, "Sedentary"); got != 1779 {
		t.Errorf("female sedentary target = %d, want 1779", got)
	}
}

// TestParseActivityLevel_KeywordPriority verifies the first keyword in
// priority order wins when a label contains more than one.
func TestParseActivityLevel_KeywordPriority(t *testing.T) {
	cases := map[string]activityLevel{
		"sedentary but very keen": sedentary,
		"lightly / moderately":    lightlyActive,
		"very extra":              veryActive,
		"EXTRA ACTIVE":            extraActive,
	}
	for label, want := range cases {
		if got := parseActivityLevel(label); got != want {
			t.Errorf("parseActivityLevel(%q) = %s, want %s", label, got, want)
		}
	}
}

func TestKnownActivityLevel(t *testing.T) {
	if !knownActivityLevel("Moderately Active") {
		t.Error("expected Moderately Active to be known")
	}
	if knownActivityLevel("athlete") {
		t.Error("expected athlete to be unknown")
	}
}

/* ─── Onboarding vs. recalculation ───────────────────────────────────── */

// TestOnboardingTargetCalories_AlwaysMaleLightlyActive verifies the first-run
// estimate ignores sex and activity: 1648.75 * 1.375 = 2267.03.
func TestOnboardingTargetCalories_AlwaysMaleLightlyActive(t *testing.T) {
	if got := onboardingTargetCalories(30, 175, 70); got != 2267 {
		t.Errorf("onboarding target = %d, want 2267", got)
	}
}

// TestProfileTargetCalories_MissingFields verifies ok=false when age or
// height is nil.
func TestProfileTargetCalories_MissingFields(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(p *userProfile)
	}{
		{"nil Age", func(p *userProfile) { p.Age = nil }},
		{"nil HeightCM", func(p *userProfile) { p.HeightCM = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile("Male", 30, 175, 70, "Sedentary")
			tc.mutFn(p)
			if _, ok := profileTargetCalories(p); ok {
				t.Errorf("expected ok=false when %s, got ok=true", tc.name)
			}
		})
	}
}

// TestProfileTargetCalories_Defaults verifies a missing gender takes the
// female branch and a missing activity level counts as sedentary.
func TestProfileTargetCalories_Defaults(t *testing.T) {
	p := makeProfile("Male", 30, 175, 70, "Very Active")
	p.Gender = nil
	p.ActivityLevel = nil
	got, ok := profileTargetCalories(p)
	if !ok {
		t.Fatal("expected ok=true, got ok=false")
	}
	if got != 1779 {
		t.Errorf("target = %d, want 1779", got)
	}
}

func TestProfileTargetCalories_UsesStoredActivity(t *testing.T) {
	got, ok := profileTargetCalories(makeProfile("Male", 30, 175, 70, "Very Active"))
	if !ok || got != 2844 {
		t.Errorf("target = %d ok=%v, want 2844 ok=true", got, ok)
	}
}

/* ─── currentMonday tests ────────────────────────────────────────────── */

// TestCurrentMonday_ReturnsMonday verifies the Monday of the containing week
// for a midweek day, a Sunday and a day whose Monday is in the prior month.
func TestCurrentMonday_ReturnsMonday(t *testing.T) {
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2026, 10, 14, 15, 30, 0, 0, time.Local), "2026-10-12"},
		{time.Date(2026, 10, 18, 23, 59, 0, 0, time.Local), "2026-10-12"},
		{time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local), "2026-10-19"},
		{time.Date(2026, 10, 1, 8, 0, 0, 0, time.Local), "2026-09-28"},
	}
	for _, tc := range cases {
		monday := currentMonday(tc.in)
		if monday.Weekday() != time.Monday {
			t.Errorf("currentMonday(%v) returned %s, want Monday", tc.in, monday.Weekday())
		}
		if got := monday.Format(dateLayout); got != tc.want {
			t.Errorf("currentMonday(%v) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

// TestCurrentMonday_Midnight verifies that the returned time has no hour,
// minute, second or nanosecond component and keeps the input's location.
func TestCurrentMonday_Midnight(t *testing.T) {
	monday := currentMonday(time.Date(2026, 10, 15, 13, 14, 15, 16, time.Local))
	if monday.Hour() != 0 || monday.Minute() != 0 || monday.Second() != 0 || monday.Nanosecond() != 0 {
		t.Errorf("currentMonday() returned non-midnight time: %v", monday)
	}
	if monday.Location() != time.Local {
		t.Errorf("currentMonday() returned location %v, want Local", monday.Location())
	}
}
