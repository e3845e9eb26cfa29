package main

import (
	"strings"
	"time"
)

// sex selects the Mifflin-St Jeor constant. Anything that isn't sexMale uses
// the female constant, matching how a missing gender column is treated.
type sex string

const (
	sexMale   sex = "Male"
	sexFemale sex = "Female"
)

// parseSex accepts "male"/"female" in any case. ok=false for anything else.
func parseSex(s string) (sex, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return sexMale, true
	case "female":
		return sexFemale, true
	}
	return "", false
}

// activityLevel is the closed set of TDEE activity tiers. The stored profile
// keeps the human label; parseActivityLevel maps any label back to a tier.
type activityLevel int

const (
	sedentary activityLevel = iota
	lightlyActive
	moderatelyActive
	veryActive
	extraActive
)

// activityMultipliers holds the TDEE multiplier for each tier.
var activityMultipliers = map[activityLevel]float64{
	sedentary:        1.2,
	lightlyActive:    1.375,
	moderatelyActive: 1.55,
	veryActive:       1.725,
	extraActive:      1.9,
}

var activityLabels = map[activityLevel]string{
	sedentary:        "Sedentary",
	lightlyActive:    "Lightly Active",
	moderatelyActive: "Moderately Active",
	veryActive:       "Very Active",
	extraActive:      "Extra Active",
}

// activityKeywords is checked in order; the first keyword contained in the
// lowercased label wins.
var activityKeywords = []struct {
	keyword string
	level   activityLevel
}{
	{"sedentary", sedentary},
	{"lightly", lightlyActive},
	{"moderately", moderatelyActive},
	{"very", veryActive},
	{"extra", extraActive},
}

func (a activityLevel) multiplier() float64 {
	if m, ok := activityMultipliers[a]; ok {
		return m
	}
	return activityMultipliers[sedentary]
}

func (a activityLevel) String() string {
	if l, ok := activityLabels[a]; ok {
		return l
	}
	return activityLabels[sedentary]
}

// parseActivityLevel maps a free-text label to a tier by case-insensitive
// keyword match. Unrecognised labels fall back to sedentary.
func parseActivityLevel(label string) activityLevel {
	l := strings.ToLower(label)
	for _, k := range activityKeywords {
		if strings.Contains(l, k.keyword) {
			return k.level
		}
	}
	return sedentary
}

// knownActivityLevel reports whether the label matches any keyword at all.
// Used for input validation; parseActivityLevel itself never fails.
func knownActivityLevel(label string) bool {
	l := strings.ToLower(label)
	for _, k := range activityKeywords {
		if strings.Contains(l, k.keyword) {
			return true
		}
	}
	return false
}

// computeBMR returns the Mifflin-St Jeor basal metabolic rate in kcal/day.
// Inputs are expected to be validated already; no bounds checks happen here.
func computeBMR(age int, s sex, heightCM, weightKG float64) float64 {
	bmr := 10*weightKG + 6.25*heightCM - 5*float64(age)
	if s == sexMale {
		return bmr + 5
	}
	return bmr - 161
}

// computeTargetCalories applies the activity multiplier for label to bmr and
// truncates toward zero.
func computeTargetCalories(bmr float64, label string) int {
	return targetCaloriesFor(bmr, parseActivityLevel(label))
}

func targetCaloriesFor(bmr float64, level activityLevel) int {
	return int(bmr * level.multiplier())
}

// onboardingTargetCalories is the first-run estimate. Sex isn't collected
// during onboarding, so it always uses the male constant and the lightly
// active multiplier regardless of what the user does later.
func onboardingTargetCalories(age int, heightCM, weightKG float64) int {
	return targetCaloriesFor(computeBMR(age, sexMale, heightCM, weightKG), lightlyActive)
}

// profileTargetCalories recomputes targetCalories from stored profile fields.
// ok=false when age or height is missing. A missing activity level counts as
// sedentary and a missing gender takes the female branch.
func profileTargetCalories(p *userProfile) (int, bool) {
	if p.Age == nil || p.HeightCM == nil {
		return 0, false
	}
	var s sex
	if p.Gender != nil {
		s = sex(*p.Gender)
	}
	label := activityLabels[sedentary]
	if p.ActivityLevel != nil {
		label = *p.ActivityLevel
	}
	bmr := computeBMR(*p.Age, s, *p.HeightCM, p.WeightKG)
	return computeTargetCalories(bmr, label), true
}

// currentMonday returns the Monday of the week containing t at local midnight.
// Uses AddDate to safely handle month/year boundaries.
func currentMonday(t time.Time) time.Time {
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	d := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, t.Location())
}
