package main

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnboarding_SavesProfileAndPushes(t *testing.T) {
	router, h, cloud := setupRouter(t, true)

	w := doRequest(router, http.MethodPost, "/api/onboarding",
		`{"name":" Asha ","age":30,"height_cm":175,"weight_kg":70,"step_goal":12000}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decodeBody[userProfile](t, w)
	assert.Equal(t, "Asha", *p.Name)
	assert.Equal(t, 2267, p.TargetCalories)
	assert.Nil(t, p.Gender)
	assert.Equal(t, testUID, *p.FirebaseUID)

	goal, err := h.store.stepGoal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12000, goal)

	assert.Equal(t, "profile:"+testUID, waitPushed(t, cloud))
	doc, ok := cloud.profile(testUID)
	require.True(t, ok)
	assert.Equal(t, 2267, *doc.TargetCalories)
}

func TestOnboarding_DefaultStepGoal(t *testing.T) {
	router, h, _ := setupRouter(t, true)
	w := doRequest(router, http.MethodPost, "/api/onboarding",
		`{"name":"Asha","age":30,"height_cm":175,"weight_kg":70}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	goal, err := h.store.stepGoal(context.Background())
	require.NoError(t, err)
	assert.Equal(t, onboardingDefaultStepGoal, goal)
}

// TestOnboarding_Validation verifies the onboarding ranges, including the
// narrower 18-100 age range, and that nothing is persisted on failure.
func TestOnboarding_Validation(t *testing.T) {
	router, h, _ := setupRouter(t, true)
	cases := map[string]string{
		"blank name":  `{"name":"  ","age":30,"height_cm":175,"weight_kg":70}`,
		"age 17":      `{"name":"A","age":17,"height_cm":175,"weight_kg":70}`,
		"age 101":     `{"name":"A","age":101,"height_cm":175,"weight_kg":70}`,
		"height 99":   `{"name":"A","age":30,"height_cm":99,"weight_kg":70}`,
		"weight 201":  `{"name":"A","age":30,"height_cm":175,"weight_kg":201}`,
		"goal 999":    `{"name":"A","age":30,"height_cm":175,"weight_kg":70,"step_goal":999}`,
		"bad json":    `{"name":`,
		"wrong types": `{"name":"A","age":"thirty","height_cm":175,"weight_kg":70}`,
	}
	for name, body := range cases {
		w := doRequest(router, http.MethodPost, "/api/onboarding", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
	has, err := h.store.hasProfile(context.Background())
	require.NoError(t, err)
	assert.False(t, has)
}

func TestOnboarding_ReplacesExisting(t *testing.T) {
	router, h, _ := setupRouter(t, true)
	for _, name := range []string{"First", "Second"} {
		w := doRequest(router, http.MethodPost, "/api/onboarding",
			`{"name":"`+name+`","age":30,"height_cm":175,"weight_kg":70}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	assert.Equal(t, 1, countProfiles(t, h.store))
	p, err := h.store.loadProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Second", *p.Name)
}

// TestDietSurvey_UsesRealSexAndActivity verifies the survey path computes
// with the submitted sex and activity and keeps the onboarding name.
func TestDietSurvey_UsesRealSexAndActivity(t *testing.T) {
	router, h, cloud := setupRouter(t, true)
	w := doRequest(router, http.MethodPost, "/api/onboarding",
		`{"name":"Asha","age":30,"height_cm":175,"weight_kg":70}`)
	require.Equal(t, http.StatusCreated, w.Code)
	waitPushed(t, cloud)

	w = doRequest(router, http.MethodPost, "/api/diet-survey",
		`{"activity_level":"very active","diet_preference":"Non-Veg","age":30,"sex":"female","height_cm":175,"weight_kg":70}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	p := decodeBody[userProfile](t, w)
	// 1482.75 * 1.725 = 2557.74
	assert.Equal(t, 2557, p.TargetCalories)
	assert.Equal(t, "Female", *p.Gender)
	assert.Equal(t, "Very Active", *p.ActivityLevel)
	assert.Equal(t, "Non-Veg", *p.DietPreference)
	assert.Equal(t, "Asha", *p.Name)

	assert.Equal(t, 1, countProfiles(t, h.store))
	assert.Equal(t, "profile:"+testUID, waitPushed(t, cloud))
}

func TestDietSurvey_Validation(t *testing.T) {
	router, _, _ := setupRouter(t, true)
	cases := map[string]string{
		"missing sex":      `{"activity_level":"Sedentary","diet_preference":"Veg","age":30,"height_cm":175,"weight_kg":70}`,
		"unknown activity": `{"activity_level":"athlete","diet_preference":"Veg","age":30,"sex":"Male","height_cm":175,"weight_kg":70}`,
		"unknown diet":     `{"activity_level":"Sedentary","diet_preference":"vegan","age":30,"sex":"Male","height_cm":175,"weight_kg":70}`,
		"age 9":            `{"activity_level":"Sedentary","diet_preference":"Veg","age":9,"sex":"Male","height_cm":175,"weight_kg":70}`,
		"fractional cm":    `{"activity_level":"Sedentary","diet_preference":"Veg","age":30,"sex":"Male","height_cm":175.5,"weight_kg":70}`,
	}
	for name, body := range cases {
		w := doRequest(router, http.MethodPost, "/api/diet-survey", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	// The survey accepts ages outside the onboarding range.
	w := doRequest(router, http.MethodPost, "/api/diet-survey",
		`{"activity_level":"Sedentary","diet_preference":"Veg","age":12,"sex":"Male","height_cm":150,"weight_kg":40}`)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}
