package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHelplines(t *testing.T) {
	router, _, _ := setupRouter(t, false)
	w := doRequest(router, http.MethodGet, "/api/helplines", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]helpline](t, w)
	require.Len(t, list, 3)
	assert.Equal(t, "AASRA", list[0].Name)
}

func TestGetMentalHealthContent(t *testing.T) {
	router, _, _ := setupRouter(t, false)

	w := doRequest(router, http.MethodGet, "/api/mental-health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody[[]mentalHealthContent](t, w), 3)

	w = doRequest(router, http.MethodGet, "/api/mental-health?category=sleep", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody[[]mentalHealthContent](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "Sleep", items[0].Category)
	assert.Equal(t, "Tip", items[0].Type)

	w = doRequest(router, http.MethodGet, "/api/mental-health?category=Meditation", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeBody[[]mentalHealthContent](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "Video", items[0].Type)

	w = doRequest(router, http.MethodGet, "/api/mental-health?category=Yoga", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
