package main

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoctors_CRUD(t *testing.T) {
	router, _, cloud := setupRouter(t, true)

	w := doRequest(router, http.MethodPost, "/api/doctors",
		`{"name":"Dr. Rao","specialty":"Cardiology","phone_number":"9876543210","email":" rao@example.com "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[doctor](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "rao@example.com", *created.Email)
	assert.NotNil(t, created.CreatedAt)
	assert.Equal(t, "doctor:"+created.ID, waitPushed(t, cloud))

	w = doRequest(router, http.MethodPost, "/api/doctors",
		`{"name":"Dr. Anand","specialty":"Dermatology","phone_number":"9123456780"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	waitPushed(t, cloud)

	w = doRequest(router, http.MethodGet, "/api/doctors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]doctor](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "Dr. Anand", list[0].Name)
	assert.Nil(t, list[0].Email)

	w = doRequest(router, http.MethodPut, "/api/doctors/"+created.ID,
		`{"name":"Dr. Rao","specialty":"Neurology","phone_number":"9876543210"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[doctor](t, w)
	assert.Equal(t, "Neurology", updated.Specialty)
	assert.Nil(t, updated.Email)
	waitPushed(t, cloud)

	w = doRequest(router, http.MethodDelete, "/api/doctors/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "delete:"+created.ID, waitPushed(t, cloud))
	assert.Equal(t, 1, cloud.doctorCount())

	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, "/api/doctors/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodPut, "/api/doctors/missing",
		`{"name":"X","specialty":"Y","phone_number":"1"}`).Code)
}

func TestDoctors_Validation(t *testing.T) {
	router, _, _ := setupRouter(t, true)
	cases := map[string]string{
		"no name":      `{"specialty":"Cardiology","phone_number":"1"}`,
		"no specialty": `{"name":"Dr. Rao","phone_number":"1"}`,
		"no phone":     `{"name":"Dr. Rao","specialty":"Cardiology"}`,
		"bad email":    `{"name":"Dr. Rao","specialty":"Cardiology","phone_number":"1","email":"rao"}`,
	}
	for name, body := range cases {
		w := doRequest(router, http.MethodPost, "/api/doctors", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

// TestDoctors_LocalWriteSurvivesCloudFailure verifies a failing mirror never
// fails the local write.
func TestDoctors_LocalWriteSurvivesCloudFailure(t *testing.T) {
	router, _, cloud := setupRouter(t, true)
	cloud.pushErr = errors.New("unavailable")

	w := doRequest(router, http.MethodPost, "/api/doctors",
		`{"name":"Dr. Rao","specialty":"Cardiology","phone_number":"1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	waitPushed(t, cloud)
	assert.Zero(t, cloud.doctorCount())

	w = doRequest(router, http.MethodGet, "/api/doctors", nil)
	assert.Len(t, decodeBody[[]doctor](t, w), 1)
}

func TestSyncDoctors(t *testing.T) {
	router, h, cloud := setupRouter(t, true)
	for _, name := range []string{"A", "B", "C", "D", "E", "F"} {
		_, err := h.store.insertDoctor(t.Context(), doctorRequest{Name: name, Specialty: "GP", PhoneNumber: "1"}, time.Now())
		require.NoError(t, err)
	}

	w := doRequest(router, http.MethodPost, "/api/doctors/sync", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"synced":6,"failed":0}`, w.Body.String())
	assert.Equal(t, 6, cloud.doctorCount())

	cloud.pushErr = errors.New("unavailable")
	w = doRequest(router, http.MethodPost, "/api/doctors/sync", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
