package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stayview/bookinsightsapi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRoundTrip(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	req := uploadRequest(t, "unit,arrival\nA101,2024-02-01")
	req.AddCookie(cookie)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeMessage(t, rec)
	assert.Equal(t, "Processing completed!", body["message"])
	uploaded, ok := body["insights"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "2024-02", uploaded["date"])

	// The stored insights are exactly what the generator returned
	req = httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	req.AddCookie(cookie)
	rec = ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	stored := decodeMessage(t, rec)
	assert.Equal(t, uploaded, stored)
}

func TestUploadNoFile(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	req := uploadRequest(t, "")
	req.AddCookie(cookie)
	rec := ts.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "No file uploaded", decodeMessage(t, rec)["message"])
	// Rejected before any external call
	assert.Equal(t, 0, ts.generator.calls)
}

func TestRefreshMissingYearOrMonth(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	for _, payload := range []string{`{"month":"02"}`, `{"year":"2024"}`, `{}`} {
		req := jsonRequest(http.MethodPost, "/insights", payload)
		req.AddCookie(cookie)
		rec := ts.do(req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
	// Rejected before any external call
	assert.Equal(t, 0, ts.generator.calls)
}

func TestRefreshUpdatesStoredInsights(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	req := jsonRequest(http.MethodPost, "/insights", `{"year":"2024","month":"02"}`)
	req.AddCookie(cookie)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Insights updated!", decodeMessage(t, rec)["message"])
	assert.Equal(t, 1, ts.generator.calls)

	req = httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	req.AddCookie(cookie)
	rec = ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-02", decodeMessage(t, rec)["date"])
}

func TestGetInsightsBeforeAnyUpload(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	req := httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	req.AddCookie(cookie)
	rec := ts.do(req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInsightsIsIdempotent(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	req := uploadRequest(t, "data")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, ts.do(req).Code)

	var bodies []string
	for i := 0; i < 3; i++ {
		req = httptest.NewRequest(http.MethodGet, "/api/insights", nil)
		req.AddCookie(cookie)
		rec := ts.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		bodies = append(bodies, rec.Body.String())
	}
	assert.Equal(t, bodies[0], bodies[1])
	assert.Equal(t, bodies[1], bodies[2])
}

func TestGeneratorNonJSONLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	// First upload succeeds and populates the store
	req := uploadRequest(t, "data")
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, ts.do(req).Code)

	// Generator starts answering with prose instead of JSON
	ts.generator.text = "I'm sorry, I can't produce that."

	req = uploadRequest(t, "data")
	req.AddCookie(cookie)
	rec := ts.do(req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	req = jsonRequest(http.MethodPost, "/insights", `{"year":"2024","month":"03"}`)
	req.AddCookie(cookie)
	rec = ts.do(req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// The previously stored insights survive the failed requests
	req = httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	req.AddCookie(cookie)
	rec = ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-02", decodeMessage(t, rec)["date"])
}

func TestGeneratorUpstreamFailure(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &models.UserModel{ID: 7, Name: "alice", Password: "pw1"})
	cookie := ts.login(t, "alice", "pw1")

	ts.generator.status = http.StatusServiceUnavailable

	req := uploadRequest(t, "data")
	req.AddCookie(cookie)
	rec := ts.do(req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestInsightsArePerUser(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t,
		&models.UserModel{ID: 7, Name: "alice", Password: "pw1"},
		&models.UserModel{ID: 8, Name: "bob", Password: "pw2"},
	)
	aliceCookie := ts.login(t, "alice", "pw1")
	bobCookie := ts.login(t, "bob", "pw2")

	req := uploadRequest(t, "data")
	req.AddCookie(aliceCookie)
	require.Equal(t, http.StatusOK, ts.do(req).Code)

	// Bob has not uploaded anything
	req = httptest.NewRequest(http.MethodGet, "/api/insights", nil)
	req.AddCookie(bobCookie)
	rec := ts.do(req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPITest(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/api/test", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "API is working!", decodeMessage(t, rec)["message"])
}
