package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stayview/bookinsightsapi/internal/api/middleware"
	"github.com/stayview/bookinsightsapi/internal/config"
	"github.com/stayview/bookinsightsapi/internal/models"
	"github.com/stayview/bookinsightsapi/internal/repository"
	"github.com/stayview/bookinsightsapi/internal/service"
	"github.com/stretchr/testify/require"
)

const testInsightsJSON = `{
  "date": "2024-02",
  "totalArrivals": 120,
  "arrivalPercentage": 75.5,
  "memberArrivals": 40,
  "generalGuestArrivals": 80,
  "departuresToday": 12,
  "occupancyRate": 88.2,
  "ADR": 145.6,
  "guestBirthdays": [{"name": "John Doe", "birthday": "1990-02-14"}],
  "ageGroupSegmentation": {"child": 20, "adult": 85, "senior": 15},
  "canceledBookings": {"count": 5, "percentage": 4.2},
  "frequentUnits": [{"unitId": "A101", "bookings": 9}],
  "monthlyIncome": 52000,
  "yearlyIncome": 310000
}`

// -------- test fakes --------

type fakeUsers struct {
	users map[string]*models.UserModel
	err   error
}

func (f *fakeUsers) GetUserByName(name string) (*models.UserModel, error) {
	if f.err != nil {
		return nil, f.err
	}
	user, ok := f.users[name]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return user, nil
}

// fakeGenerator is a stand-in for the generativelanguage endpoint. Its
// candidate text and status can be swapped between requests, and it counts
// the calls it receives.
type fakeGenerator struct {
	srv    *httptest.Server
	status int
	text   string
	calls  int
}

func newFakeGeneratorBackend(t *testing.T) *fakeGenerator {
	t.Helper()
	g := &fakeGenerator{status: http.StatusOK, text: testInsightsJSON}
	g.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.calls++
		w.WriteHeader(g.status)
		if g.status != http.StatusOK {
			return
		}
		resp := map[string]interface{}{
			"candidates": []interface{}{
				map[string]interface{}{
					"content": map[string]interface{}{
						"parts": []interface{}{map[string]interface{}{"text": g.text}},
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(g.srv.Close)
	return g
}

// testServer wires the handlers the way internal/api/routes.go does, with
// an in-memory token store and a fake user table.
type testServer struct {
	e         *echo.Echo
	users     *fakeUsers
	generator *fakeGenerator
	store     *service.InsightStore
	tokens    *service.MemoryTokenStore
}

func newTestServer(t *testing.T, userRows ...*models.UserModel) *testServer {
	t.Helper()

	users := &fakeUsers{users: make(map[string]*models.UserModel)}
	for _, user := range userRows {
		users.users[user.Name] = user
	}

	tokens := service.NewMemoryTokenStore()
	sessionService := service.NewSessionService(users, tokens, "test-secret", time.Hour)
	sessionHandler := NewSessionHandler(sessionService, time.Hour, false)

	generator := newFakeGeneratorBackend(t)
	insightService, err := service.NewInsightService(&config.Config{
		GeminiAPIKey:  "test-key",
		GeminiBaseURL: generator.srv.URL,
		GeminiModel:   "gemini-1.5-flash",
		GeminiTimeout: "5s",
	})
	require.NoError(t, err)

	store := service.NewInsightStore()
	insightHandler := NewInsightHandler(insightService, store)

	e := echo.New()
	e.GET("/dashboard", func(c echo.Context) error {
		return c.String(http.StatusOK, "dashboard")
	}, middleware.PageAuthMiddleware(sessionService))
	e.POST("/login", sessionHandler.Login)
	e.POST("/logout", sessionHandler.Logout, middleware.AuthMiddleware(sessionService))
	e.POST("/upload", insightHandler.Upload, middleware.AuthMiddleware(sessionService))
	e.POST("/insights", insightHandler.Refresh, middleware.AuthMiddleware(sessionService))
	apiGroup := e.Group("/api")
	apiGroup.GET("/test", insightHandler.TestAPI)
	apiGroup.GET("/insights", insightHandler.GetInsights, middleware.AuthMiddleware(sessionService))

	return &testServer{e: e, users: users, generator: generator, store: store, tokens: tokens}
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

// login performs a login request and returns the session cookie
func (ts *testServer) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := ts.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.TokenCookieName {
			return cookie
		}
	}
	t.Fatal("login response did not set a token cookie")
	return nil
}

// uploadRequest builds a multipart POST /upload carrying the given file content
func uploadRequest(t *testing.T, fileContent string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if fileContent != "" {
		part, err := writer.CreateFormFile("file", "bookings.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(fileContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func jsonRequest(method, target, payload string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}
