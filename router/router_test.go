package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/NomadCrew/feedback-tracker-backend/config"
	"github.com/NomadCrew/feedback-tracker-backend/handlers"
	"github.com/NomadCrew/feedback-tracker-backend/internal/store/filestore"
	"github.com/NomadCrew/feedback-tracker-backend/logger"
	"github.com/NomadCrew/feedback-tracker-backend/services"
	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Environment:    config.EnvDevelopment,
			Port:           "3001",
			AllowedOrigins: []string{"*"},
			Version:        "1.0.0",
		},
		RateLimit: config.RateLimitConfig{
			SubmissionsPerMinute: 1,
			WindowSeconds:        60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, redisClient redis.UniversalClient) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := filestore.NewFeedbackStore(filepath.Join(t.TempDir(), "data", "feedback.json"))
	feedbackService := services.NewFeedbackService(repo)
	healthService := services.NewHealthService(repo, nil, cfg.Server.Version)

	return SetupRouter(Dependencies{
		Config:          cfg,
		FeedbackHandler: handlers.NewFeedbackHandler(feedbackService),
		HealthHandler:   handlers.NewHealthHandler(healthService),
		RedisClient:     redisClient,
		Logger:          logger.GetLogger(),
	})
}

func call(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFeedbackLifecycle(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	w := call(r, http.MethodGet, "/feedback", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = call(r, http.MethodPost, "/feedback", `{"name":"  Ada  ","email":" ADA@Example.com ","message":"  Please add dark mode  "}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Ada", created.Name)
	assert.Equal(t, "ada@example.com", created.Email)
	assert.Equal(t, "Please add dark mode", created.Message)
	assert.Equal(t, 0, created.Votes)

	w = call(r, http.MethodPost, "/feedback", `{"name":"Bo","email":"bo@example.com","message":"Search is slow on mobile"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var second types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))

	w = call(r, http.MethodPut, "/feedback/"+created.ID+"/vote", `{"action":"upvote"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodPut, "/feedback/"+created.ID+"/vote", `{"action":"upvote"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = call(r, http.MethodPut, "/feedback/"+second.ID+"/vote", `{"action":"downvote"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = call(r, http.MethodGet, "/feedback", "")
	require.Equal(t, http.StatusOK, w.Code)
	var items []types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, -1, items[0].Votes)
	assert.Equal(t, created.ID, items[1].ID)
	assert.Equal(t, 2, items[1].Votes)

	w = call(r, http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalFeedback":2,"totalVotes":1,"averageVotes":0.5,"positiveRate":50}`, w.Body.String())

	w = call(r, http.MethodDelete, "/feedback/"+second.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var deleted types.DeleteFeedbackResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal(t, "Feedback deleted successfully", deleted.Message)
	assert.Equal(t, second.ID, deleted.Feedback.ID)

	w = call(r, http.MethodDelete, "/feedback/"+second.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/feedback", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, created.ID, items[0].ID)
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	testCases := []struct {
		name    string
		body    string
		code    string
		message string
	}{
		{"missing fields", `{"name":"Ada","email":"ada@example.com"}`, "MISSING_FIELDS", "All fields (name, email, message) are required."},
		{"short name", `{"name":" A ","email":"ada@example.com","message":"long enough message"}`, "NAME_TOO_SHORT", "Name must be at least 2 characters long."},
		{"short message", `{"name":"Ada","email":"ada@example.com","message":" too short "}`, "MESSAGE_TOO_SHORT", "Message must be at least 10 characters long."},
		{"bad email", `{"name":"Ada","email":"ada@example","message":"long enough message"}`, "INVALID_EMAIL", "Invalid email format."},
		{"email with no-break space", `{"name":"Ada","email":"a\u00a0b@c.de","message":"long enough message"}`, "INVALID_EMAIL", "Invalid email format."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := call(r, http.MethodPost, "/feedback", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Code)
			assert.Equal(t, tc.message, body.Error)
		})
	}

	w := call(r, http.MethodGet, "/feedback", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestVoteOnUnknownID(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	w := call(r, http.MethodPut, "/feedback/does-not-exist/vote", `{"action":"upvote"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodPut, "/feedback/does-not-exist/vote", `{"action":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVoteWithNonStringAction(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	w := call(r, http.MethodPost, "/feedback", `{"name":"Ada","email":"ada@example.com","message":"long enough message"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var created types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	for _, body := range []string{`{"action":1}`, `{"action":true}`, `{"action":["upvote"]}`, `{"action":{"dir":"upvote"}}`, `{"action":null}`} {
		t.Run(body, func(t *testing.T) {
			w := call(r, http.MethodPut, "/feedback/"+created.ID+"/vote", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "INVALID_ACTION", resp.Code)
		})
	}

	w = call(r, http.MethodGet, "/feedback", "")
	var items []types.Feedback
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 0, items[0].Votes)
}

func TestUnknownRoutes(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/nope"},
		{http.MethodPatch, "/feedback"},
		{http.MethodGet, "/feedback/abc/vote"},
	} {
		w := call(r, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, tc.method+" "+tc.path)
		assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	w := call(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health types.HealthCheck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, types.HealthStatusOK, health.Status)
	assert.Equal(t, "1.0.0", health.Version)
	assert.NotEmpty(t, health.Timestamp)

	w = call(r, http.MethodGet, "/health/readiness", "")
	assert.Equal(t, http.StatusOK, w.Code)

	call(r, http.MethodGet, "/feedback", "")
	w = call(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "feedback_operations_total")
}

func TestSecurityAndRequestHeaders(t *testing.T) {
	r := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/feedback", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSubmissionRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true

	db, mock := redismock.NewClientMock()
	key := "ratelimit:feedback:192.0.2.1"
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 60*time.Second).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectTTL(key).SetVal(59*time.Second)

	r := newTestRouter(t, cfg, db)
	body := `{"name":"Ada","email":"ada@example.com","message":"Please add dark mode"}`

	w := call(r, http.MethodPost, "/feedback", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = call(r, http.MethodPost, "/feedback", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "59", w.Header().Get("Retry-After"))

	// reads are never limited
	w = call(r, http.MethodGet, "/feedback", "")
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRateLimitIgnoresForgedForwardedFor(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit.Enabled = true

	db, mock := redismock.NewClientMock()
	key := "ratelimit:feedback:192.0.2.1"
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, 60*time.Second).SetVal(true)
	mock.ExpectIncr(key).SetVal(2)
	mock.ExpectTTL(key).SetVal(59*time.Second)

	r := newTestRouter(t, cfg, db)
	body := `{"name":"Ada","email":"ada@example.com","message":"Please add dark mode"}`

	for i, forged := range []string{"198.51.100.1", "198.51.100.2"} {
		req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Forwarded-For", forged)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if i == 0 {
			assert.Equal(t, http.StatusCreated, w.Code)
		} else {
			assert.Equal(t, http.StatusTooManyRequests, w.Code)
		}
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}
