package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NomadCrew/feedback-tracker-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupHealthRouter(svc *MockHealthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHealthHandler(svc)
	r.GET("/health", h.Health)
	r.GET("/health/liveness", h.LivenessCheck)
	r.GET("/health/readiness", h.ReadinessCheck)
	return r
}

func TestHealth(t *testing.T) {
	svc := new(MockHealthService)
	svc.On("Summary").Return(types.HealthCheck{
		Status:    types.HealthStatusOK,
		Timestamp: "2024-01-01T00:00:00.000Z",
		Uptime:    12.5,
		Version:   "1.0.0",
	})

	w := httptest.NewRecorder()
	setupHealthRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "2024-01-01T00:00:00Z", body["timestamp"])
	assert.Equal(t, 12.5, body["uptime"])
	assert.Equal(t, "1.0.0", body["version"])
	assert.NotContains(t, body, "components")
}

func TestLivenessCheck(t *testing.T) {
	svc := new(MockHealthService)

	w := httptest.NewRecorder()
	setupHealthRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertNotCalled(t, "CheckHealth", mock.Anything)
}

func TestReadinessCheck(t *testing.T) {
	testCases := []struct {
		name           string
		status         types.HealthStatus
		expectedStatus int
	}{
		{name: "ready", status: types.HealthStatusUp, expectedStatus: http.StatusOK},
		{name: "degraded still serves", status: types.HealthStatusDegraded, expectedStatus: http.StatusOK},
		{name: "down", status: types.HealthStatusDown, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(MockHealthService)
			svc.On("CheckHealth", mock.Anything).Return(types.HealthCheck{
				Status:  tc.status,
				Version: "1.0.0",
				Components: map[string]types.HealthComponent{
					"storage": {Status: tc.status},
				},
			})

			w := httptest.NewRecorder()
			setupHealthRouter(svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"storage"`)
			svc.AssertExpectations(t)
		})
	}
}
