package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"argusBot/internal/app"
	"argusBot/internal/ports"
)

type mockController struct {
	paused    []bool
	risk      [][2]float64
	updateErr error
}

func (m *mockController) Pause(ctx context.Context)  { m.paused = append(m.paused, true) }
func (m *mockController) Resume(ctx context.Context) { m.paused = append(m.paused, false) }

func (m *mockController) UpdateRisk(ctx context.Context, riskPercent, rewardMultiple float64) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.risk = append(m.risk, [2]float64{riskPercent, rewardMultiple})
	return nil
}

func newAuthServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return NewServer(Config{PushInterval: 10 * time.Millisecond, Username: "ops", Password: "secret"},
		staticSource{snap: app.Snapshot{Running: true}}, prometheus.NewRegistry(), &mockLogger{})
}

func request(t *testing.T, s *Server, method, path, body string, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.SetBasicAuth("ops", "secret")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestBasicAuth(t *testing.T) {
	s := newAuthServer(t)

	tests := []struct {
		name     string
		path     string
		auth     bool
		wantCode int
	}{
		{"health stays open", "/healthz", false, http.StatusOK},
		{"status needs credentials", "/api/status", false, http.StatusUnauthorized},
		{"metrics need credentials", "/metrics", false, http.StatusUnauthorized},
		{"websocket needs credentials", "/ws", false, http.StatusUnauthorized},
		{"status with credentials", "/api/status", true, http.StatusOK},
		{"metrics with credentials", "/metrics", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(t, s, http.MethodGet, tt.path, "", tt.auth)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.SetBasicAuth("ops", "wrong")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestControl_RequiresCredentials(t *testing.T) {
	s := newTestServer(t)
	s.SetController(&mockController{})

	w := request(t, s, http.MethodPost, "/api/control/pause", "", false)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestControl_NoController(t *testing.T) {
	s := newAuthServer(t)
	w := request(t, s, http.MethodPost, "/api/control/pause", "", true)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestControl_PauseResume(t *testing.T) {
	s := newAuthServer(t)
	ctrl := &mockController{}
	s.SetController(ctrl)

	assert.Equal(t, http.StatusUnauthorized, request(t, s, http.MethodPost, "/api/control/pause", "", false).Code)
	assert.Empty(t, ctrl.paused)

	w := request(t, s, http.MethodPost, "/api/control/pause", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paused":true`)

	w = request(t, s, http.MethodPost, "/api/control/resume", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []bool{true, false}, ctrl.paused)
}

func TestControl_Risk(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		updateErr error
		wantCode  int
		wantRisk  [][2]float64
	}{
		{name: "applied", body: `{"risk_percent":0.5,"reward_multiple":3}`, wantCode: http.StatusOK, wantRisk: [][2]float64{{0.5, 3}}},
		{name: "missing multiple", body: `{"risk_percent":1}`, wantCode: http.StatusBadRequest},
		{name: "risk out of range", body: `{"risk_percent":100,"reward_multiple":2}`, wantCode: http.StatusBadRequest},
		{name: "not json", body: `risk=1`, wantCode: http.StatusBadRequest},
		{
			name:      "rejected by risk validation",
			body:      `{"risk_percent":1,"reward_multiple":2}`,
			updateErr: fmt.Errorf("UpdateRisk failed: %w", ports.ErrConfigurationError),
			wantCode:  http.StatusBadRequest,
		},
		{name: "unexpected failure", body: `{"risk_percent":1,"reward_multiple":2}`, updateErr: errors.New("boom"), wantCode: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newAuthServer(t)
			ctrl := &mockController{updateErr: tt.updateErr}
			s.SetController(ctrl)

			w := request(t, s, http.MethodPost, "/api/risk", tt.body, true)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, tt.wantRisk, ctrl.risk)
		})
	}
}
