package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	"github.com/noah-isme/weekly-attendance-api/internal/service"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

type policyServiceMock struct {
	current   dto.PolicyResponse
	updateErr error
	lastReq   dto.UpdatePolicyRequest
	updated   bool
}

func (m *policyServiceMock) Get() dto.PolicyResponse { return m.current }

func (m *policyServiceMock) Update(ctx context.Context, req dto.UpdatePolicyRequest, actor *models.JWTClaims) (*dto.PolicyResponse, error) {
	m.updated = true
	m.lastReq = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &dto.PolicyResponse{TimeRestrictionPolicy: req.Policy(), Version: m.current.Version + 1}, nil
}

func TestEditWindowHandlerStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	policy := models.TimeRestrictionPolicy{Enabled: true, BlockStartHour: 8, BlockEndHour: 12, BlockWeekdaysOnly: true}
	window := service.NewEditWindow(policy, time.UTC, nil, nil)
	handler := NewEditWindowHandler(window, &policyServiceMock{})
	handler.now = func() time.Time { return time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC) }

	w := httptest.NewRecorder()
	c := parentContext(w, http.MethodGet, "/edit-window", "")

	handler.Status(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data service.EditWindowDecision `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Data.Allowed)
	assert.Equal(t, "editing is available again after 12:00, or anytime on the weekend", body.Data.NextWindow)
	require.NotNil(t, body.Data.NextOpenAt)
	assert.Equal(t, 12, body.Data.NextOpenAt.Hour())
}

func TestEditWindowHandlerGetPolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &policyServiceMock{current: dto.PolicyResponse{Version: 4}}
	handler := NewEditWindowHandler(service.NewEditWindow(models.TimeRestrictionPolicy{}, time.UTC, nil, nil), svc)

	w := httptest.NewRecorder()
	c := parentContext(w, http.MethodGet, "/edit-window/policy", "")

	handler.GetPolicy(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":4`)
}

func TestEditWindowHandlerUpdatePolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &policyServiceMock{current: dto.PolicyResponse{Version: 1}}
	handler := NewEditWindowHandler(service.NewEditWindow(models.TimeRestrictionPolicy{}, time.UTC, nil, nil), svc)

	w := httptest.NewRecorder()
	c := parentContext(w, http.MethodPut, "/edit-window/policy",
		`{"enabled":true,"block_start_hour":7,"block_end_hour":9,"block_weekdays_only":false}`)

	handler.UpdatePolicy(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, svc.updated)
	require.NotNil(t, svc.lastReq.BlockStartHour)
	assert.Equal(t, 7, *svc.lastReq.BlockStartHour)
	assert.Contains(t, w.Body.String(), `"version":2`)
}

func TestEditWindowHandlerUpdatePolicyMalformed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &policyServiceMock{updateErr: appErrors.ErrMalformedPolicy}
	handler := NewEditWindowHandler(service.NewEditWindow(models.TimeRestrictionPolicy{}, time.UTC, nil, nil), svc)

	w := httptest.NewRecorder()
	c := parentContext(w, http.MethodPut, "/edit-window/policy",
		`{"enabled":true,"block_start_hour":12,"block_end_hour":8,"block_weekdays_only":false}`)

	handler.UpdatePolicy(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MALFORMED_POLICY")
}
