package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	"github.com/noah-isme/weekly-attendance-api/internal/service"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
	"github.com/noah-isme/weekly-attendance-api/pkg/response"
)

type windowStatusReader interface {
	Status(now time.Time) service.EditWindowDecision
}

type policyService interface {
	Get() dto.PolicyResponse
	Update(ctx context.Context, req dto.UpdatePolicyRequest, actor *models.JWTClaims) (*dto.PolicyResponse, error)
}

// EditWindowHandler exposes the editing window status and its policy.
type EditWindowHandler struct {
	window   windowStatusReader
	policies policyService
	now      func() time.Time
}

// NewEditWindowHandler builds a new handler.
func NewEditWindowHandler(window windowStatusReader, policies policyService) *EditWindowHandler {
	return &EditWindowHandler{window: window, policies: policies, now: time.Now}
}

// Status godoc
// @Summary Current editing window
// @Description Whether submissions can be written right now and when editing reopens
// @Tags EditWindow
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /edit-window [get]
func (h *EditWindowHandler) Status(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.window.Status(h.now()), nil)
}

// GetPolicy godoc
// @Summary Get the time restriction policy
// @Tags EditWindow
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /edit-window/policy [get]
func (h *EditWindowHandler) GetPolicy(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.policies.Get(), nil)
}

// UpdatePolicy godoc
// @Summary Replace the time restriction policy
// @Tags EditWindow
// @Accept json
// @Produce json
// @Param payload body dto.UpdatePolicyRequest true "Policy payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /edit-window/policy [put]
func (h *EditWindowHandler) UpdatePolicy(c *gin.Context) {
	var req dto.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid policy payload"))
		return
	}
	res, err := h.policies.Update(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
