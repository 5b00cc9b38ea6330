package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	"github.com/noah-isme/weekly-attendance-api/internal/service"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
	"github.com/noah-isme/weekly-attendance-api/pkg/response"
)

type submissionService interface {
	Create(ctx context.Context, req dto.SubmissionRequest, actor *models.JWTClaims) (*dto.SubmissionResponse, error)
	Update(ctx context.Context, id string, req dto.SubmissionRequest, actor *models.JWTClaims) (*dto.SubmissionResponse, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SubmissionResponse, error)
	List(ctx context.Context, filter dto.SubmissionFilter, actor *models.JWTClaims) (*dto.SubmissionList, error)
	Sweep(ctx context.Context) (*dto.ArchiveSweepResponse, error)
}

type weeklyExporter interface {
	ExportWeek(ctx context.Context, week models.WeekIdentifier, format service.ExportFormat, actor *models.JWTClaims) (*service.ExportFile, error)
}

// SubmissionHandler exposes weekly submission endpoints.
type SubmissionHandler struct {
	service  submissionService
	exporter weeklyExporter
}

// NewSubmissionHandler builds a new handler.
func NewSubmissionHandler(svc submissionService, exporter weeklyExporter) *SubmissionHandler {
	return &SubmissionHandler{service: svc, exporter: exporter}
}

// Create godoc
// @Summary Create the weekly submission for the current ISO week
// @Tags Submissions
// @Accept json
// @Produce json
// @Param payload body dto.SubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /submissions [post]
func (h *SubmissionHandler) Create(c *gin.Context) {
	var req dto.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	res, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Update godoc
// @Summary Update a weekly submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Param id path string true "Submission ID"
// @Param payload body dto.SubmissionRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 423 {object} response.Envelope
// @Router /submissions/{id} [put]
func (h *SubmissionHandler) Update(c *gin.Context) {
	var req dto.SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	res, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Get godoc
// @Summary Get a weekly submission
// @Tags Submissions
// @Produce json
// @Param id path string true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(c *gin.Context) {
	res, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List weekly submissions
// @Tags Submissions
// @Produce json
// @Param week query int false "ISO week number"
// @Param year query int false "ISO week year"
// @Param status query string false "ACTIVE or ARCHIVED"
// @Param class_label query string false "Class label"
// @Param owner_id query string false "Owner (staff only)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /submissions [get]
func (h *SubmissionHandler) List(c *gin.Context) {
	var filter dto.SubmissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	list, err := h.service.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list.Items, list.Pagination)
}

// Sweep godoc
// @Summary Archive submissions of past weeks
// @Tags Submissions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /submissions/archive-sweep [post]
func (h *SubmissionHandler) Sweep(c *gin.Context) {
	res, err := h.service.Sweep(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Export godoc
// @Summary Export the overview of one ISO week
// @Tags Submissions
// @Produce text/csv
// @Produce application/pdf
// @Param week query int true "ISO week number"
// @Param year query int true "ISO week year"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /submissions/export [get]
func (h *SubmissionHandler) Export(c *gin.Context) {
	week, err := weekFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format := service.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(service.ExportFormatCSV))))
	file, err := h.exporter.ExportWeek(c.Request.Context(), week, format, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

func weekFromQuery(c *gin.Context) (models.WeekIdentifier, error) {
	week, err := strconv.Atoi(c.Query("week"))
	if err != nil {
		return models.WeekIdentifier{}, appErrors.Clone(appErrors.ErrValidation, "week must be an integer")
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		return models.WeekIdentifier{}, appErrors.Clone(appErrors.ErrValidation, "year must be an integer")
	}
	return models.WeekIdentifier{WeekNumber: week, Year: year}, nil
}
