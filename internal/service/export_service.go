package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/models"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
	"github.com/noah-isme/weekly-attendance-api/pkg/export"
)

// ExportFormat enumerates rendered overview formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type weekReader interface {
	ListByWeek(ctx context.Context, week models.WeekIdentifier) ([]models.WeeklySubmission, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportFile is a rendered overview ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the staff overview of one ISO week.
type ExportService struct {
	repo   weekReader
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
	now    func() time.Time
}

var overviewHeaders = []string{"Class", "Child", "Owner", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Home alone", "Status", "Edits"}

// NewExportService constructs an ExportService.
func NewExportService(repo weekReader, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{repo: repo, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// ExportWeek renders every submission of week in the requested format.
func (s *ExportService) ExportWeek(ctx context.Context, week models.WeekIdentifier, format ExportFormat, actor *models.JWTClaims) (*ExportFile, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.CanReadAll() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export is limited to staff")
	}
	if !week.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s does not exist", week))
	}

	subs, err := s.repo.ListByWeek(ctx, week)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to load submissions for export")
	}
	dataset := buildOverviewDataset(subs)
	title := fmt.Sprintf("Weekly attendance %s", week)

	file := &ExportFile{Filename: fmt.Sprintf("attendance_%d_w%02d_%s.%s", week.Year, week.WeekNumber, s.now().UTC().Format("20060102_150405"), format)}
	switch format {
	case ExportFormatCSV:
		file.ContentType = "text/csv"
		file.Data, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		file.ContentType = "application/pdf"
		file.Data, err = s.pdf.Render(dataset, title)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %s", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	s.logger.Info("weekly overview exported",
		zap.String("week", week.String()),
		zap.String("format", string(format)),
		zap.Int("rows", len(dataset.Rows)),
		zap.String("user_id", actor.UserID),
	)
	return file, nil
}

func buildOverviewDataset(subs []models.WeeklySubmission) export.Dataset {
	rows := make([]map[string]string, 0, len(subs))
	for _, sub := range subs {
		edits := 0
		for _, field := range models.TrackedFields {
			edits += sub.Counters.Get(field)
		}
		rows = append(rows, map[string]string{
			"Class":      sub.ClassLabel,
			"Child":      deref(sub.ChildID),
			"Owner":      sub.OwnerID,
			"Monday":     formatEntry(sub.Fields.Monday),
			"Tuesday":    formatEntry(sub.Fields.Tuesday),
			"Wednesday":  formatEntry(sub.Fields.Wednesday),
			"Thursday":   formatEntry(sub.Fields.Thursday),
			"Friday":     formatEntry(sub.Fields.Friday),
			"Home alone": formatEntry(sub.Fields.HomeAlone),
			"Status":     string(sub.Status),
			"Edits":      strconv.Itoa(edits),
		})
	}
	return export.Dataset{Headers: overviewHeaders, Rows: rows}
}

func formatEntry(entry models.FieldEntry) string {
	value := strings.ReplaceAll(entry.Value, ",", ", ")
	if entry.Note == "" {
		return value
	}
	return fmt.Sprintf("%s (%s)", value, entry.Note)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
