package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/weekly-attendance-api/internal/models"
)

const submissionColumns = `id, owner_id, child_id, class_label, week_number, week_year, status,
monday_value, monday_note, tuesday_value, tuesday_note, wednesday_value, wednesday_note,
thursday_value, thursday_note, friday_value, friday_note, home_alone_value, home_alone_note,
monday_edits, tuesday_edits, wednesday_edits, thursday_edits, friday_edits, home_alone_edits,
created_at, updated_at`

// submissionRow is the flat table shape of a weekly submission.
type submissionRow struct {
	ID         string  `db:"id"`
	OwnerID    string  `db:"owner_id"`
	ChildID    *string `db:"child_id"`
	ClassLabel string  `db:"class_label"`
	WeekNumber int     `db:"week_number"`
	WeekYear   int     `db:"week_year"`
	Status     string  `db:"status"`

	MondayValue    string `db:"monday_value"`
	MondayNote     string `db:"monday_note"`
	TuesdayValue   string `db:"tuesday_value"`
	TuesdayNote    string `db:"tuesday_note"`
	WednesdayValue string `db:"wednesday_value"`
	WednesdayNote  string `db:"wednesday_note"`
	ThursdayValue  string `db:"thursday_value"`
	ThursdayNote   string `db:"thursday_note"`
	FridayValue    string `db:"friday_value"`
	FridayNote     string `db:"friday_note"`
	HomeAloneValue string `db:"home_alone_value"`
	HomeAloneNote  string `db:"home_alone_note"`

	MondayEdits    int `db:"monday_edits"`
	TuesdayEdits   int `db:"tuesday_edits"`
	WednesdayEdits int `db:"wednesday_edits"`
	ThursdayEdits  int `db:"thursday_edits"`
	FridayEdits    int `db:"friday_edits"`
	HomeAloneEdits int `db:"home_alone_edits"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func newSubmissionRow(s *models.WeeklySubmission) submissionRow {
	return submissionRow{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		ChildID:        s.ChildID,
		ClassLabel:     s.ClassLabel,
		WeekNumber:     s.Week.WeekNumber,
		WeekYear:       s.Week.Year,
		Status:         string(s.Status),
		MondayValue:    s.Fields.Monday.Value,
		MondayNote:     s.Fields.Monday.Note,
		TuesdayValue:   s.Fields.Tuesday.Value,
		TuesdayNote:    s.Fields.Tuesday.Note,
		WednesdayValue: s.Fields.Wednesday.Value,
		WednesdayNote:  s.Fields.Wednesday.Note,
		ThursdayValue:  s.Fields.Thursday.Value,
		ThursdayNote:   s.Fields.Thursday.Note,
		FridayValue:    s.Fields.Friday.Value,
		FridayNote:     s.Fields.Friday.Note,
		HomeAloneValue: s.Fields.HomeAlone.Value,
		HomeAloneNote:  s.Fields.HomeAlone.Note,
		MondayEdits:    s.Counters.Monday,
		TuesdayEdits:   s.Counters.Tuesday,
		WednesdayEdits: s.Counters.Wednesday,
		ThursdayEdits:  s.Counters.Thursday,
		FridayEdits:    s.Counters.Friday,
		HomeAloneEdits: s.Counters.HomeAlone,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func (r submissionRow) model() models.WeeklySubmission {
	return models.WeeklySubmission{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		ChildID:    r.ChildID,
		ClassLabel: r.ClassLabel,
		Week:       models.WeekIdentifier{WeekNumber: r.WeekNumber, Year: r.WeekYear},
		Status:     models.SubmissionStatus(r.Status),
		Fields: models.SubmissionFields{
			Monday:    models.FieldEntry{Value: r.MondayValue, Note: r.MondayNote},
			Tuesday:   models.FieldEntry{Value: r.TuesdayValue, Note: r.TuesdayNote},
			Wednesday: models.FieldEntry{Value: r.WednesdayValue, Note: r.WednesdayNote},
			Thursday:  models.FieldEntry{Value: r.ThursdayValue, Note: r.ThursdayNote},
			Friday:    models.FieldEntry{Value: r.FridayValue, Note: r.FridayNote},
			HomeAlone: models.FieldEntry{Value: r.HomeAloneValue, Note: r.HomeAloneNote},
		},
		Counters: models.EditCounters{
			Monday:    r.MondayEdits,
			Tuesday:   r.TuesdayEdits,
			Wednesday: r.WednesdayEdits,
			Thursday:  r.ThursdayEdits,
			Friday:    r.FridayEdits,
			HomeAlone: r.HomeAloneEdits,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func rowsToModels(rows []submissionRow) []models.WeeklySubmission {
	result := make([]models.WeeklySubmission, 0, len(rows))
	for _, row := range rows {
		result = append(result, row.model())
	}
	return result
}

// SubmissionRepository persists weekly submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Get returns a submission by id. sql.ErrNoRows is returned unwrapped when absent.
func (r *SubmissionRepository) Get(ctx context.Context, id string) (*models.WeeklySubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM weekly_submissions WHERE id = $1`
	var row submissionRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	sub := row.model()
	return &sub, nil
}

// FindByOwnerWeek returns the owner's submission for a child in the given week.
func (r *SubmissionRepository) FindByOwnerWeek(ctx context.Context, ownerID string, childID *string, week models.WeekIdentifier) (*models.WeeklySubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM weekly_submissions
WHERE owner_id = $1 AND week_year = $2 AND week_number = $3 AND child_id IS NOT DISTINCT FROM $4
LIMIT 1`
	var row submissionRow
	if err := r.db.GetContext(ctx, &row, query, ownerID, week.Year, week.WeekNumber, childID); err != nil {
		return nil, err
	}
	sub := row.model()
	return &sub, nil
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.WeeklySubmission) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	query := `INSERT INTO weekly_submissions (` + submissionColumns + `) VALUES (
:id, :owner_id, :child_id, :class_label, :week_number, :week_year, :status,
:monday_value, :monday_note, :tuesday_value, :tuesday_note, :wednesday_value, :wednesday_note,
:thursday_value, :thursday_note, :friday_value, :friday_note, :home_alone_value, :home_alone_note,
:monday_edits, :tuesday_edits, :wednesday_edits, :thursday_edits, :friday_edits, :home_alone_edits,
:created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, newSubmissionRow(sub)); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Update writes content, counters and classification. Week and status are left untouched.
func (r *SubmissionRepository) Update(ctx context.Context, sub *models.WeeklySubmission) error {
	const query = `UPDATE weekly_submissions SET
class_label = :class_label,
monday_value = :monday_value, monday_note = :monday_note,
tuesday_value = :tuesday_value, tuesday_note = :tuesday_note,
wednesday_value = :wednesday_value, wednesday_note = :wednesday_note,
thursday_value = :thursday_value, thursday_note = :thursday_note,
friday_value = :friday_value, friday_note = :friday_note,
home_alone_value = :home_alone_value, home_alone_note = :home_alone_note,
monday_edits = :monday_edits, tuesday_edits = :tuesday_edits, wednesday_edits = :wednesday_edits,
thursday_edits = :thursday_edits, friday_edits = :friday_edits, home_alone_edits = :home_alone_edits,
updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, newSubmissionRow(sub)); err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return nil
}

// ListActive returns every submission still in the ACTIVE state.
func (r *SubmissionRepository) ListActive(ctx context.Context) ([]models.WeeklySubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM weekly_submissions WHERE status = $1 ORDER BY week_year, week_number, id`
	var rows []submissionRow
	if err := r.db.SelectContext(ctx, &rows, query, string(models.SubmissionStatusActive)); err != nil {
		return nil, fmt.Errorf("list active submissions: %w", err)
	}
	return rowsToModels(rows), nil
}

// ListByWeek returns every submission of the given week ordered by class.
func (r *SubmissionRepository) ListByWeek(ctx context.Context, week models.WeekIdentifier) ([]models.WeeklySubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM weekly_submissions WHERE week_year = $1 AND week_number = $2 ORDER BY class_label, created_at`
	var rows []submissionRow
	if err := r.db.SelectContext(ctx, &rows, query, week.Year, week.WeekNumber); err != nil {
		return nil, fmt.Errorf("list submissions by week: %w", err)
	}
	return rowsToModels(rows), nil
}

// MarkArchived flips an ACTIVE submission to ARCHIVED. It reports false when
// the row was already archived or no longer exists.
func (r *SubmissionRepository) MarkArchived(ctx context.Context, id string, at time.Time) (bool, error) {
	const query = `UPDATE weekly_submissions SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, id, string(models.SubmissionStatusArchived), at, string(models.SubmissionStatusActive))
	if err != nil {
		return false, fmt.Errorf("archive submission %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("archive submission %s rows affected: %w", id, err)
	}
	return affected > 0, nil
}

// List returns submissions based on filters with total count.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.WeeklySubmission, int, error) {
	baseQuery := `FROM weekly_submissions WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.ClassLabel != "" {
		conditions = append(conditions, fmt.Sprintf("class_label = $%d", len(args)+1))
		args = append(args, filter.ClassLabel)
	}
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.Week != nil {
		conditions = append(conditions, fmt.Sprintf("week_year = $%d AND week_number = $%d", len(args)+1, len(args)+2))
		args = append(args, filter.Week.Year, filter.Week.WeekNumber)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY week_year DESC, week_number DESC, created_at DESC LIMIT %d OFFSET %d", submissionColumns, baseQuery, pageSize, offset)

	var rows []submissionRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	return rowsToModels(rows), total, nil
}
