package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

const overviewCachePrefix = "submissions:overview:"

type submissionRepository interface {
	Get(ctx context.Context, id string) (*models.WeeklySubmission, error)
	FindByOwnerWeek(ctx context.Context, ownerID string, childID *string, week models.WeekIdentifier) (*models.WeeklySubmission, error)
	Create(ctx context.Context, sub *models.WeeklySubmission) error
	Update(ctx context.Context, sub *models.WeeklySubmission) error
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.WeeklySubmission, int, error)
	ListActive(ctx context.Context) ([]models.WeeklySubmission, error)
	MarkArchived(ctx context.Context, id string, at time.Time) (bool, error)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type editWindowGate interface {
	Evaluate(now time.Time) EditWindowDecision
	Location() *time.Location
}

type overviewCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
	Invalidate(ctx context.Context, pattern string)
}

// SubmissionServiceConfig tunes lifecycle behaviour.
type SubmissionServiceConfig struct {
	// LockArchived rejects updates to archived submissions.
	LockArchived     bool
	OverviewCacheTTL time.Duration
	Now              func() time.Time
}

// SubmissionService manages creation, editing, reads and archival of weekly submissions.
type SubmissionService struct {
	repo      submissionRepository
	window    editWindowGate
	tracker   *EditAuditTracker
	audit     auditLogger
	cache     overviewCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    SubmissionServiceConfig
}

// NewSubmissionService constructs the service. audit, cache and metrics are optional.
func NewSubmissionService(repo submissionRepository, window editWindowGate, tracker *EditAuditTracker, audit auditLogger, cache overviewCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg SubmissionServiceConfig) *SubmissionService {
	if tracker == nil {
		tracker = NewEditAuditTracker()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &SubmissionService{
		repo:      repo,
		window:    window,
		tracker:   tracker,
		audit:     audit,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
	}
}

// Create stores a new ACTIVE submission stamped with the current ISO week.
func (s *SubmissionService) Create(ctx context.Context, req dto.SubmissionRequest, actor *models.JWTClaims) (*dto.SubmissionResponse, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	now := s.now()
	decision, err := s.gate(now, "create")
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only parents can create submissions")
	}
	req = normalizeSubmissionRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	week := models.WeekOf(now)
	existing, err := s.repo.FindByOwnerWeek(ctx, actor.UserID, req.ChildID, week)
	switch {
	case err == nil && existing != nil:
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("a submission for %s already exists", week))
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Storage(err, "failed to check existing submission")
	}

	fields := requestFields(req)
	sub := &models.WeeklySubmission{
		OwnerID:    actor.UserID,
		ChildID:    req.ChildID,
		ClassLabel: req.ClassLabel,
		Week:       week,
		Status:     models.SubmissionStatusActive,
		Fields:     fields,
		Counters:   s.tracker.DiffAndIncrement(nil, fields),
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, appErrors.Storage(err, "failed to create submission")
	}

	s.metrics.RecordSubmissionCreated(sub.ClassLabel)
	s.invalidateOverview(ctx)
	s.emitAudit(ctx, actor, models.AuditActionSubmissionCreate, sub.ID, nil, sub)
	s.logger.Info("submission created",
		zap.String("submission_id", sub.ID),
		zap.String("owner_id", sub.OwnerID),
		zap.String("week", week.String()),
	)

	resp := dto.NewSubmissionResponse(*sub)
	resp.Warnings = decisionWarnings(decision)
	return &resp, nil
}

// Update replaces the content of an existing submission and advances its edit counters.
// The week stamp and status are never touched.
func (s *SubmissionService) Update(ctx context.Context, id string, req dto.SubmissionRequest, actor *models.JWTClaims) (*dto.SubmissionResponse, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	now := s.now()
	decision, err := s.gate(now, "update")
	if err != nil {
		return nil, err
	}
	req = normalizeSubmissionRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	previous, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !previous.OwnedBy(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another account")
	}
	if s.config.LockArchived && previous.Status == models.SubmissionStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrArchived, fmt.Sprintf("submission for %s is archived", previous.Week))
	}

	fields := requestFields(req)
	changed := s.tracker.ChangedFields(previous, fields)
	updated := *previous
	updated.ClassLabel = req.ClassLabel
	updated.Fields = fields
	updated.Counters = s.tracker.DiffAndIncrement(previous, fields)
	updated.UpdatedAt = now.UTC()

	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, appErrors.Storage(err, "failed to update submission")
	}

	names := make([]string, len(changed))
	for i, field := range changed {
		names[i] = string(field)
	}
	s.metrics.RecordSubmissionUpdated(names)
	s.invalidateOverview(ctx)
	s.emitAudit(ctx, actor, models.AuditActionSubmissionUpdate, updated.ID, previous, &updated)
	s.logger.Info("submission updated",
		zap.String("submission_id", updated.ID),
		zap.Strings("changed_fields", names),
	)

	resp := dto.NewSubmissionResponse(updated)
	resp.Warnings = decisionWarnings(decision)
	return &resp, nil
}

// Get returns a submission readable by the actor.
func (s *SubmissionService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SubmissionResponse, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	sub, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanReadAll() && !sub.OwnedBy(actor.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another account")
	}
	resp := dto.NewSubmissionResponse(*sub)
	return &resp, nil
}

// List returns a page of submissions. Parents only ever see their own.
func (s *SubmissionService) List(ctx context.Context, filter dto.SubmissionFilter, actor *models.JWTClaims) (*dto.SubmissionList, error) {
	if actor == nil || actor.UserID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid filter")
	}
	if (filter.Week == 0) != (filter.Year == 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "week and year must be provided together")
	}

	query := models.SubmissionFilter{
		OwnerID:    strings.TrimSpace(filter.OwnerID),
		ClassLabel: strings.TrimSpace(filter.ClassLabel),
		Page:       filter.Page,
		PageSize:   filter.PageSize,
	}
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize <= 0 || query.PageSize > 100 {
		query.PageSize = 20
	}
	if filter.Status != "" {
		status := models.SubmissionStatus(filter.Status)
		query.Status = &status
	}
	if filter.Week != 0 {
		week := models.WeekIdentifier{WeekNumber: filter.Week, Year: filter.Year}
		if !week.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s does not exist", week))
		}
		query.Week = &week
	}

	staffView := actor.Role.CanReadAll()
	if !staffView {
		query.OwnerID = actor.UserID
	}

	key := overviewCacheKey(query)
	if staffView && s.cache != nil {
		var cached dto.SubmissionList
		if s.cache.Get(ctx, key, &cached) {
			return &cached, nil
		}
	}

	items, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list submissions")
	}
	list := &dto.SubmissionList{
		Items:      make([]dto.SubmissionResponse, 0, len(items)),
		Pagination: &models.Pagination{Page: query.Page, PageSize: query.PageSize, TotalCount: total},
	}
	for _, item := range items {
		list.Items = append(list.Items, dto.NewSubmissionResponse(item))
	}
	if staffView && s.cache != nil {
		s.cache.Set(ctx, key, list, s.config.OverviewCacheTTL)
	}
	return list, nil
}

// SweepArchive archives every ACTIVE submission whose week is strictly before the week of now.
// Per-record failures are aggregated and do not stop the sweep.
func (s *SubmissionService) SweepArchive(ctx context.Context, now time.Time) (int, error) {
	result, err := s.sweep(ctx, now)
	if result == nil {
		return 0, err
	}
	return result.ArchivedCount, err
}

// Sweep runs an archive sweep at the current instant.
func (s *SubmissionService) Sweep(ctx context.Context) (*dto.ArchiveSweepResponse, error) {
	return s.sweep(ctx, s.now())
}

func (s *SubmissionService) sweep(ctx context.Context, now time.Time) (*dto.ArchiveSweepResponse, error) {
	start := time.Now()
	current := models.WeekOf(s.local(now))
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Storage(err, "failed to list active submissions")
	}

	result := &dto.ArchiveSweepResponse{CurrentWeek: current.String()}
	var errs error
	for _, sub := range active {
		if !sub.Week.Before(current) {
			continue
		}
		archived, err := s.repo.MarkArchived(ctx, sub.ID, now.UTC())
		if err != nil {
			result.Failures++
			errs = multierr.Append(errs, err)
			continue
		}
		if archived {
			result.ArchivedCount++
		}
	}

	s.metrics.ObserveSweep(result.ArchivedCount, result.Failures, time.Since(start))
	if result.ArchivedCount > 0 {
		s.invalidateOverview(ctx)
		s.emitAudit(ctx, nil, models.AuditActionArchiveSweep, current.String(), nil, result)
	}
	s.logger.Info("archive sweep finished",
		zap.String("current_week", result.CurrentWeek),
		zap.Int("archived", result.ArchivedCount),
		zap.Int("failures", result.Failures),
	)

	if errs != nil {
		return result, appErrors.Storage(errs, fmt.Sprintf("archive sweep failed for %d submissions", result.Failures))
	}
	return result, nil
}

func (s *SubmissionService) gate(now time.Time, operation string) (EditWindowDecision, error) {
	if s.window == nil {
		return EditWindowDecision{Allowed: true, EvaluatedAt: now}, nil
	}
	decision := s.window.Evaluate(now)
	if !decision.Allowed {
		s.metrics.RecordWindowDenied(operation)
		return decision, appErrors.Clone(appErrors.ErrWindowClosed, decision.NextWindow)
	}
	return decision, nil
}

func (s *SubmissionService) load(ctx context.Context, id string) (*models.WeeklySubmission, error) {
	sub, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Storage(err, "failed to load submission")
	}
	return sub, nil
}

func (s *SubmissionService) now() time.Time {
	return s.local(s.config.Now())
}

func (s *SubmissionService) local(t time.Time) time.Time {
	if s.window == nil || s.window.Location() == nil {
		return t
	}
	return t.In(s.window.Location())
}

func (s *SubmissionService) invalidateOverview(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx, overviewCachePrefix+"*")
}

func (s *SubmissionService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID string, oldValue, newValue interface{}) {
	if s.audit == nil {
		return
	}
	log := models.ServiceAudit(actor, action, "weekly_submission", resourceID, "submission-service").WithValues(oldValue, newValue)
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record submission audit", zap.String("action", action), zap.Error(err))
	}
}

func decisionWarnings(decision EditWindowDecision) []string {
	if decision.Warning == nil {
		return nil
	}
	return []string{decision.Warning.Message}
}

func overviewCacheKey(filter models.SubmissionFilter) string {
	week := "all"
	if filter.Week != nil {
		week = filter.Week.String()
	}
	status := "all"
	if filter.Status != nil {
		status = string(*filter.Status)
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%d:%d", overviewCachePrefix, week, status, filter.ClassLabel, filter.OwnerID, filter.Page, filter.PageSize)
}

func normalizeSubmissionRequest(req dto.SubmissionRequest) dto.SubmissionRequest {
	req.ClassLabel = strings.TrimSpace(req.ClassLabel)
	if req.ChildID != nil {
		child := strings.TrimSpace(*req.ChildID)
		if child == "" {
			req.ChildID = nil
		} else {
			req.ChildID = &child
		}
	}
	for _, entry := range []*dto.FieldEntryRequest{&req.Monday, &req.Tuesday, &req.Wednesday, &req.Thursday, &req.Friday, &req.HomeAlone} {
		entry.Value = strings.TrimSpace(entry.Value)
		entry.Note = strings.TrimSpace(entry.Note)
	}
	return req
}

func requestFields(req dto.SubmissionRequest) models.SubmissionFields {
	entry := func(e dto.FieldEntryRequest) models.FieldEntry {
		return models.FieldEntry{Value: e.Value, Note: e.Note}
	}
	return models.SubmissionFields{
		Monday:    entry(req.Monday),
		Tuesday:   entry(req.Tuesday),
		Wednesday: entry(req.Wednesday),
		Thursday:  entry(req.Thursday),
		Friday:    entry(req.Friday),
		HomeAlone: entry(req.HomeAlone),
	}
}
