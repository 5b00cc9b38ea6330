package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

const (
	policyKeyEnabled      = "time_restriction_enabled"
	policyKeyStartHour    = "time_restriction_start_hour"
	policyKeyEndHour      = "time_restriction_end_hour"
	policyKeyWeekdaysOnly = "time_restriction_weekdays_only"
)

var policyKeys = []string{policyKeyEnabled, policyKeyStartHour, policyKeyEndHour, policyKeyWeekdaysOnly}

var policyDescriptions = map[string]string{
	policyKeyEnabled:      "Block submission edits during the daily restriction window",
	policyKeyStartHour:    "First blocked hour (0-23)",
	policyKeyEndHour:      "Hour at which editing reopens (0-23)",
	policyKeyWeekdaysOnly: "Apply the restriction on weekdays only",
}

type policyStore interface {
	ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error)
	BulkUpsert(ctx context.Context, cfgs []models.Configuration) error
}

type policyHolder interface {
	Policy() (models.TimeRestrictionPolicy, int64)
	SetPolicy(policy models.TimeRestrictionPolicy) int64
}

// PolicyService persists the time restriction policy in the configuration store
// and pushes it into the edit window.
type PolicyService struct {
	repo      policyStore
	window    policyHolder
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	defaults  models.TimeRestrictionPolicy

	mu sync.Mutex
}

// NewPolicyService constructs a PolicyService. defaults seed the policy when nothing is stored.
func NewPolicyService(repo policyStore, window policyHolder, audit auditLogger, validate *validator.Validate, logger *zap.Logger, defaults models.TimeRestrictionPolicy) *PolicyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PolicyService{
		repo:      repo,
		window:    window,
		audit:     audit,
		validator: validate,
		logger:    logger,
		defaults:  defaults,
	}
}

// Load reads the stored policy and installs it unconditionally.
func (s *PolicyService) Load(ctx context.Context) (models.TimeRestrictionPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, err := s.read(ctx)
	if err != nil {
		return models.TimeRestrictionPolicy{}, err
	}
	version := s.window.SetPolicy(policy)
	s.logger.Info("time restriction policy loaded",
		zap.Bool("enabled", policy.Enabled),
		zap.Int("block_start_hour", policy.BlockStartHour),
		zap.Int("block_end_hour", policy.BlockEndHour),
		zap.Bool("block_weekdays_only", policy.BlockWeekdaysOnly),
		zap.Int64("version", version),
	)
	return policy, nil
}

// Reload re-reads the store and replaces the active policy only when it changed.
func (s *PolicyService) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, err := s.read(ctx)
	if err != nil {
		return false, err
	}
	current, _ := s.window.Policy()
	if current == policy {
		return false, nil
	}
	version := s.window.SetPolicy(policy)
	s.logger.Info("time restriction policy reloaded", zap.Int64("version", version))
	return true, nil
}

// Get returns the active policy with its version.
func (s *PolicyService) Get() dto.PolicyResponse {
	policy, version := s.window.Policy()
	return dto.PolicyResponse{TimeRestrictionPolicy: policy, Version: version}
}

// Update validates, persists and activates a new policy.
func (s *PolicyService) Update(ctx context.Context, req dto.UpdatePolicyRequest, actor *models.JWTClaims) (*dto.PolicyResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid policy payload")
	}
	policy := req.Policy()
	if policy.Malformed() {
		return nil, appErrors.Clone(appErrors.ErrMalformedPolicy,
			fmt.Sprintf("block_start_hour (%d) must be before block_end_hour (%d)", policy.BlockStartHour, policy.BlockEndHour))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.BulkUpsert(ctx, policyRows(policy, userIDPtr(actor))); err != nil {
		return nil, appErrors.Storage(err, "failed to persist time restriction policy")
	}
	previous, _ := s.window.Policy()
	version := s.window.SetPolicy(policy)
	s.emitAudit(ctx, actor, previous, policy)

	return &dto.PolicyResponse{TimeRestrictionPolicy: policy, Version: version}, nil
}

func (s *PolicyService) read(ctx context.Context) (models.TimeRestrictionPolicy, error) {
	rows, err := s.repo.ListByKeys(ctx, policyKeys)
	if err != nil {
		return models.TimeRestrictionPolicy{}, appErrors.Storage(err, "failed to load time restriction policy")
	}
	policy := s.defaults
	for _, row := range rows {
		if err := applyPolicyValue(&policy, row); err != nil {
			s.logger.Warn("ignoring stored policy value", zap.String("key", row.Key), zap.String("value", row.Value), zap.Error(err))
		}
	}
	return policy, nil
}

func applyPolicyValue(policy *models.TimeRestrictionPolicy, row models.Configuration) error {
	var err error
	switch row.Key {
	case policyKeyEnabled:
		policy.Enabled, err = parseBool(row, policy.Enabled)
	case policyKeyWeekdaysOnly:
		policy.BlockWeekdaysOnly, err = parseBool(row, policy.BlockWeekdaysOnly)
	case policyKeyStartHour:
		policy.BlockStartHour, err = parseInt(row, policy.BlockStartHour)
	case policyKeyEndHour:
		policy.BlockEndHour, err = parseInt(row, policy.BlockEndHour)
	}
	return err
}

func parseBool(row models.Configuration, fallback bool) (bool, error) {
	v, err := row.Bool()
	if err != nil {
		return fallback, err
	}
	return v, nil
}

func parseInt(row models.Configuration, fallback int) (int, error) {
	v, err := row.Int()
	if err != nil {
		return fallback, err
	}
	return v, nil
}

func policyRows(policy models.TimeRestrictionPolicy, updatedBy *string) []models.Configuration {
	rows := []models.Configuration{
		models.BoolSetting(policyKeyEnabled, policy.Enabled),
		models.IntSetting(policyKeyStartHour, policy.BlockStartHour),
		models.IntSetting(policyKeyEndHour, policy.BlockEndHour),
		models.BoolSetting(policyKeyWeekdaysOnly, policy.BlockWeekdaysOnly),
	}
	for i := range rows {
		rows[i].Description = strPtr(policyDescriptions[rows[i].Key])
		rows[i].UpdatedBy = updatedBy
	}
	return rows
}

func (s *PolicyService) emitAudit(ctx context.Context, actor *models.JWTClaims, oldPolicy, newPolicy models.TimeRestrictionPolicy) {
	if s.audit == nil {
		return
	}
	log := models.ServiceAudit(actor, models.AuditActionPolicyUpdate, "configuration", "time_restriction", "policy-service").
		WithValues(oldPolicy, newPolicy)
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record policy audit", zap.Error(err))
	}
}

func userIDPtr(actor *models.JWTClaims) *string {
	if actor == nil || actor.UserID == "" {
		return nil
	}
	return &actor.UserID
}

func strPtr(value string) *string {
	if value == "" {
		return nil
	}
	result := value
	return &result
}
