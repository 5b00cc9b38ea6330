package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/weekly-attendance-api/internal/dto"
	"github.com/noah-isme/weekly-attendance-api/internal/models"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

type configurationRepoStub struct {
	items map[string]models.Configuration
	err   error
}

func (s *configurationRepoStub) ListByKeys(ctx context.Context, keys []string) ([]models.Configuration, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := []models.Configuration{}
	for _, key := range keys {
		if cfg, ok := s.items[key]; ok {
			result = append(result, cfg)
		}
	}
	return result, nil
}

func (s *configurationRepoStub) BulkUpsert(ctx context.Context, cfgs []models.Configuration) error {
	if s.err != nil {
		return s.err
	}
	if s.items == nil {
		s.items = make(map[string]models.Configuration)
	}
	for _, cfg := range cfgs {
		s.items[cfg.Key] = cfg
	}
	return nil
}

type auditLoggerStub struct {
	logs []*models.AuditLog
	err  error
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if a.err != nil {
		return a.err
	}
	a.logs = append(a.logs, log)
	return nil
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func newPolicyServiceForTest(repo *configurationRepoStub) (*PolicyService, *EditWindow, *auditLoggerStub) {
	window := NewEditWindow(models.DefaultTimeRestrictionPolicy(), nil, nil, nil)
	audit := &auditLoggerStub{}
	return NewPolicyService(repo, window, audit, validator.New(), nil, models.DefaultTimeRestrictionPolicy()), window, audit
}

func TestPolicyServiceLoadSeedsDefaults(t *testing.T) {
	service, window, _ := newPolicyServiceForTest(&configurationRepoStub{})

	policy, err := service.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.DefaultTimeRestrictionPolicy(), policy)

	active, version := window.Policy()
	assert.Equal(t, policy, active)
	assert.Equal(t, int64(2), version)
}

func TestPolicyServiceLoadReadsStoredValues(t *testing.T) {
	repo := &configurationRepoStub{items: map[string]models.Configuration{
		policyKeyEnabled:   {Key: policyKeyEnabled, Value: "true"},
		policyKeyStartHour: {Key: policyKeyStartHour, Value: "8"},
		policyKeyEndHour:   {Key: policyKeyEndHour, Value: "not-a-number"},
	}}
	service, _, _ := newPolicyServiceForTest(repo)

	policy, err := service.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, policy.BlockStartHour)
	assert.Equal(t, 17, policy.BlockEndHour, "unparsable value keeps the default")
	assert.True(t, policy.BlockWeekdaysOnly)
}

func TestPolicyServiceLoadStorageFailure(t *testing.T) {
	service, _, _ := newPolicyServiceForTest(&configurationRepoStub{err: errors.New("db down")})

	_, err := service.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrStorage))
}

func TestPolicyServiceUpdatePersistsAndActivates(t *testing.T) {
	repo := &configurationRepoStub{}
	service, window, audit := newPolicyServiceForTest(repo)

	var notified []int64
	window.Subscribe(func(policy models.TimeRestrictionPolicy, version int64) {
		notified = append(notified, version)
	})

	resp, err := service.Update(context.Background(), dto.UpdatePolicyRequest{
		Enabled:           boolPtr(true),
		BlockStartHour:    intPtr(9),
		BlockEndHour:      intPtr(11),
		BlockWeekdaysOnly: boolPtr(false),
	}, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 9, resp.BlockStartHour)
	assert.Equal(t, int64(2), resp.Version)
	assert.Equal(t, []int64{2}, notified)

	require.Len(t, repo.items, 4)
	assert.Equal(t, "9", repo.items[policyKeyStartHour].Value)
	assert.Equal(t, models.ConfigurationTypeInteger, repo.items[policyKeyStartHour].Type)
	assert.Equal(t, "false", repo.items[policyKeyWeekdaysOnly].Value)
	require.NotNil(t, repo.items[policyKeyEnabled].UpdatedBy)
	assert.Equal(t, "admin", *repo.items[policyKeyEnabled].UpdatedBy)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionPolicyUpdate, audit.logs[0].Action)

	active, _ := window.Policy()
	assert.Equal(t, 11, active.BlockEndHour)
}

func TestPolicyServiceUpdateRejectsInvertedRange(t *testing.T) {
	repo := &configurationRepoStub{}
	service, window, _ := newPolicyServiceForTest(repo)

	_, err := service.Update(context.Background(), dto.UpdatePolicyRequest{
		Enabled:           boolPtr(true),
		BlockStartHour:    intPtr(17),
		BlockEndHour:      intPtr(12),
		BlockWeekdaysOnly: boolPtr(true),
	}, &models.JWTClaims{UserID: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedPolicy.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.items)

	_, version := window.Policy()
	assert.Equal(t, int64(1), version)
}

func TestPolicyServiceUpdateAllowsInvertedRangeWhenDisabled(t *testing.T) {
	service, _, _ := newPolicyServiceForTest(&configurationRepoStub{})

	resp, err := service.Update(context.Background(), dto.UpdatePolicyRequest{
		Enabled:           boolPtr(false),
		BlockStartHour:    intPtr(17),
		BlockEndHour:      intPtr(12),
		BlockWeekdaysOnly: boolPtr(true),
	}, &models.JWTClaims{UserID: "admin"})
	require.NoError(t, err)
	assert.False(t, resp.Enabled)
}

func TestPolicyServiceUpdateValidation(t *testing.T) {
	service, _, _ := newPolicyServiceForTest(&configurationRepoStub{})

	_, err := service.Update(context.Background(), dto.UpdatePolicyRequest{
		Enabled:        boolPtr(true),
		BlockStartHour: intPtr(9),
		BlockEndHour:   intPtr(24),
	}, &models.JWTClaims{UserID: "admin"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Update(context.Background(), dto.UpdatePolicyRequest{}, nil)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestPolicyServiceReloadOnlyOnChange(t *testing.T) {
	repo := &configurationRepoStub{}
	service, window, _ := newPolicyServiceForTest(repo)

	changed, err := service.Reload(context.Background())
	require.NoError(t, err)
	assert.False(t, changed)
	_, version := window.Policy()
	assert.Equal(t, int64(1), version)

	repo.items = map[string]models.Configuration{policyKeyEnabled: {Key: policyKeyEnabled, Value: "false"}}
	changed, err = service.Reload(context.Background())
	require.NoError(t, err)
	assert.True(t, changed)
	active, version := window.Policy()
	assert.False(t, active.Enabled)
	assert.Equal(t, int64(2), version)
}
