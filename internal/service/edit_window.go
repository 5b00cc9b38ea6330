package service

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/weekly-attendance-api/internal/models"
	appErrors "github.com/noah-isme/weekly-attendance-api/pkg/errors"
)

// EditWindowDecision is the result of evaluating the restriction policy at one instant.
type EditWindowDecision struct {
	Allowed       bool                         `json:"allowed"`
	Policy        models.TimeRestrictionPolicy `json:"policy"`
	PolicyVersion int64                        `json:"policy_version"`
	NextWindow    string                       `json:"next_window"`
	NextOpenAt    *time.Time                   `json:"next_open_at,omitempty"`
	Warning       *appErrors.Error             `json:"warning,omitempty"`
	EvaluatedAt   time.Time                    `json:"evaluated_at"`
}

// PolicySubscriber is notified after every policy replacement.
type PolicySubscriber func(policy models.TimeRestrictionPolicy, version int64)

type cachedDecision struct {
	version  int64
	minute   int64
	decision EditWindowDecision
}

// EditWindow owns the active restriction policy and evaluates write permissions against it.
// IsAllowed and Evaluate always re-evaluate; only Status reads through the per-minute cache.
type EditWindow struct {
	mu          sync.RWMutex
	policy      models.TimeRestrictionPolicy
	version     int64
	cached      *cachedDecision
	warned      int64
	subscribers []PolicySubscriber

	loc     *time.Location
	logger  *zap.Logger
	metrics *MetricsService
}

// NewEditWindow builds an evaluator for policy, judging weekdays and hours in loc.
func NewEditWindow(policy models.TimeRestrictionPolicy, loc *time.Location, logger *zap.Logger, metrics *MetricsService) *EditWindow {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &EditWindow{policy: policy, version: 1, loc: loc, logger: logger, metrics: metrics}
	metrics.SetPolicyVersion(w.version)
	return w
}

// Location returns the zone used for weekday and hour decisions.
func (w *EditWindow) Location() *time.Location {
	return w.loc
}

// Policy returns the current policy and its version.
func (w *EditWindow) Policy() (models.TimeRestrictionPolicy, int64) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.policy, w.version
}

// SetPolicy atomically replaces the policy, drops the cached decision and notifies subscribers.
func (w *EditWindow) SetPolicy(policy models.TimeRestrictionPolicy) int64 {
	w.mu.Lock()
	w.policy = policy
	w.version++
	w.cached = nil
	version := w.version
	subscribers := make([]PolicySubscriber, len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.Unlock()

	w.metrics.SetPolicyVersion(version)
	for _, fn := range subscribers {
		fn(policy, version)
	}
	return version
}

// Invalidate drops the cached display decision without changing the policy.
func (w *EditWindow) Invalidate() {
	w.mu.Lock()
	w.cached = nil
	w.mu.Unlock()
}

// Subscribe registers fn to run after each SetPolicy.
func (w *EditWindow) Subscribe(fn PolicySubscriber) {
	if fn == nil {
		return
	}
	w.mu.Lock()
	w.subscribers = append(w.subscribers, fn)
	w.mu.Unlock()
}

// IsAllowed is the authoritative write gate.
func (w *EditWindow) IsAllowed(now time.Time) bool {
	return w.Evaluate(now).Allowed
}

// DescribeNextWindow renders when editing becomes possible under the current policy.
func (w *EditWindow) DescribeNextWindow(now time.Time) string {
	return w.Evaluate(now).NextWindow
}

// Evaluate computes a fresh decision for now.
func (w *EditWindow) Evaluate(now time.Time) EditWindowDecision {
	policy, version := w.Policy()
	decision := evaluatePolicy(policy, now.In(w.loc))
	decision.PolicyVersion = version
	if decision.Warning != nil {
		w.warnMalformed(policy, version)
	}
	return decision
}

// Status serves read-only displays from a cache keyed by policy version and calendar minute.
func (w *EditWindow) Status(now time.Time) EditWindowDecision {
	minute := now.Unix() / 60
	w.mu.RLock()
	cached := w.cached
	version := w.version
	w.mu.RUnlock()
	if cached != nil && cached.version == version && cached.minute == minute {
		return cached.decision
	}

	decision := w.Evaluate(now)
	w.mu.Lock()
	if decision.PolicyVersion == w.version {
		w.cached = &cachedDecision{version: decision.PolicyVersion, minute: minute, decision: decision}
	}
	w.mu.Unlock()
	return decision
}

func (w *EditWindow) warnMalformed(policy models.TimeRestrictionPolicy, version int64) {
	w.mu.Lock()
	first := w.warned != version
	w.warned = version
	w.mu.Unlock()
	if !first {
		return
	}
	w.logger.Warn("time restriction policy is malformed, editing left open",
		zap.Int("block_start_hour", policy.BlockStartHour),
		zap.Int("block_end_hour", policy.BlockEndHour),
		zap.Int64("policy_version", version),
	)
	w.metrics.RecordMalformedPolicy()
}

// IsEditAllowed decides whether a write is permitted at now, read in now's location.
// A malformed policy fails open.
func IsEditAllowed(policy models.TimeRestrictionPolicy, now time.Time) bool {
	if !policy.Enabled || policy.Malformed() {
		return true
	}
	if policy.BlockWeekdaysOnly && isWeekend(now) {
		return true
	}
	hour := now.Hour()
	return hour < policy.BlockStartHour || hour >= policy.BlockEndHour
}

// DescribeNextWindow renders a human-readable hint consistent with IsEditAllowed.
func DescribeNextWindow(policy models.TimeRestrictionPolicy, now time.Time) string {
	return evaluatePolicy(policy, now).NextWindow
}

func evaluatePolicy(policy models.TimeRestrictionPolicy, now time.Time) EditWindowDecision {
	decision := EditWindowDecision{
		Allowed:     IsEditAllowed(policy, now),
		Policy:      policy,
		EvaluatedAt: now,
	}

	switch {
	case policy.Malformed():
		decision.Warning = appErrors.Clone(appErrors.ErrMalformedPolicy,
			fmt.Sprintf("block range %02d:00-%02d:00 is empty or invalid; editing stays open", policy.BlockStartHour, policy.BlockEndHour))
		decision.NextWindow = "editing is open (time restriction is misconfigured)"
	case !policy.Enabled:
		decision.NextWindow = "editing is open"
	case policy.BlockWeekdaysOnly && isWeekend(now):
		decision.NextWindow = "editing is open for the rest of the weekend"
	case decision.Allowed && now.Hour() < policy.BlockStartHour:
		decision.NextWindow = fmt.Sprintf("editing is open until %02d:00 today", policy.BlockStartHour)
	case decision.Allowed:
		decision.NextWindow = "editing is open"
	default:
		opensAt := atHour(now, policy.BlockEndHour)
		decision.NextOpenAt = &opensAt
		decision.NextWindow = fmt.Sprintf("editing is available again after %02d:00", policy.BlockEndHour)
		if policy.BlockWeekdaysOnly {
			decision.NextWindow += ", or anytime on the weekend"
		}
	}
	return decision
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func atHour(t time.Time, hour int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, t.Location())
}
