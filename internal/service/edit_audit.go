package service

import "github.com/noah-isme/weekly-attendance-api/internal/models"

// EditAuditTracker counts per-field changes made after a submission was created.
type EditAuditTracker struct{}

// NewEditAuditTracker constructs the tracker.
func NewEditAuditTracker() *EditAuditTracker {
	return &EditAuditTracker{}
}

// DiffAndIncrement returns the counters to store with incoming. A nil previous
// means first creation and yields zero counters. Every tracked field whose
// (value, note) pair differs gains exactly one; the rest carry over.
func (t *EditAuditTracker) DiffAndIncrement(previous *models.WeeklySubmission, incoming models.SubmissionFields) models.EditCounters {
	var counters models.EditCounters
	if previous == nil {
		return counters
	}
	for _, field := range models.TrackedFields {
		count := previous.Counters.Get(field)
		if count < 0 {
			count = 0
		}
		if previous.Fields.Entry(field) != incoming.Entry(field) {
			count++
		}
		counters.Set(field, count)
	}
	return counters
}

// ChangedFields lists the tracked fields that differ between previous and incoming.
func (t *EditAuditTracker) ChangedFields(previous *models.WeeklySubmission, incoming models.SubmissionFields) []models.SubmissionField {
	if previous == nil {
		return nil
	}
	var changed []models.SubmissionField
	for _, field := range models.TrackedFields {
		if previous.Fields.Entry(field) != incoming.Entry(field) {
			changed = append(changed, field)
		}
	}
	return changed
}

// Tier projects a counter onto its display tier.
func (t *EditAuditTracker) Tier(count int) models.EditTier {
	return models.TierFor(count)
}
