package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/weekly-attendance-api/internal/models"
)

func sampleFields() models.SubmissionFields {
	return models.SubmissionFields{
		Monday:    models.FieldEntry{Value: "care_until_16"},
		Tuesday:   models.FieldEntry{Value: "care_until_14"},
		Wednesday: models.FieldEntry{Value: "no_care"},
		Thursday:  models.FieldEntry{Value: "care_until_16", Note: "grandma picks up"},
		Friday:    models.FieldEntry{Value: "care_until_14"},
		HomeAlone: models.FieldEntry{Value: "no"},
	}
}

func TestDiffAndIncrementCreation(t *testing.T) {
	tracker := NewEditAuditTracker()
	assert.Equal(t, models.EditCounters{}, tracker.DiffAndIncrement(nil, sampleFields()))
	assert.Nil(t, tracker.ChangedFields(nil, sampleFields()))
}

func TestDiffAndIncrementNoOp(t *testing.T) {
	tracker := NewEditAuditTracker()
	previous := &models.WeeklySubmission{Fields: sampleFields(), Counters: models.EditCounters{Monday: 2, HomeAlone: 1}}

	counters := tracker.DiffAndIncrement(previous, sampleFields())
	assert.Equal(t, previous.Counters, counters)
	assert.Empty(t, tracker.ChangedFields(previous, sampleFields()))
}

func TestDiffAndIncrementSingleField(t *testing.T) {
	tracker := NewEditAuditTracker()
	previous := &models.WeeklySubmission{Fields: sampleFields(), Counters: models.EditCounters{Monday: 1, Tuesday: 3}}
	incoming := sampleFields()
	incoming.Monday.Value = "no_care"

	counters := tracker.DiffAndIncrement(previous, incoming)
	assert.Equal(t, models.EditCounters{Monday: 2, Tuesday: 3}, counters)
	assert.Equal(t, []models.SubmissionField{models.FieldMonday}, tracker.ChangedFields(previous, incoming))
}

func TestDiffAndIncrementNoteOnlyChange(t *testing.T) {
	tracker := NewEditAuditTracker()
	previous := &models.WeeklySubmission{Fields: sampleFields()}
	incoming := sampleFields()
	incoming.Thursday.Note = ""
	incoming.HomeAlone.Note = "only with sibling"

	counters := tracker.DiffAndIncrement(previous, incoming)
	assert.Equal(t, 1, counters.Thursday)
	assert.Equal(t, 1, counters.HomeAlone)
	assert.Equal(t, 0, counters.Monday)
}

func TestDiffAndIncrementMonotonic(t *testing.T) {
	tracker := NewEditAuditTracker()
	sub := &models.WeeklySubmission{Fields: sampleFields()}
	values := []string{"a", "b", "b", "c", "a", "a"}
	want := []int{1, 2, 2, 3, 4, 4}
	for i, value := range values {
		incoming := sub.Fields
		incoming.Friday.Value = value
		sub.Counters = tracker.DiffAndIncrement(sub, incoming)
		sub.Fields = incoming
		assert.Equal(t, want[i], sub.Counters.Friday, "step %d", i)
	}
}

func TestDiffAndIncrementClampsNegativeStoredCounters(t *testing.T) {
	tracker := NewEditAuditTracker()
	previous := &models.WeeklySubmission{Fields: sampleFields(), Counters: models.EditCounters{Wednesday: -3}}
	assert.Equal(t, 0, tracker.DiffAndIncrement(previous, sampleFields()).Wednesday)
}

func TestTierMapping(t *testing.T) {
	tracker := NewEditAuditTracker()
	assert.Equal(t, models.EditTierOriginal, tracker.Tier(0))
	assert.Equal(t, models.EditTierA, tracker.Tier(1))
	assert.Equal(t, models.EditTierB, tracker.Tier(2))
	assert.Equal(t, models.EditTierC, tracker.Tier(3))
	assert.Equal(t, models.EditTierD, tracker.Tier(4))
	assert.Equal(t, models.EditTierD, tracker.Tier(17))
}
