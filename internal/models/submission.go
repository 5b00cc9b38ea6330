package models

import (
	"fmt"
	"time"

	"github.com/noah-isme/weekly-attendance-api/pkg/isoweek"
)

// SubmissionStatus describes the lifecycle state of a weekly submission.
type SubmissionStatus string

const (
	SubmissionStatusActive   SubmissionStatus = "ACTIVE"
	SubmissionStatusArchived SubmissionStatus = "ARCHIVED"
)

// Valid reports whether the status is known.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionStatusActive, SubmissionStatusArchived:
		return true
	default:
		return false
	}
}

// WeekIdentifier is an ISO-8601 week.
type WeekIdentifier struct {
	WeekNumber int `json:"week_number"`
	Year       int `json:"year"`
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) WeekIdentifier {
	year, week := isoweek.Of(t)
	return WeekIdentifier{WeekNumber: week, Year: year}
}

// Monday returns the start of the week in loc.
func (w WeekIdentifier) Monday(loc *time.Location) time.Time {
	return isoweek.Monday(w.Year, w.WeekNumber, loc)
}

// Before reports whether w is chronologically older than other.
func (w WeekIdentifier) Before(other WeekIdentifier) bool {
	return isoweek.Compare(w.Year, w.WeekNumber, other.Year, other.WeekNumber) < 0
}

// Valid reports whether the week exists in the ISO calendar.
func (w WeekIdentifier) Valid() bool {
	return isoweek.Valid(w.Year, w.WeekNumber)
}

func (w WeekIdentifier) String() string {
	return fmt.Sprintf("%04d-W%02d", w.Year, w.WeekNumber)
}

// FieldEntry is a selected option (comma-joined when multi-select is on) with an optional note.
type FieldEntry struct {
	Value string `json:"value"`
	Note  string `json:"note,omitempty"`
}

// SubmissionField names a tracked field of a weekly submission.
type SubmissionField string

const (
	FieldMonday    SubmissionField = "monday"
	FieldTuesday   SubmissionField = "tuesday"
	FieldWednesday SubmissionField = "wednesday"
	FieldThursday  SubmissionField = "thursday"
	FieldFriday    SubmissionField = "friday"
	FieldHomeAlone SubmissionField = "home_alone"
)

// TrackedFields lists the fields with edit counters in display order.
var TrackedFields = []SubmissionField{
	FieldMonday,
	FieldTuesday,
	FieldWednesday,
	FieldThursday,
	FieldFriday,
	FieldHomeAlone,
}

// SubmissionFields holds the editable content of a submission.
type SubmissionFields struct {
	Monday    FieldEntry `json:"monday"`
	Tuesday   FieldEntry `json:"tuesday"`
	Wednesday FieldEntry `json:"wednesday"`
	Thursday  FieldEntry `json:"thursday"`
	Friday    FieldEntry `json:"friday"`
	HomeAlone FieldEntry `json:"home_alone"`
}

// Entry returns the entry stored for field.
func (f SubmissionFields) Entry(field SubmissionField) FieldEntry {
	switch field {
	case FieldMonday:
		return f.Monday
	case FieldTuesday:
		return f.Tuesday
	case FieldWednesday:
		return f.Wednesday
	case FieldThursday:
		return f.Thursday
	case FieldFriday:
		return f.Friday
	case FieldHomeAlone:
		return f.HomeAlone
	default:
		return FieldEntry{}
	}
}

// EditCounters counts changes per tracked field after creation.
type EditCounters struct {
	Monday    int `json:"monday"`
	Tuesday   int `json:"tuesday"`
	Wednesday int `json:"wednesday"`
	Thursday  int `json:"thursday"`
	Friday    int `json:"friday"`
	HomeAlone int `json:"home_alone"`
}

// Get returns the counter for field.
func (c EditCounters) Get(field SubmissionField) int {
	switch field {
	case FieldMonday:
		return c.Monday
	case FieldTuesday:
		return c.Tuesday
	case FieldWednesday:
		return c.Wednesday
	case FieldThursday:
		return c.Thursday
	case FieldFriday:
		return c.Friday
	case FieldHomeAlone:
		return c.HomeAlone
	default:
		return 0
	}
}

// Set assigns the counter for field.
func (c *EditCounters) Set(field SubmissionField, value int) {
	switch field {
	case FieldMonday:
		c.Monday = value
	case FieldTuesday:
		c.Tuesday = value
	case FieldWednesday:
		c.Wednesday = value
	case FieldThursday:
		c.Thursday = value
	case FieldFriday:
		c.Friday = value
	case FieldHomeAlone:
		c.HomeAlone = value
	}
}

// WeeklySubmission is one child's attendance plan for one ISO week.
type WeeklySubmission struct {
	ID         string           `json:"id"`
	OwnerID    string           `json:"owner_id"`
	ChildID    *string          `json:"child_id,omitempty"`
	ClassLabel string           `json:"class_label"`
	Week       WeekIdentifier   `json:"week"`
	Status     SubmissionStatus `json:"status"`
	Fields     SubmissionFields `json:"fields"`
	Counters   EditCounters     `json:"edit_counters"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// OwnedBy reports whether userID created the submission.
func (s *WeeklySubmission) OwnedBy(userID string) bool {
	return userID != "" && s.OwnerID == userID
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	OwnerID    string
	ClassLabel string
	Status     *SubmissionStatus
	Week       *WeekIdentifier
	Page       int
	PageSize   int
}

// EditTier is the presentation bucket for an edit counter.
type EditTier string

const (
	EditTierOriginal EditTier = "original"
	EditTierA        EditTier = "tier_a"
	EditTierB        EditTier = "tier_b"
	EditTierC        EditTier = "tier_c"
	EditTierD        EditTier = "tier_d"
)

// TierFor maps a counter to its tier; four or more edits share the top tier.
func TierFor(count int) EditTier {
	switch {
	case count <= 0:
		return EditTierOriginal
	case count == 1:
		return EditTierA
	case count == 2:
		return EditTierB
	case count == 3:
		return EditTierC
	default:
		return EditTierD
	}
}

// Tiers projects every tracked counter onto its tier.
func (c EditCounters) Tiers() map[SubmissionField]EditTier {
	tiers := make(map[SubmissionField]EditTier, len(TrackedFields))
	for _, field := range TrackedFields {
		tiers[field] = TierFor(c.Get(field))
	}
	return tiers
}
