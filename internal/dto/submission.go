package dto

import "github.com/noah-isme/weekly-attendance-api/internal/models"

// FieldEntryRequest is one weekday (or home-alone) answer.
type FieldEntryRequest struct {
	Value string `json:"value" validate:"required,max=255"`
	Note  string `json:"note" validate:"max=1000"`
}

// SubmissionRequest is the payload for creating or updating a weekly submission.
type SubmissionRequest struct {
	ChildID    *string           `json:"child_id" validate:"omitempty,max=64"`
	ClassLabel string            `json:"class_label" validate:"required,max=100"`
	Monday     FieldEntryRequest `json:"monday"`
	Tuesday    FieldEntryRequest `json:"tuesday"`
	Wednesday  FieldEntryRequest `json:"wednesday"`
	Thursday   FieldEntryRequest `json:"thursday"`
	Friday     FieldEntryRequest `json:"friday"`
	HomeAlone  FieldEntryRequest `json:"home_alone"`
}

// SubmissionFilter captures query parameters for listing submissions.
type SubmissionFilter struct {
	Week       int    `form:"week" validate:"omitempty,min=1,max=53"`
	Year       int    `form:"year" validate:"omitempty,min=2000,max=9999"`
	Status     string `form:"status" validate:"omitempty,oneof=ACTIVE ARCHIVED"`
	ClassLabel string `form:"class_label"`
	OwnerID    string `form:"owner_id"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// SubmissionResponse is a submission with its derived edit tiers.
type SubmissionResponse struct {
	models.WeeklySubmission
	EditTiers map[models.SubmissionField]models.EditTier `json:"edit_tiers"`
	Warnings  []string                                   `json:"warnings,omitempty"`
}

// SubmissionList bundles a page of submissions with its pagination.
type SubmissionList struct {
	Items      []SubmissionResponse `json:"items"`
	Pagination *models.Pagination   `json:"pagination"`
}

// NewSubmissionResponse wraps sub with its tier projection.
func NewSubmissionResponse(sub models.WeeklySubmission) SubmissionResponse {
	return SubmissionResponse{WeeklySubmission: sub, EditTiers: sub.Counters.Tiers()}
}

// ArchiveSweepResponse reports the outcome of an archive sweep.
type ArchiveSweepResponse struct {
	ArchivedCount int    `json:"archived_count"`
	CurrentWeek   string `json:"current_week"`
	Failures      int    `json:"failures"`
}
