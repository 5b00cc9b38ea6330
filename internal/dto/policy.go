package dto

import "github.com/noah-isme/weekly-attendance-api/internal/models"

// UpdatePolicyRequest replaces the time restriction policy.
type UpdatePolicyRequest struct {
	Enabled           *bool `json:"enabled" validate:"required"`
	BlockStartHour    *int  `json:"block_start_hour" validate:"required,min=0,max=23"`
	BlockEndHour      *int  `json:"block_end_hour" validate:"required,min=0,max=23"`
	BlockWeekdaysOnly *bool `json:"block_weekdays_only" validate:"required"`
}

// Policy converts the request into a policy value. Callers validate first.
func (r UpdatePolicyRequest) Policy() models.TimeRestrictionPolicy {
	var p models.TimeRestrictionPolicy
	if r.Enabled != nil {
		p.Enabled = *r.Enabled
	}
	if r.BlockStartHour != nil {
		p.BlockStartHour = *r.BlockStartHour
	}
	if r.BlockEndHour != nil {
		p.BlockEndHour = *r.BlockEndHour
	}
	if r.BlockWeekdaysOnly != nil {
		p.BlockWeekdaysOnly = *r.BlockWeekdaysOnly
	}
	return p
}

// PolicyResponse describes the active policy.
type PolicyResponse struct {
	models.TimeRestrictionPolicy
	Version int64 `json:"version"`
}
