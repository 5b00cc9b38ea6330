package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by the services.
const (
	AuditActionLogin            = "LOGIN"
	AuditActionSubmissionCreate = "SUBMISSION_CREATE"
	AuditActionSubmissionUpdate = "SUBMISSION_UPDATE"
	AuditActionArchiveSweep     = "ARCHIVE_SWEEP"
	AuditActionPolicyUpdate     = "POLICY_UPDATE"
)

// AuditLog is one row of the audit trail. Old and new values hold JSON snapshots.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ServiceAudit builds an entry for a change made by a service rather than a direct request.
// source names the service in place of a user agent.
func ServiceAudit(actor *JWTClaims, action, resource, resourceID, source string) *AuditLog {
	log := &AuditLog{
		Action:    action,
		Resource:  resource,
		IPAddress: "system",
		UserAgent: source,
	}
	if actor != nil && actor.UserID != "" {
		id := actor.UserID
		log.UserID = &id
	}
	if resourceID != "" {
		log.ResourceID = &resourceID
	}
	return log
}

// WithValues snapshots old and new state. Nil values are left empty.
func (l *AuditLog) WithValues(oldValue, newValue interface{}) *AuditLog {
	if oldValue != nil {
		l.OldValues, _ = json.Marshal(oldValue)
	}
	if newValue != nil {
		l.NewValues, _ = json.Marshal(newValue)
	}
	return l
}
