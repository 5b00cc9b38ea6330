package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceAudit(t *testing.T) {
	actor := &JWTClaims{UserID: "parent-1", Role: RoleParent}

	log := ServiceAudit(actor, AuditActionSubmissionUpdate, "weekly_submission", "sub-1", "submission-service").
		WithValues(map[string]int{"edits": 1}, nil)

	require.NotNil(t, log.UserID)
	assert.Equal(t, "parent-1", *log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, "sub-1", *log.ResourceID)
	assert.Equal(t, "system", log.IPAddress)
	assert.Equal(t, "submission-service", log.UserAgent)
	assert.JSONEq(t, `{"edits":1}`, string(log.OldValues))
	assert.Nil(t, log.NewValues)
}

func TestServiceAuditWithoutActor(t *testing.T) {
	log := ServiceAudit(nil, AuditActionArchiveSweep, "weekly_submission", "", "archive-sweep")

	assert.Nil(t, log.UserID)
	assert.Nil(t, log.ResourceID)
}
