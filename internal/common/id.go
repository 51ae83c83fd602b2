package common

import (
	"github.com/google/uuid"
)

// NewAuditID generates a unique audit entry ID with the "audit_" prefix
// Format: audit_<uuid>
func NewAuditID() string {
	return "audit_" + uuid.New().String()
}

// NewRequestID generates a unique request ID with the "req_" prefix
// Format: req_<uuid>
func NewRequestID() string {
	return "req_" + uuid.New().String()
}
