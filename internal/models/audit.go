package models

import (
	"encoding/json"
	"time"
)

// AuditLog captures who did what, including notifier run summaries.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	Actor      *string         `db:"actor" json:"actor,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
