package models

import "time"

// AuditLog is an advisory record of a sensitive event (wrong PIN, lockout,
// withdrawal). Written asynchronously; never part of the atomic boundary.
type AuditLog struct {
	ID         string         `json:"id"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	Action     string         `json:"action"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
