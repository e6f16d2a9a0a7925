package models

import "time"

// AuditFields are the timestamp columns shared by persisted records.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt" db:"last_updated_at"`
}
