package model

import "time"

// APIClient is a credential holder for the HTTP API. The key itself is never
// stored, only its bcrypt hash.
type APIClient struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null;uniqueIndex" json:"name"`
	KeyHash   string    `gorm:"size:128;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
