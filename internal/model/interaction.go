package model

import (
	"encoding/json"
	"time"
)

const (
	InteractionStatusAnswered = "answered"
	InteractionStatusFailed   = "failed"

	FeedbackPositive = "up"
	FeedbackNegative = "down"
)

// Interaction is the append-only record emitted for every completed query.
// The serving path only writes these (through the queue); nothing in the
// retrieval core ever reads them back.
type Interaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	InteractionID   string    `gorm:"size:36;not null;uniqueIndex" json:"interaction_id"`
	Question        string    `gorm:"type:text;not null" json:"question"`
	RoutingDecision string    `gorm:"size:16;not null" json:"routing_decision"`
	ChunkIDs        string    `gorm:"type:text" json:"-"` // JSON array of chunk ids
	Answer          string    `gorm:"type:text" json:"answer"`
	Status          string    `gorm:"size:16;not null;index" json:"status"`
	ErrorKind       string    `gorm:"size:64" json:"error_kind,omitempty"`
	DurationMS      int64     `json:"duration_ms"`
	Feedback        string    `gorm:"size:8" json:"feedback,omitempty"`
	FeedbackComment string    `gorm:"type:text" json:"feedback_comment,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RetrievedChunkIDs returns the parsed chunk id list; empty on parse error.
func (i *Interaction) RetrievedChunkIDs() []string {
	if i.ChunkIDs == "" {
		return nil
	}
	var ids []string
	_ = json.Unmarshal([]byte(i.ChunkIDs), &ids)
	return ids
}

// SetRetrievedChunkIDs stores the chunk id list as JSON.
func (i *Interaction) SetRetrievedChunkIDs(ids []string) {
	if len(ids) == 0 {
		i.ChunkIDs = "[]"
		return
	}
	b, _ := json.Marshal(ids)
	i.ChunkIDs = string(b)
}
