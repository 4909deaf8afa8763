package model

import "fmt"

// Chunk is a contiguous passage of one source document, the unit of
// retrieval. Start/End are rune offsets into the extracted text so a chunk
// can always be traced back to its exact position in the source.
type Chunk struct {
	SourceID string `json:"source_id"`
	Sequence int    `json:"sequence"`
	Text     string `json:"text"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

// ID returns the stable chunk identifier used in logs and search results.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s:%d", c.SourceID, c.Sequence)
}
