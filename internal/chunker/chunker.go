package chunker

import (
	"errors"

	"communerag/internal/model"
)

// ErrInvalidWindow is returned when the overlap is not strictly smaller than
// the chunk size, which would make the sliding window stall or degenerate.
var ErrInvalidWindow = errors.New("chunk overlap must be smaller than chunk size")

// Chunker splits extracted document text into overlapping fixed-size
// passages. It is stateless: the same input always yields the same chunks.
type Chunker struct {
	size    int
	overlap int
}

func New(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, ErrInvalidWindow
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split walks the text in a window of size runes, advancing size-overlap per
// step. The final window may be shorter and is still emitted if non-empty.
// Offsets are rune positions in the original text.
func (c *Chunker) Split(sourceID, text string) []model.Chunk {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	step := c.size - c.overlap
	var chunks []model.Chunk
	for start, seq := 0, 0; start < len(runes); start, seq = start+step, seq+1 {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, model.Chunk{
			SourceID: sourceID,
			Sequence: seq,
			Text:     string(runes[start:end]),
			Start:    start,
			End:      end,
		})
		if end == len(runes) {
			break
		}
	}
	return chunks
}
