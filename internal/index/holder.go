package index

import "sync/atomic"

// Holder is the process-wide reference to the currently served index. A
// rebuild produces a fresh Index and swaps it in atomically, so readers
// never observe a partially-built index. Written by the build pipeline,
// read by every query handler.
type Holder struct {
	current atomic.Pointer[Index]
}

func NewHolder() *Holder { return &Holder{} }

// Current returns the serving index, or nil when none has been built yet.
func (h *Holder) Current() *Index {
	return h.current.Load()
}

// Swap publishes a newly built index.
func (h *Holder) Swap(idx *Index) {
	h.current.Store(idx)
}
