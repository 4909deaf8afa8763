package app

import (
	"fmt"

	"communerag/internal/model"
)

// FeedbackStore updates interaction records with user feedback.
type FeedbackStore interface {
	SetFeedback(interactionID, feedback, comment string) (bool, error)
}

// FeedbackService attaches thumbs up or down to a past interaction. The
// record may still be in flight through the queue when feedback arrives,
// which reads as not found; clients retry.
type FeedbackService struct {
	store FeedbackStore
}

func NewFeedbackService(store FeedbackStore) *FeedbackService {
	return &FeedbackService{store: store}
}

func (s *FeedbackService) Submit(interactionID, feedback, comment string) error {
	if len(interactionID) != 36 {
		return fmt.Errorf("%w: malformed interaction id", ErrInvalidInput)
	}
	if feedback != model.FeedbackPositive && feedback != model.FeedbackNegative {
		return fmt.Errorf("%w: feedback must be %q or %q", ErrInvalidInput, model.FeedbackPositive, model.FeedbackNegative)
	}
	found, err := s.store.SetFeedback(interactionID, feedback, comment)
	if err != nil {
		return fmt.Errorf("store feedback failed: %w", err)
	}
	if !found {
		return ErrInteractionNotFound
	}
	return nil
}
