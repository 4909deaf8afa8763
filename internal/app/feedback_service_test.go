package app

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFeedbackStore struct {
	known    map[string]bool
	lastID   string
	lastFB   string
	lastNote string
}

func (s *fakeFeedbackStore) SetFeedback(interactionID, feedback, comment string) (bool, error) {
	s.lastID, s.lastFB, s.lastNote = interactionID, feedback, comment
	return s.known[interactionID], nil
}

func TestSubmitFeedback(t *testing.T) {
	id := uuid.NewString()
	store := &fakeFeedbackStore{known: map[string]bool{id: true}}
	svc := NewFeedbackService(store)

	require.NoError(t, svc.Submit(id, "up", "reponse claire"))
	assert.Equal(t, id, store.lastID)
	assert.Equal(t, "up", store.lastFB)
	assert.Equal(t, "reponse claire", store.lastNote)
}

func TestSubmitFeedbackValidation(t *testing.T) {
	svc := NewFeedbackService(&fakeFeedbackStore{})

	assert.ErrorIs(t, svc.Submit("short-id", "up", ""), ErrInvalidInput)
	assert.ErrorIs(t, svc.Submit(uuid.NewString(), "meh", ""), ErrInvalidInput)
	assert.ErrorIs(t, svc.Submit(uuid.NewString(), "down", ""), ErrInteractionNotFound)
}
