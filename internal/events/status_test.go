package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusPublished, true},
		{StatusDraft, StatusCancelled, true},
		{StatusDraft, StatusCompleted, false},
		{StatusPublished, StatusCancelled, true},
		{StatusPublished, StatusCompleted, true},
		{StatusPublished, StatusDraft, false},
		{StatusCancelled, StatusPublished, false},
		{StatusCompleted, StatusPublished, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestStatusCapabilities(t *testing.T) {
	assert.True(t, StatusDraft.CanBeUpdated())
	assert.True(t, StatusPublished.CanBeUpdated())
	assert.False(t, StatusCancelled.CanBeUpdated())
	assert.False(t, StatusCompleted.CanBeUpdated())

	assert.True(t, StatusDraft.CanBeDeleted())
	assert.False(t, StatusPublished.CanBeDeleted())

	assert.True(t, StatusPublished.CanSellTickets())
	assert.False(t, StatusDraft.CanSellTickets())
	assert.False(t, StatusCancelled.CanSellTickets())
}

func TestStatusIsValid(t *testing.T) {
	assert.True(t, StatusDraft.IsValid())
	assert.True(t, StatusPublished.IsValid())
	assert.False(t, Status("archived").IsValid())
	assert.False(t, Status("").IsValid())
}
