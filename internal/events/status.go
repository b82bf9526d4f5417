package events

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsValid checks if the event status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanBeUpdated checks if an event with this status accepts field updates
func (s Status) CanBeUpdated() bool {
	return s == StatusDraft || s == StatusPublished
}

// CanBeDeleted checks if an event with this status can be deleted
func (s Status) CanBeDeleted() bool {
	return s == StatusDraft
}

// CanSellTickets checks if tickets can be issued for an event with this status
func (s Status) CanSellTickets() bool {
	return s == StatusPublished
}

// CanTransitionTo checks if the lifecycle allows moving to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusDraft:
		return target == StatusPublished || target == StatusCancelled
	case StatusPublished:
		return target == StatusCancelled || target == StatusCompleted
	}
	return false
}
