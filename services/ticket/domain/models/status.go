package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a Ticket.
type Status string

// Known statuses. ParseStatus accepts them in any letter case.
const (
	StatusToDo       Status = "ToDo"
	StatusInProgress Status = "InProgress"
	StatusDone       Status = "Done"
)

// ParseStatusError reports an unknown status name.
type ParseStatusError struct {
	message string
}

// Error returns the rejection message unchanged.
func (e *ParseStatusError) Error() string {
	return e.message
}

// ParseStatus matches s case-insensitively against the known statuses.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "todo":
		return StatusToDo, nil
	case "inprogress":
		return StatusInProgress, nil
	case "done":
		return StatusDone, nil
	default:
		return "", &ParseStatusError{message: fmt.Sprintf("Invalid status: %s", s)}
	}
}

// String returns the canonical status name.
func (s Status) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}
