package models

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// MaxTicketDescriptionLength is the upper bound on a description, counted in runes.
const MaxTicketDescriptionLength = 500

// TicketDescription is a value object representing a valid ticket description.
// Encapsulates validation rules: 1 <= utf8.RuneCountInString(description) <= 500.
type TicketDescription struct {
	value string
}

// ParseDescriptionError reports why a candidate description was rejected.
type ParseDescriptionError struct {
	message string
}

// Error returns the rejection message unchanged.
func (e *ParseDescriptionError) Error() string {
	return e.message
}

// NewTicketDescription constructs a valid TicketDescription or returns a
// *ParseDescriptionError.
func NewTicketDescription(s string) (TicketDescription, error) {
	if s == "" {
		return TicketDescription{}, &ParseDescriptionError{message: "The description cannot be empty"}
	}
	if utf8.RuneCountInString(s) > MaxTicketDescriptionLength {
		return TicketDescription{}, &ParseDescriptionError{
			message: fmt.Sprintf("The description cannot be longer than %d characters", MaxTicketDescriptionLength),
		}
	}
	return TicketDescription{value: s}, nil
}

// String returns the underlying string value.
func (d TicketDescription) String() string {
	return d.value
}

// MarshalJSON encodes the description as a JSON string.
func (d TicketDescription) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.value)
}

// UnmarshalJSON decodes a JSON string and validates it like NewTicketDescription.
func (d *TicketDescription) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewTicketDescription(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
