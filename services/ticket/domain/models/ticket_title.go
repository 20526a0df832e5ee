package models

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// MaxTicketTitleLength is the upper bound on a title, counted in runes.
const MaxTicketTitleLength = 50

// TicketTitle is a value object representing a valid ticket title.
// Encapsulates validation rules: 1 <= utf8.RuneCountInString(title) <= 50.
//
// The zero value is not a valid title; obtain one through NewTicketTitle or
// TicketTitleFromBytes. Values compare with == and are safe to copy and share.
type TicketTitle struct {
	value string
}

// ParseTitleError reports why a candidate title was rejected.
type ParseTitleError struct {
	message string
}

// Error returns the rejection message unchanged.
func (e *ParseTitleError) Error() string {
	return e.message
}

// NewTicketTitle constructs a valid TicketTitle or returns a *ParseTitleError.
// The input is kept verbatim: no trimming or normalization happens.
func NewTicketTitle(s string) (TicketTitle, error) {
	if s == "" {
		return TicketTitle{}, &ParseTitleError{message: "The title cannot be empty"}
	}
	if utf8.RuneCountInString(s) > MaxTicketTitleLength {
		return TicketTitle{}, &ParseTitleError{
			message: fmt.Sprintf("The title cannot be longer than %d characters", MaxTicketTitleLength),
		}
	}
	return TicketTitle{value: s}, nil
}

// TicketTitleFromBytes is NewTicketTitle for a caller-owned buffer. The
// returned title holds its own copy, so b may be reused afterwards.
func TicketTitleFromBytes(b []byte) (TicketTitle, error) {
	return NewTicketTitle(string(b))
}

// String returns the underlying string value.
func (t TicketTitle) String() string {
	return t.value
}

// GoString implements fmt.GoStringer for %#v.
func (t TicketTitle) GoString() string {
	return fmt.Sprintf("models.TicketTitle(%q)", t.value)
}

// IsZero reports whether t was never set through a constructor.
func (t TicketTitle) IsZero() bool {
	return t.value == ""
}

// MarshalText implements encoding.TextMarshaler.
func (t TicketTitle) MarshalText() ([]byte, error) {
	return []byte(t.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Decoded text goes
// through the same validation as NewTicketTitle.
func (t *TicketTitle) UnmarshalText(text []byte) error {
	parsed, err := TicketTitleFromBytes(text)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalJSON encodes the title as a JSON string.
func (t TicketTitle) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes a JSON string and validates it.
func (t *TicketTitle) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := NewTicketTitle(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
