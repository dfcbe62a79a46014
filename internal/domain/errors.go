package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable signals that the backing data store cannot be reached.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrMalformedRecord signals an interaction record that failed boundary validation.
	ErrMalformedRecord = errors.New("malformed interaction record")
	// ErrInvalidLimit signals a negative or otherwise unusable result limit.
	ErrInvalidLimit = errors.New("invalid limit")
	// ErrInvalidUserID signals an empty or oversized user identifier.
	ErrInvalidUserID = errors.New("invalid user id")
	// ErrCircuitOpen signals that personalized reads are temporarily suspended.
	ErrCircuitOpen = errors.New("personalization circuit open")
)

// MalformedRecordError wraps ErrMalformedRecord with the offending field.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: field %q %s", ErrMalformedRecord.Error(), e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// NewMalformedRecord creates a malformed record error.
func NewMalformedRecord(field, reason string) error {
	return &MalformedRecordError{Field: field, Reason: reason}
}

// Unavailable wraps a store failure so that errors.Is(err, ErrDataUnavailable) holds.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDataUnavailable, op, err)
}
