package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidCredentials = errors.New("incorrect credentials")
	ErrSessionInvalid     = errors.New("session is invalid or expired")
)

// FieldErrors maps form fields to a user-facing message.
type FieldErrors map[string]string

func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + f[k]
	}
	return "invalid fields: " + strings.Join(parts, "; ")
}

// RuleError is a business rule rejection shown to the operator as-is.
type RuleError struct {
	Code    string
	Message string
}

func (e *RuleError) Error() string { return e.Message }

var (
	errCheckInPast = &RuleError{
		Code:    "check_in_in_past",
		Message: "The check-in date cannot be earlier than the current date.",
	}
	errRoomOccupied = &RuleError{
		Code:    "room_occupied",
		Message: "The selected room is currently occupied.",
	}
	errNotActive = &RuleError{
		Code:    "reservation_not_active",
		Message: "Only pending or paid reservations can be checked in.",
	}
	errAlreadyCheckedIn = &RuleError{
		Code:    "already_checked_in",
		Message: "This reservation has already been checked in.",
	}
	errRoomNotReady = &RuleError{
		Code:    "room_not_ready",
		Message: "The room is not ready to receive the guest.",
	}
	errNotCheckedIn = &RuleError{
		Code:    "not_checked_in",
		Message: "The guest has not checked in yet.",
	}
	errAlreadyCheckedOut = &RuleError{
		Code:    "already_checked_out",
		Message: "This reservation has already been checked out.",
	}
	errAlreadyCancelled = &RuleError{
		Code:    "already_cancelled",
		Message: "This reservation is already cancelled.",
	}
	errAlreadyFinalized = &RuleError{
		Code:    "already_finalized",
		Message: "A finalized reservation cannot be cancelled.",
	}
	errRoomChangeInStay = &RuleError{
		Code:    "room_change_in_stay",
		Message: "The room of a reservation with a guest in it cannot be changed.",
	}
	errStayInProgress = &RuleError{
		Code:    "stay_in_progress",
		Message: "A reservation with a guest in the room must be checked out, not cancelled.",
	}
)
