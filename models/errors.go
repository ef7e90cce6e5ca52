// File: models/errors.go
package models

import (
	"errors"
	"fmt"
)

// ----------------------- sentinels -----------------------

// Sentinel errors for errors.Is checks. The typed errors below match them.
var (
	ErrValidation       = errors.New("validation failed")
	ErrSlotTaken        = errors.New("slot unavailable")
	ErrNotFound         = errors.New("game not found")
	ErrNetwork          = errors.New("network failure")
	ErrCreation         = errors.New("game creation failed")
	ErrUnknownEnumValue = errors.New("unknown enum value")
	ErrNotReady         = errors.New("not every slot is filled")
)

// ----------------------- typed errors -----------------------

// ValidationError reports bad local input. Not retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// SlotTakenError reports that another session holds the requested slot.
type SlotTakenError struct {
	Slot   Slot
	Holder string
}

func (e *SlotTakenError) Error() string {
	if e.Holder == "" {
		return fmt.Sprintf("slot %s unavailable", e.Slot)
	}
	return fmt.Sprintf("slot %s unavailable (held by %s)", e.Slot, e.Holder)
}

func (e *SlotTakenError) Is(target error) bool { return target == ErrSlotTaken }

// NotFoundError reports an unknown game id. Fatal for the current view.
type NotFoundError struct {
	GameID GameID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("game %q not found", string(e.GameID))
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// NetworkError wraps a transport failure or timeout.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// CreationError reports a rejected game creation.
type CreationError struct {
	Name   string
	Reason string
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("could not create game %q: %s", e.Name, e.Reason)
}

func (e *CreationError) Is(target error) bool { return target == ErrCreation }

// UnknownEnumValueError means the backend and client disagree about an
// enumeration. It is a contract error and must not be swallowed.
type UnknownEnumValueError struct {
	Enum  string
	Value int
}

func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown %s value %d", e.Enum, e.Value)
}

func (e *UnknownEnumValueError) Is(target error) bool { return target == ErrUnknownEnumValue }

// PreconditionError reports a request the client refuses to send, such as
// starting a game before every slot is filled.
type PreconditionError struct {
	Op  string
	Err error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PreconditionError) Unwrap() error { return e.Err }
