// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrTriggerNotFound indicates a trigger was not found by the given identifier.
	ErrTriggerNotFound = errors.New("trigger not found")

	// ErrActionNotFound indicates an action was not found by the given identifier.
	ErrActionNotFound = errors.New("action not found")

	// ErrAutomationNotFound indicates an automation was not found by the given identifier.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrExecutionNotFound indicates an execution was not found by the given identifier.
	ErrExecutionNotFound = errors.New("execution not found")
)

// StoreError wraps storage errors with operation context.
type StoreError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save", "UpdateStatus")
	Entity string // Entity kind (trigger, action, automation, execution)
	ID     string // Record ID if applicable
	Err    error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s operation failed for %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}

	return fmt.Sprintf("%s operation failed for %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for store errors.
func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a new store error with context.
func NewStoreError(op, entity, id string, err error) *StoreError {
	return &StoreError{
		Op:     op,
		Entity: entity,
		ID:     id,
		Err:    err,
	}
}

// IsTriggerNotFound checks if an error indicates a trigger was not found.
func IsTriggerNotFound(err error) bool {
	return errors.Is(err, ErrTriggerNotFound)
}

// IsActionNotFound checks if an error indicates an action was not found.
func IsActionNotFound(err error) bool {
	return errors.Is(err, ErrActionNotFound)
}

// IsAutomationNotFound checks if an error indicates an automation was not found.
func IsAutomationNotFound(err error) bool {
	return errors.Is(err, ErrAutomationNotFound)
}

// IsExecutionNotFound checks if an error indicates an execution was not found.
func IsExecutionNotFound(err error) bool {
	return errors.Is(err, ErrExecutionNotFound)
}
