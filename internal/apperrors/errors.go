package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates a numbering race or concurrent-version mismatch; the
// caller should retry the whole operation.
var ErrConflict = errors.New("conflicting concurrent operation")

// ErrInsufficientFunds indicates that applying a transaction would drive an
// account's available balance below zero without permission to go negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrInvalidState indicates the operation is not legal for the current
// transaction or account status (e.g. cancelling a completed transaction).
var ErrInvalidState = errors.New("operation not allowed in current state")

// ErrInvalidOperation indicates the operation itself is not permitted through
// this path (e.g. setting balances directly on an account update).
var ErrInvalidOperation = errors.New("operation not permitted")

// ErrPreconditionFailed indicates a precondition was not met (e.g. deactivating
// an account that still has pending transactions).
var ErrPreconditionFailed = errors.New("precondition failed")

// ErrForbidden indicates the actor is not allowed to perform the action.
var ErrForbidden = errors.New("forbidden")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// AppError wraps a lower-level error with a status code and message.
// Repositories use it to attach context without losing the underlying cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that matches ErrNotFound via errors.Is.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
