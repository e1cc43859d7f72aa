package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/HSouheill/branchstock_backend/repositories"
)

var (
	ErrNotFound             = repositories.ErrNotFound
	ErrUpstreamUnavailable  = repositories.ErrUpstreamUnavailable
	ErrInvalidQuantity      = errors.New("quantity must be between 1 and the available stock")
	ErrSaleInProgress       = errors.New("a sale with this idempotency key is still being recorded")
	ErrIdempotencyKeyReused = errors.New("idempotency key was already used for a different sale")
	ErrBranchRequired       = errors.New("branchId is required for the worker role")
)

// ValidationError lists the offending fields of a rejected write.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// PartialFailureError reports a multi-step flow that stopped after some of
// its steps had already taken effect. It is never retried automatically.
type PartialFailureError struct {
	Operation string
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s partially failed at %s (completed: %s): %v",
		e.Operation, e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}
