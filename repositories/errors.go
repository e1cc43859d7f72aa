package repositories

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicate           = errors.New("duplicate resource")
	ErrConflict            = errors.New("resource was modified concurrently")
	ErrInsufficientStock   = errors.New("not enough stock available")
	ErrUpstreamUnavailable = errors.New("document store unavailable")
)

// classify maps driver errors onto the repository sentinels so callers
// never need to import the mongo package to branch on them.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return err
}
