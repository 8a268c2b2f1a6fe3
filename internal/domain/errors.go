package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidUpdate is returned when a live update cannot be decoded
	ErrInvalidUpdate = errors.New("invalid coin update")

	// ErrCoinNotFound is returned when a coin is not found
	ErrCoinNotFound = errors.New("coin not found")

	// ErrAlreadyInProgress is returned when a trade intent already has a submission in flight
	ErrAlreadyInProgress = errors.New("trade already in progress")

	// ErrPreviewNotReady is returned when submitting without a ready preview or a valid amount
	ErrPreviewNotReady = errors.New("preview not ready")

	// ErrIntentChanged is returned when the input changed while an approval was in flight
	ErrIntentChanged = errors.New("trade input changed, please review and submit again")

	// ErrInsufficientBalance is returned by client-side balance checks
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrTransactionReverted is returned when a mined transaction did not succeed
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrMissingDependency is matched by every MissingDependencyError
	ErrMissingDependency = errors.New("missing dependency")
)

// MissingDependencyError is returned when a required collaborator is not configured,
// such as a signer or a contract address
type MissingDependencyError struct {
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: %s", e.Dependency)
}

func (e *MissingDependencyError) Is(target error) bool {
	return target == ErrMissingDependency
}

// NewMissingDependencyError creates a new MissingDependencyError
func NewMissingDependencyError(dependency string) error {
	return &MissingDependencyError{Dependency: dependency}
}
