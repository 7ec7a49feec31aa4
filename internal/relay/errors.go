package relay

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrWalletNotFound indicates the requested wallet does not exist in the
	// caller's project scope.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrTransactionNotFound indicates no transaction matches the given hash.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrChainNotSupported indicates the wallet's chain has no configured backend.
	ErrChainNotSupported = errors.New("chain not supported")
)

// ValidationError reports a request rejected before any RPC call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// SponsorshipError reports a paymaster denial or failure. Sponsorship is a
// caller-requested guarantee, so the pipeline never downgrades to an
// unsponsored send; the caller decides whether to retry without sponsorship.
type SponsorshipError struct {
	Err error
}

func (e *SponsorshipError) Error() string {
	return fmt.Sprintf("sponsorship failed: %v", e.Err)
}

func (e *SponsorshipError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a chain node, bundler, or paymaster failure before
// the operation was broadcast. Safe to retry the whole send.
type UpstreamError struct {
	Service string // "chain" or "bundler"
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed store write after the operation was
// already broadcast. The operation is in flight with no local record, so this
// must be reported distinctly from a submission failure: the record should be
// recreated, never the operation resubmitted.
type PersistenceError struct {
	OpHash string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist submitted operation %s: %v", e.OpHash, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
