// Package common contains shared constants and sentinel errors used across
// FileVault components. Callers match sentinels with errors.Is.
package common

import (
	"errors"
	"fmt"
)

var (
	// Validation errors, raised before any state changes.
	ErrInvalidArgument = errors.New("invalid argument")

	// Ledger record errors.
	ErrNotFound       = errors.New("file not found")
	ErrFileDeleted    = errors.New("file deleted")
	ErrAlreadyDeleted = errors.New("file already deleted")

	// Authorization errors.
	ErrNotOwner     = errors.New("caller is not the owner")
	ErrAccessDenied = errors.New("access denied")

	// Sharing-protocol errors.
	ErrSelfShare      = errors.New("cannot share a file with its owner")
	ErrInvalidGrantee = errors.New("invalid grantee")
	ErrAlreadyShared  = errors.New("file already shared with grantee")
	ErrNoSuchGrant    = errors.New("no active grant for grantee")

	// Cryptographic errors. Deliberately a single kind: wrong key and
	// corrupted ciphertext must be indistinguishable to the caller.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Identity errors.
	ErrIdentityUnavailable = errors.New("identity unavailable")

	// Transport/auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrInternal     = errors.New("internal error")
)

// OpError attaches the failing operation, file id and principal to a ledger
// sentinel so callers can render an actionable message without parsing text.
// FileID is -1 when the operation failed before a record was involved.
type OpError struct {
	Op        string
	FileID    int64
	Principal string
	Err       error
}

func (e *OpError) Error() string {
	if e.Principal != "" {
		return fmt.Sprintf("%s: file %d, principal %s: %v", e.Op, e.FileID, e.Principal, e.Err)
	}
	if e.FileID >= 0 {
		return fmt.Sprintf("%s: file %d: %v", e.Op, e.FileID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
