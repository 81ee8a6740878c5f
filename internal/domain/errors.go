package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so callers can branch with errors.Is without
// parsing message text.
var (
	// ErrArgument marks a structurally invalid parameter: an empty required
	// field, a non-positive count. Returned immediately, never swallowed.
	ErrArgument = errors.New("invalid argument")

	// ErrValidation marks a business-rule violation (duplicate username,
	// malformed email, reused password). The wrapping message carries the
	// field-scoped text meant for end users.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks an unknown account identifier passed to an operation
	// that requires an existing account.
	ErrNotFound = errors.New("not found")

	// ErrMultipleResults marks a single-value lookup that matched more than
	// one record, e.g. GetClaimValue on a multi-valued claim type.
	ErrMultipleResults = errors.New("multiple results")
)
