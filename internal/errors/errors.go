// Package errors defines the error taxonomy shared by the services and the
// API layer. Resolution rejections are distinct sentinels on purpose: each
// one maps to different caller behavior and they must never be coalesced
// into a generic failure.
package errors

import (
	"errors"
	"fmt"
)

// Resolution rejections. All four are expected, recoverable outcomes; a
// store error that is none of these is a transient/connectivity failure.
var (
	// ErrLinkNotFound is returned when no link carries the short code.
	ErrLinkNotFound = errors.New("short code not found")

	// ErrLinkInactive is returned for administratively disabled links.
	ErrLinkInactive = errors.New("link is inactive")

	// ErrLinkExpired is returned when expires_at is in the past.
	ErrLinkExpired = errors.New("link has expired")

	// ErrVisitLimitReached is returned once visit_count has hit visit_limit.
	ErrVisitLimitReached = errors.New("visit limit reached")
)

// Creation-time and account errors.
var (
	// ErrQuotaExceeded is returned when an owner is at their plan's
	// active-link ceiling.
	ErrQuotaExceeded = errors.New("active link quota exceeded for plan")

	// ErrCodeAlreadyAssigned signals a double short-code attachment. Normal
	// flow never triggers it; hitting it means an invariant was violated.
	ErrCodeAlreadyAssigned = errors.New("short code already assigned")

	// ErrEmailTaken is returned when registering an email that exists.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for a failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned for lookups of unknown accounts.
	ErrUserNotFound = errors.New("user not found")
)

// IsResolutionReject reports whether err is one of the four expected
// resolution outcomes, as opposed to a store-level failure.
func IsResolutionReject(err error) bool {
	return errors.Is(err, ErrLinkNotFound) ||
		errors.Is(err, ErrLinkInactive) ||
		errors.Is(err, ErrLinkExpired) ||
		errors.Is(err, ErrVisitLimitReached)
}

// ErrVisitRecordingFailed wraps a failed visit append. The increment that
// preceded it stands; callers log this and move on.
type ErrVisitRecordingFailed struct {
	LinkID uint
	Err    error
}

func (e ErrVisitRecordingFailed) Error() string {
	return fmt.Sprintf("failed to record visit for link %d: %v", e.LinkID, e.Err)
}

func (e ErrVisitRecordingFailed) Unwrap() error { return e.Err }
