// Package repository defines the persistence interfaces consumed by the
// session service together with their MySQL and in-memory
// implementations. Sentinel errors let higher layers distinguish
// failure scenarios without inspecting driver-specific errors.
package repository

import "errors"

// ErrEmailExists is returned when inserting a user whose email is
// already taken. The unique key on users.email is the authoritative
// arbiter under concurrent registrations.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when no user row matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrProjectNotFound is returned when a project id does not exist or
// the project is inactive.
var ErrProjectNotFound = errors.New("project not found")

// ErrNotAMember is returned when a user holds no membership in the
// given project.
var ErrNotAMember = errors.New("user is not a member of project")

// ErrTokenNotFound is returned by Consume when no refresh-token row
// matches the presented hash.
var ErrTokenNotFound = errors.New("refresh token not found")

// ErrTokenProjectMismatch is returned by Consume when the row exists
// but is bound to a different project than the caller supplied. It must
// never be surfaced to clients as anything other than a generic
// invalid-token rejection.
var ErrTokenProjectMismatch = errors.New("refresh token bound to different project")

// ErrTokenSpent is returned by Consume when the row exists for the
// right project but is already revoked or past its expiry.
var ErrTokenSpent = errors.New("refresh token expired or revoked")
