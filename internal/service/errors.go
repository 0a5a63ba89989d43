// Package service implements the session lifecycle: credential
// verification, access-token issuance and refresh-token rotation.
package service

import "errors"

// Business-rule failures surfaced by the session service. Anything else
// escaping these sentinels is an unanticipated internal fault.
var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// disabled/locked/deleted accounts. One kind on purpose: callers
	// must not be able to probe which emails exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProjectNotFound is returned for unknown or inactive tenants.
	ErrProjectNotFound = errors.New("project not found")

	// ErrProjectAccessDenied is returned when the user holds no
	// membership in the requested project.
	ErrProjectAccessDenied = errors.New("project access denied")

	// ErrEmailAlreadyUsed is returned when registering a taken email.
	ErrEmailAlreadyUsed = errors.New("email already used")

	// ErrInvalidRefreshToken covers not-found, tenant mismatch, expiry
	// and prior consumption. One kind on purpose: the sub-case must not
	// leak, or refresh tokens become a tenant/replay probing oracle.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrUserNotFound is returned by GetUserByID for unknown ids.
	ErrUserNotFound = errors.New("user not found")
)
