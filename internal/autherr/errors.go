// Package autherr defines the failure taxonomy of the authentication
// pipeline. Every login failure resolves to exactly one Error; handlers
// map it to an HTTP status and a machine-distinguishable code without
// leaking internal detail.
package autherr

import (
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation  Code = "missing_fields"
	CodeCredentials Code = "invalid_credentials"
	CodeNoLicense   Code = "no_license"
	CodeRevoked     Code = "license_revoked"
	CodeExpired     Code = "license_expired"
	CodeDeviceBound Code = "device_mismatch"
	CodeAdminGate   Code = "admin_device_not_whitelisted"
	CodeRateLimited Code = "too_many_attempts"
	CodeInternal    Code = "internal_error"
)

type Error struct {
	Code    Code
	Message string

	// Reason carries the stored revocation reason or "expired" for
	// license failures; empty otherwise.
	Reason string

	// BoundDevice carries the display name of the device a mismatched
	// license is bound to. Never the raw device id.
	BoundDevice string

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeCredentials:
		return http.StatusUnauthorized
	case CodeNoLicense, CodeRevoked, CodeExpired, CodeDeviceBound, CodeAdminGate:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// InvalidCredentials is deliberately generic: it covers unknown email,
// inactive account and wrong password alike, so responses cannot be used
// to enumerate accounts.
func InvalidCredentials() *Error {
	return &Error{Code: CodeCredentials, Message: "invalid email or password"}
}

func NoLicense() *Error {
	return &Error{Code: CodeNoLicense, Message: "no license is associated with this account"}
}

func LicenseRevoked(reason string) *Error {
	if reason == "" {
		reason = "revoked"
	}
	return &Error{Code: CodeRevoked, Message: "license has been revoked", Reason: reason}
}

func LicenseExpired() *Error {
	return &Error{Code: CodeExpired, Message: "license has expired", Reason: "expired"}
}

func DeviceMismatch(boundDeviceName string) *Error {
	return &Error{
		Code:        CodeDeviceBound,
		Message:     "license is bound to a different device; contact an administrator to reset the binding",
		BoundDevice: boundDeviceName,
	}
}

func AdminGate() *Error {
	return &Error{Code: CodeAdminGate, Message: "this device is not authorized for administrator access"}
}

func RateLimited() *Error {
	return &Error{Code: CodeRateLimited, Message: "too many login attempts, try again later"}
}

func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", cause: cause}
}
