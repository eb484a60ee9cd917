package domain

import "errors"

// Sentinel errors shared across services and repositories. Repositories
// translate storage-level failures (missing documents, duplicate-key
// violations) into these so the layers above never see driver errors.
//
// The NotFound family is deliberately distinct from ErrForbidden: a resource
// that exists but belongs to another user fails Forbidden at the top of the
// ownership chain, while anything below a confirmed root fails NotFound.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrTokenRevoked       = errors.New("token already revoked")
	ErrForbidden          = errors.New("forbidden")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user already exists")
	ErrResetTokenInvalid = errors.New("reset token is invalid or expired")

	ErrDistributorNotFound = errors.New("distributor not found")
	ErrDistributorExists   = errors.New("distributor already registered")
	ErrDistributorInUse    = errors.New("distributor is referenced by properties")

	ErrPropertyNotFound    = errors.New("property not found")
	ErrAreaNotFound        = errors.New("area not found")
	ErrDeviceNotFound      = errors.New("device not found")
	ErrIoTConfigNotFound   = errors.New("iot config not found")
	ErrConsumptionNotFound = errors.New("consumption record not found")
	ErrDuplicatePeriod     = errors.New("consumption already recorded for this period")
)

// ValidationError carries a caller-facing message for a rejected input. It is
// distinct from the sentinels above so handlers can map it to 400 with the
// message intact.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// NewValidationError builds a ValidationError with the given message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}
