package common

import "errors"

// Callers should use errors.Is to match these values.
var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")
	ErrTimeout        = errors.New("remote call timed out")

	// Auth errors.
	ErrInvalidToken        = errors.New("invalid token")
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrEmailTaken          = errors.New("email already registered")

	// Catalog errors.
	ErrInvalidCategory   = errors.New("invalid category")
	ErrProfileResolution = errors.New("profile resolution failed")
	ErrQueryFailed       = errors.New("file query failed")

	// Upload pipeline errors, one per step that can fail.
	ErrPathConflict   = errors.New("storage path already taken")
	ErrObjectWrite    = errors.New("object write failed")
	ErrURLResolution  = errors.New("public url resolution failed")
	ErrMetadataInsert = errors.New("metadata insert failed")
	ErrOrphanedObject = errors.New("object left without metadata")
)
