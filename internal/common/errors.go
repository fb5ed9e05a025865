// Package common defines shared constants and sentinel errors used across
// client and server layers of pairchat. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrValidation     = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Message delivery errors.
	ErrEmptyMessage      = errors.New("message must have text or an image")
	ErrPersistence       = errors.New("message store unavailable")
	ErrPushDelivery      = errors.New("push delivery failed")
	ErrInvalidAttachment = errors.New("invalid attachment")
	ErrAttachmentUpload  = errors.New("attachment upload failed")
)
