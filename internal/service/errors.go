package service

import "errors"

var (
	ErrEmailExists       = errors.New("email already exists")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidCode       = errors.New("invalid or expired verification code")
	ErrCodeExpired       = errors.New("verification code has expired")
	ErrTooManyAttempts   = errors.New("too many failed attempts")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailNotVerified  = errors.New("email not verified")
	ErrResendRateLimited = errors.New("verification code requested too recently")
	ErrInvalidToken      = errors.New("invalid token")
)
