package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAdminDisabled      = errors.New("admin login is not configured")
	ErrAdminRequired      = errors.New("admin access required")
	ErrKioskRequired      = errors.New("kiosk or admin access required")
)
