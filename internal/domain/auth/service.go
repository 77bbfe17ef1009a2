package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	// IssueKioskToken mints a long-lived token for an attendance terminal. Admin only.
	IssueKioskToken(ctx context.Context, req KioskTokenRequest) (TokenResponse, error)
	// IssueStreamToken mints a short-lived token for the attendance event stream.
	IssueStreamToken(ctx context.Context, subject string) (TokenResponse, error)
}
