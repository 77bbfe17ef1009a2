package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/face-attendance-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	jwt.Service
	adminUsername     string
	adminPasswordHash []byte
}

// NewAuthService checks admin credentials against a bcrypt hash. An empty hash disables admin login.
func NewAuthService(jwtService jwt.Service, adminUsername string, adminPasswordHash string) auth.AuthService {
	return &AuthServiceImpl{
		Service:           jwtService,
		adminUsername:     adminUsername,
		adminPasswordHash: []byte(adminPasswordHash),
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}
	if len(a.adminPasswordHash) == 0 {
		return auth.TokenResponse{}, auth.ErrAdminDisabled
	}

	usernameOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(req.Username)), []byte(a.adminUsername)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	passwordErr := bcrypt.CompareHashAndPassword(a.adminPasswordHash, []byte(req.Password))
	if !usernameOK || passwordErr != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	token, expiresAt, err := a.Service.GenerateAccessToken(a.adminUsername, jwt.RoleAdmin)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return newTokenResponse(token, expiresAt), nil
}

// IssueKioskToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueKioskToken(ctx context.Context, req auth.KioskTokenRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	token, expiresAt, err := a.Service.GenerateKioskToken(strings.TrimSpace(req.TerminalID))
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate kiosk token: %w", err)
	}
	return newTokenResponse(token, expiresAt), nil
}

// IssueStreamToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueStreamToken(ctx context.Context, subject string) (auth.TokenResponse, error) {
	if subject == "" {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	token, expiresIn, err := a.Service.GenerateSSEToken(subject)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate stream token: %w", err)
	}
	return auth.TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: int64(expiresIn)}, nil
}

func newTokenResponse(token string, expiresAt int64) auth.TokenResponse {
	return auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt - time.Now().Unix(),
	}
}
