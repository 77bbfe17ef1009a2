package jwt

import (
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleKiosk Role = "kiosk"
)

const sseTokenTTL = 5 * time.Minute

type Service interface {
	GenerateAccessToken(subject string, role Role) (token string, expiresAt int64, err error)
	GenerateKioskToken(terminalID string) (token string, expiresAt int64, err error)
	GenerateSSEToken(subject string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (subject string, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTTL time.Duration
	kioskTTL  time.Duration
	tokenAuth *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService parses the expiration durations up front so a bad value fails at startup.
func NewJWTService(secretKey string, accessTokenExpirationTime string, kioskTokenExpirationTime string) (Service, error) {
	accessTTL, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("parse access token expiration %q: %w", accessTokenExpirationTime, err)
	}
	kioskTTL, err := time.ParseDuration(kioskTokenExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("parse kiosk token expiration %q: %w", kioskTokenExpirationTime, err)
	}

	return &JWTService{
		accessTTL: accessTTL,
		kioskTTL:  kioskTTL,
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}, nil
}

func (j *JWTService) GenerateAccessToken(subject string, role Role) (token string, expiresAt int64, err error) {
	return j.encode(subject, role, "access", j.accessTTL)
}

// GenerateKioskToken issues the token an attendance terminal presents on every request
func (j *JWTService) GenerateKioskToken(terminalID string) (token string, expiresAt int64, err error) {
	return j.encode(terminalID, RoleKiosk, "access", j.kioskTTL)
}

func (j *JWTService) encode(subject string, role Role, tokenType string, ttl time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(ttl).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  subject,
		"role": string(role),
		"type": tokenType,
		"exp":  expiresAt,
	})
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(subject string) (token string, expiresIn int, err error) {
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":  subject,
		"type": "sse",
		"exp":  expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenTTL / time.Second), nil
}

// ValidateSSEToken validates an SSE token and returns its subject
func (j *JWTService) ValidateSSEToken(tokenString string) (subject string, err error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}

	// Check token type
	tokenType, ok := token.Get("type")
	if !ok || tokenType != "sse" {
		return "", jwt.ErrInvalidJWT()
	}

	if token.Subject() == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return token.Subject(), nil
}
