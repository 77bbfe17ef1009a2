package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/auth"
	"github.com/cmlabs-hris/face-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/face-attendance-go/internal/handler/http/response"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
	IssueKioskToken(w http.ResponseWriter, r *http.Request)
	IssueStreamToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.AuthService
}

func NewAuthHandler(authService auth.AuthService) AuthHandler {
	return &AuthHandlerImpl{
		authService: authService,
	}
}

// Login implements AuthHandler.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	var loginReq auth.LoginRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		slog.Error("Login decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// 2. Call service
	token, err := a.authService.Login(r.Context(), loginReq)
	if err != nil {
		slog.Warn("Login failed", "error", err, "ip", r.RemoteAddr)
		response.HandleError(w, err)
		return
	}

	slog.Info("Admin logged in", "ip", r.RemoteAddr)
	response.SuccessWithMessage(w, "Login successful", token)
}

// IssueKioskToken implements AuthHandler.
func (a *AuthHandlerImpl) IssueKioskToken(w http.ResponseWriter, r *http.Request) {
	var req auth.KioskTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("IssueKioskToken decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	token, err := a.authService.IssueKioskToken(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	slog.Info("Kiosk token issued", "terminal_id", req.TerminalID, "issued_by", middleware.Subject(r))
	response.Created(w, "Kiosk token issued", token)
}

// IssueStreamToken implements AuthHandler.
func (a *AuthHandlerImpl) IssueStreamToken(w http.ResponseWriter, r *http.Request) {
	token, err := a.authService.IssueStreamToken(r.Context(), middleware.Subject(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, token)
}
