package auth

import "github.com/cmlabs-hris/face-attendance-go/internal/pkg/validator"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Username) {
		errs = append(errs, validator.ValidationError{
			Field:   "username",
			Message: "username is required",
		})
	}
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type KioskTokenRequest struct {
	TerminalID string `json:"terminal_id"`
}

func (r *KioskTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.TerminalID) {
		errs = append(errs, validator.ValidationError{
			Field:   "terminal_id",
			Message: "terminal_id is required",
		})
	} else if len(r.TerminalID) > 64 {
		errs = append(errs, validator.ValidationError{
			Field:   "terminal_id",
			Message: "terminal_id must not exceed 64 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}
