package auth

import (
	"github.com/cityparkhub/parkctl/internal/session"
)

// Credentials is the login form payload.
type Credentials struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// Registration is the sign-up form payload. ConfirmPassword is checked
// client-side before the request is sent.
type Registration struct {
	FullName        string `json:"full_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginResponse is the token bundle issued by the backend.
type LoginResponse struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	User        *session.User `json:"user"`
}

// resetRequest asks the backend to start a password reset for an email.
type resetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// verifyResetRequest completes a password reset with the emailed token.
type verifyResetRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
