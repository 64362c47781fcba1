package auth

import (
	"strings"

	"github.com/frahmantamala/campus-resources/internal"
)

// LoginDTO is the body of POST /api/auth/login.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	var errs []internal.ValidationError
	if strings.TrimSpace(d.Email) == "" {
		errs = append(errs, internal.ValidationError{Field: "email", Message: "email is required", Code: string(internal.ErrCodeRequiredField)})
	}
	if d.Password == "" {
		errs = append(errs, internal.ValidationError{Field: "password", Message: "password is required", Code: string(internal.ErrCodeRequiredField)})
	}
	if len(errs) > 0 {
		return internal.NewValidationFieldErrors(errs...)
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
