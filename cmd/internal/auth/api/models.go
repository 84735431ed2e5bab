package authapi

import (
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"commerce/cmd/internal/identity"
)

type nonceResponse struct {
	// Nonce carries the validation tag the client echoes back at sign-in.
	Nonce string `json:"nonce"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	// Nonce is the tag handed out by the nonce endpoint.
	Nonce string `json:"nonce"`
}

type signinResponse struct {
	Token string `json:"token"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signoutResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	UUID  uuid.UUID `json:"uuid"`
	Email string    `json:"email"`
	Role  uuid.UUID `json:"role"`
}

func userResponseFrom(u identity.User) userResponse {
	return userResponse{UUID: u.UUID, Email: u.Email, Role: u.Role}
}

// normalizeCredentials trims and validates a credentials pair. The email must
// parse as a bare address; the password only has to be non-empty here,
// strength policy lives with the database-side hasher.
func normalizeCredentials(email, password string) (string, string, bool) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", "", false
	}
	return email, password, true
}
