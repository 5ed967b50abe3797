// Package handlers implements the HTTP API handlers.
package handlers

import (
	"context"
	"errors"
	"net/http"

	apierrors "bookstand/internal/errors"
	"bookstand/internal/models"
	"bookstand/internal/session"
)

// AuthHandler handles sign-in and sign-out.
type AuthHandler struct {
	gate      *session.Gate
	jwtSecret []byte
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(gate *session.Gate, jwtSecret []byte) *AuthHandler {
	return &AuthHandler{gate: gate, jwtSecret: jwtSecret}
}

// LoginRequest is a request to sign in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is a response from signing in.
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login resolves the credentials against the collection store and returns a
// token carrying the identity. Zero matching records is a user-facing
// rejection, not a server failure.
func (h *AuthHandler) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apierrors.MissingField("email or password")
	}

	user, err := h.gate.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			return nil, apierrors.NewAPIError(http.StatusUnauthorized, apierrors.ErrInvalidCredentials, "Invalid email or password")
		}
		return nil, apierrors.UpstreamWithError("Credential lookup failed", err)
	}

	token, err := session.MintToken(h.jwtSecret, user)
	if err != nil {
		return nil, apierrors.InternalWithError("Failed to generate token", err)
	}

	return &LoginResponse{Token: token, User: user}, nil
}

// LogoutRequest is a request to sign out.
type LogoutRequest struct{}

// LogoutResponse is a response from signing out.
type LogoutResponse struct {
	SignedOut bool `json:"signed_out"`
}

// Logout clears the session.
func (h *AuthHandler) Logout(ctx context.Context, req LogoutRequest) (*LogoutResponse, error) {
	h.gate.SignOut()
	return &LogoutResponse{SignedOut: true}, nil
}

// MeRequest is a request to get current user info.
type MeRequest struct{}

// Me returns the identity carried by the request token.
func (h *AuthHandler) Me(ctx context.Context, req MeRequest) (*models.User, error) {
	return identityFrom(ctx)
}

// identityFrom returns the authenticated identity from the context, or an
// unauthorized error redirecting the caller to the sign-in flow.
func identityFrom(ctx context.Context) (*models.User, error) {
	user, ok := ctx.Value(models.UserKey).(*models.User)
	if !ok {
		return nil, apierrors.Unauthorized("Sign in required")
	}
	return user, nil
}
