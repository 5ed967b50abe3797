// Package session implements the auth gate: at most one signed-in identity,
// persisted across restarts through an injectable store. The gate is an
// explicit object handed to whoever needs identity, never a process-wide
// singleton.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"bookstand/internal/models"
)

// ErrInvalidCredentials is returned when sign-in matches zero user records.
var ErrInvalidCredentials = errors.New("invalid email or password")

// CredentialFinder resolves a credential pair to matching user records. The
// collection store client satisfies it.
type CredentialFinder interface {
	FindUsers(ctx context.Context, email, password string) ([]models.User, error)
}

// Gate holds the current identity and the sign-in/sign-out flow.
type Gate struct {
	finder CredentialFinder
	store  Store

	mu      sync.Mutex
	current *models.User
}

// NewGate creates a gate, restoring any identity the store persisted. The
// store is read exactly once, here.
func NewGate(finder CredentialFinder, store Store) (*Gate, error) {
	user, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}
	return &Gate{finder: finder, store: store, current: user}, nil
}

// Current returns the signed-in identity, or nil.
func (g *Gate) Current() *models.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil
	}
	u := *g.current
	return &u
}

// SignIn resolves the credential pair remotely and installs the first
// matching identity. Zero matches leaves the session unchanged and returns
// ErrInvalidCredentials.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	users, err := g.finder.FindUsers(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrInvalidCredentials
	}
	user := users[0]

	// Install and persist under one critical section, so concurrent sign-ins
	// cannot leave the durable copy holding a different identity than the
	// in-memory slot.
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = &user
	if err := g.store.Save(&user); err != nil {
		// The in-memory session is valid either way; only the restart
		// survival is lost.
		slog.WarnContext(ctx, "Failed to persist session", "err", err)
	}
	return &user, nil
}

// SignOut clears the identity and its persisted copy.
func (g *Gate) SignOut() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = nil
	if err := g.store.Clear(); err != nil {
		slog.Warn("Failed to clear persisted session", "err", err)
	}
}
