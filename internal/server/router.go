package server

import (
	"net/http"

	"bookstand/internal/library"
	"bookstand/internal/server/handlers"
	"bookstand/internal/session"
)

// Config carries the router's static configuration.
type Config struct {
	JWTSecret string
	Version   string
}

// NewRouter creates and configures the HTTP router. The browse endpoints are
// public; the inventory mutations require an authenticated identity.
func NewRouter(lib *library.Library, gate *session.Gate, cfg *Config) http.Handler {
	mux := http.NewServeMux()

	hh := handlers.NewHealthHandler(cfg.Version, lib)
	authh := handlers.NewAuthHandler(gate, []byte(cfg.JWTSecret))
	ch := handlers.NewCatalogHandler(lib)
	ih := handlers.NewInventoryHandler(lib)

	mux.Handle("GET /api/health", Wrap(hh.Health))

	// Auth endpoints
	mux.Handle("POST /api/auth/login", Wrap(authh.Login))
	mux.Handle("POST /api/auth/logout", Wrap(authh.Logout))
	mux.Handle("GET /api/auth/me", Wrap(authh.Me))

	// Browse endpoints
	mux.Handle("GET /api/books", Wrap(ch.ListBooks))
	mux.Handle("GET /api/authors", Wrap(ch.ListAuthors))
	mux.Handle("GET /api/stores", Wrap(ch.ListStores))
	mux.Handle("GET /api/stores/{storeID}/books", Wrap(ch.StoreBooks))

	// Admin inventory endpoints
	mux.Handle("POST /api/stores/{storeID}/inventory", Wrap(ih.AddItem))
	mux.Handle("PATCH /api/inventory/{invID}", Wrap(ih.UpdatePrice))
	mux.Handle("DELETE /api/inventory/{invID}", Wrap(ih.DeleteItem))

	return LogRequests(AuthMiddleware([]byte(cfg.JWTSecret))(mux))
}
