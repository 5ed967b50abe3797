package stubstore

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookstand/internal/models"
)

// NewRouter exposes the collections over the upstream service's REST
// surface.
func NewRouter(db *DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/stores", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, db.Stores())
	})
	r.Get("/books", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, db.Books())
	})
	r.Get("/authors", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, db.Authors())
	})
	r.Get("/inventory", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, db.Inventory())
	})
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		respond(w, http.StatusOK, db.Users(q.Get("email"), q.Get("password")))
	})

	r.Post("/inventory", func(w http.ResponseWriter, r *http.Request) {
		var item models.InventoryItem
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		created, err := db.AddInventory(item)
		if err != nil {
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusCreated, created)
	})

	r.Patch("/inventory/{invID}", func(w http.ResponseWriter, r *http.Request) {
		invID := models.ID(chi.URLParam(r, "invID"))
		var body struct {
			Price *float64 `json:"price"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if body.Price == nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "price is required"})
			return
		}
		updated, err := db.UpdateInventoryPrice(invID, *body.Price)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
				return
			}
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusOK, updated)
	})

	r.Delete("/inventory/{invID}", func(w http.ResponseWriter, r *http.Request) {
		invID := models.ID(chi.URLParam(r, "invID"))
		if err := db.DeleteInventory(invID); err != nil {
			if errors.Is(err, ErrNotFound) {
				respond(w, http.StatusNotFound, map[string]string{"error": "not found"})
				return
			}
			respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusOK, map[string]bool{"deleted": true})
	})

	return r
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
