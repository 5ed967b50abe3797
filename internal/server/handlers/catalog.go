package handlers

import (
	"context"

	apierrors "bookstand/internal/errors"
	"bookstand/internal/library"
	"bookstand/internal/models"
)

// CatalogHandler serves the read-only derived views.
type CatalogHandler struct {
	lib *library.Library
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(lib *library.Library) *CatalogHandler {
	return &CatalogHandler{lib: lib}
}

// ListBooksRequest is a request for the cross-store book view.
type ListBooksRequest struct{}

// ListBooksResponse carries every book with the stores that list it.
type ListBooksResponse struct {
	Loading bool                     `json:"loading"`
	Books   []library.BookWithStores `json:"books"`
}

// ListBooks returns every book annotated with each store and price it is
// sold at.
func (h *CatalogHandler) ListBooks(ctx context.Context, req ListBooksRequest) (*ListBooksResponse, error) {
	return &ListBooksResponse{
		Loading: h.lib.Loading(),
		Books:   h.lib.BooksWithStores(),
	}, nil
}

// ListAuthorsRequest is a request for the author list.
type ListAuthorsRequest struct{}

// ListAuthorsResponse carries the authors with display names.
type ListAuthorsResponse struct {
	Loading bool                 `json:"loading"`
	Authors []library.AuthorInfo `json:"authors"`
}

// ListAuthors returns all authors.
func (h *CatalogHandler) ListAuthors(ctx context.Context, req ListAuthorsRequest) (*ListAuthorsResponse, error) {
	return &ListAuthorsResponse{
		Loading: h.lib.Loading(),
		Authors: h.lib.Authors(),
	}, nil
}

// ListStoresRequest is a request for the store list.
type ListStoresRequest struct{}

// ListStoresResponse carries the stores.
type ListStoresResponse struct {
	Loading bool           `json:"loading"`
	Stores  []models.Store `json:"stores"`
}

// ListStores returns all stores.
func (h *CatalogHandler) ListStores(ctx context.Context, req ListStoresRequest) (*ListStoresResponse, error) {
	return &ListStoresResponse{
		Loading: h.lib.Loading(),
		Stores:  h.lib.Stores(),
	}, nil
}

// StoreBooksRequest is a request for one store's inventory view.
type StoreBooksRequest struct {
	StoreID string `path:"storeID"`
	Search  string `query:"search"`
}

// StoreBooksResponse carries a store and its search-filtered book listings.
type StoreBooksResponse struct {
	Loading bool                `json:"loading"`
	Store   *models.Store       `json:"store"`
	Books   []library.StoreBook `json:"books"`
}

// StoreBooks returns the scoped, searchable inventory view for one store.
func (h *CatalogHandler) StoreBooks(ctx context.Context, req StoreBooksRequest) (*StoreBooksResponse, error) {
	storeID := models.ID(req.StoreID)
	store := h.lib.CurrentStore(storeID)
	if store == nil {
		return nil, apierrors.NotFound(apierrors.ErrStoreNotFound, "Store not found")
	}
	return &StoreBooksResponse{
		Loading: h.lib.Loading(),
		Store:   store,
		Books:   h.lib.StoreBooks(storeID, req.Search),
	}, nil
}
