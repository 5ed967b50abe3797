// Package library implements the data-join layer: it fetches the four base
// collections (stores, books, authors, inventory) from the collection store,
// maintains lookup indices over them, and computes the derived views the
// presentation layer reads. The four collections are owned exclusively by the
// Library that fetched them; all mutation goes through the entry points in
// mutate.go.
package library

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"bookstand/internal/models"
)

// Placeholder labels used when an inventory row references a book author or a
// store that does not resolve. Missing references degrade to these labels
// rather than failing the join.
const (
	UnknownAuthor = "Unknown Author"
	UnknownStore  = "Unknown Store"
)

// CollectionStore is the slice of the collection store API the library needs.
// *bookapi.Client satisfies it.
type CollectionStore interface {
	Stores(ctx context.Context) ([]models.Store, error)
	Books(ctx context.Context) ([]models.Book, error)
	Authors(ctx context.Context) ([]models.Author, error)
	Inventory(ctx context.Context) ([]models.InventoryItem, error)
	CreateInventory(ctx context.Context, item models.InventoryItem) error
	UpdateInventoryPrice(ctx context.Context, invID models.ID, price float64) error
	DeleteInventory(ctx context.Context, invID models.ID) error
}

// AuthorInfo is an author annotated with the precomputed display name.
type AuthorInfo struct {
	models.Author
	DisplayName string `json:"display_name"`
}

// generations tracks a change counter per collection. Derived views and
// indices are memoized against these, so a view is recomputed exactly when a
// collection it consulted has changed.
type generations struct {
	books     uint64
	authors   uint64
	stores    uint64
	inventory uint64
}

// Library holds the four base collections and derives views from them.
type Library struct {
	store CollectionStore

	// OnRemoteError, if set, receives failures from the asynchronous remote
	// writes issued by mutations. The local state has already been updated
	// optimistically at that point; the callback owner decides whether to
	// retry the write or re-fetch to reconcile. When nil, failures are
	// logged.
	OnRemoteError func(op string, invID models.ID, err error)

	writes sync.WaitGroup

	mu        sync.Mutex
	books     []models.Book
	authors   []models.Author
	stores    []models.Store
	inventory []models.InventoryItem
	gen       generations

	authorIdx    map[models.ID]AuthorInfo
	authorIdxGen uint64
	storeIdx     map[models.ID]models.Store
	storeIdxGen  uint64

	storeBooksMemo storeBooksMemo
	bookStoresMemo bookStoresMemo
}

// New creates a library backed by the given collection store. Call Load
// before reading views.
func New(store CollectionStore) *Library {
	return &Library{store: store}
}

// Load fetches the four collections concurrently and installs the results.
// The loaded transition happens only after all four requests have settled; a
// failed request is logged and leaves its collection empty, and the first
// failure does not cancel the others. If ctx is canceled before the join
// point, every result is discarded so a torn-down caller never applies stale
// state.
func (l *Library) Load(ctx context.Context) {
	var (
		wg        sync.WaitGroup
		stores    []models.Store
		books     []models.Book
		authors   []models.Author
		inventory []models.InventoryItem
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		var err error
		if stores, err = l.store.Stores(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to load stores", "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if books, err = l.store.Books(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to load books", "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if authors, err = l.store.Authors(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to load authors", "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		if inventory, err = l.store.Inventory(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to load inventory", "err", err)
		}
	}()
	wg.Wait()

	if ctx.Err() != nil {
		slog.WarnContext(ctx, "Load canceled, discarding results")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.stores = stores
	l.books = books
	l.authors = authors
	l.inventory = inventory
	l.gen.stores++
	l.gen.books++
	l.gen.authors++
	l.gen.inventory++
	slog.InfoContext(ctx, "Collections loaded",
		"stores", len(stores), "books", len(books),
		"authors", len(authors), "inventory", len(inventory))
}

// Loading reports whether the library looks unloaded: true while any of the
// four collections is empty. This is a heuristic, not an all-fetches-settled
// signal; a legitimately empty backend collection is indistinguishable from
// one that has not arrived yet, and callers must tolerate that.
func (l *Library) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.books) == 0 || len(l.authors) == 0 || len(l.stores) == 0 || len(l.inventory) == 0
}

// Books returns a copy of the base book collection.
func (l *Library) Books() []models.Book {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.books)
}

// Stores returns a copy of the base store collection.
func (l *Library) Stores() []models.Store {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.stores)
}

// Inventory returns a copy of the base inventory collection.
func (l *Library) Inventory() []models.InventoryItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.inventory)
}

// Authors returns the authors with their display names, in collection order.
func (l *Library) Authors() []AuthorInfo {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AuthorInfo, 0, len(l.authors))
	for _, a := range l.authors {
		out = append(out, AuthorInfo{Author: a, DisplayName: a.DisplayName()})
	}
	return out
}

// CurrentStore resolves a store by id, or nil if it does not exist.
func (l *Library) CurrentStore(storeID models.ID) *models.Store {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.storeIndexLocked()[storeID]; ok {
		return &s
	}
	return nil
}

// authorIndexLocked returns the id to author index, rebuilding it if the
// author collection changed. Callers must hold l.mu.
func (l *Library) authorIndexLocked() map[models.ID]AuthorInfo {
	if l.authorIdx == nil || l.authorIdxGen != l.gen.authors {
		idx := make(map[models.ID]AuthorInfo, len(l.authors))
		for _, a := range l.authors {
			idx[a.ID] = AuthorInfo{Author: a, DisplayName: a.DisplayName()}
		}
		l.authorIdx = idx
		l.authorIdxGen = l.gen.authors
	}
	return l.authorIdx
}

// storeIndexLocked returns the id to store index, rebuilding it if the store
// collection changed. Callers must hold l.mu.
func (l *Library) storeIndexLocked() map[models.ID]models.Store {
	if l.storeIdx == nil || l.storeIdxGen != l.gen.stores {
		idx := make(map[models.ID]models.Store, len(l.stores))
		for _, s := range l.stores {
			idx[s.ID] = s
		}
		l.storeIdx = idx
		l.storeIdxGen = l.gen.stores
	}
	return l.storeIdx
}

// authorNameLocked resolves a book's author display name. Callers must hold
// l.mu.
func (l *Library) authorNameLocked(authorID models.ID) string {
	if a, ok := l.authorIndexLocked()[authorID]; ok {
		return a.DisplayName
	}
	return UnknownAuthor
}
