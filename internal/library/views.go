// Derived views over the base collections. Views are pure functions of the
// collections plus their parameters: they hold no state of their own and are
// recomputed from scratch (not incrementally patched) whenever an input
// changes. Memoization is keyed on the exact inputs each view consults.

package library

import (
	"slices"
	"strconv"
	"strings"

	"bookstand/internal/models"
)

// StoreBook is a book annotated with its listing in one store. Price and
// InvID are set only in store-scoped views.
type StoreBook struct {
	models.Book
	Author string    `json:"author"`
	Price  *float64  `json:"price,omitempty"`
	InvID  models.ID `json:"invId,omitempty"`
}

// searchFields enumerates the searchable fields of a row. Keeping this an
// explicit list (rather than reflecting over the struct) keeps the search
// contract stable under schema changes. Numeric fields are stringified before
// matching.
func (r *StoreBook) searchFields() []string {
	fields := []string{
		r.InvID.String(),
		r.ID.String(),
		r.Name,
		strconv.Itoa(r.PageCount),
		r.AuthorID.String(),
		r.Author,
	}
	if r.Price != nil {
		fields = append(fields, formatPrice(*r.Price))
	}
	return fields
}

// matches reports whether any searchable field contains the lowercased term.
func (r *StoreBook) matches(lowerTerm string) bool {
	for _, f := range r.searchFields() {
		if strings.Contains(strings.ToLower(f), lowerTerm) {
			return true
		}
	}
	return false
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// StoreListing is one store carrying a book, with its price there.
type StoreListing struct {
	StoreName string  `json:"store_name"`
	Price     float64 `json:"price"`
}

// BookWithStores is a book annotated with every store that lists it. A book
// with zero inventory rows keeps an empty Stores list; it is never omitted.
type BookWithStores struct {
	Title  string         `json:"title"`
	Author string         `json:"author"`
	Stores []StoreListing `json:"stores"`
}

type storeBooksMemo struct {
	valid   bool
	storeID models.ID
	search  string
	gen     generations
	rows    []StoreBook
}

type bookStoresMemo struct {
	valid bool
	gen   generations
	rows  []BookWithStores
}

// cloneStoreBooks copies rows so callers cannot reach the memoized slice.
// Price is re-pointed at a fresh value; a plain slices.Clone would hand out
// the memo's own pointer.
func cloneStoreBooks(rows []StoreBook) []StoreBook {
	out := slices.Clone(rows)
	for i := range out {
		if out[i].Price != nil {
			p := *out[i].Price
			out[i].Price = &p
		}
	}
	return out
}

// cloneBooksWithStores copies rows including each row's listings, so writes
// through a returned row never touch the memoized backing arrays.
func cloneBooksWithStores(rows []BookWithStores) []BookWithStores {
	out := slices.Clone(rows)
	for i := range out {
		out[i].Stores = slices.Clone(out[i].Stores)
	}
	return out
}

// StoreBooks returns the store-scoped, search-filtered book view.
//
// With a zero storeID it returns every book with no price annotation and no
// filtering. Otherwise it keeps only books referenced by at least one
// inventory row of that store, attaching price and invId from the first
// matching row, then applies the search filter: rows survive when the
// case-insensitive term is a substring of any searchable field, including the
// resolved author display name. Store and book ids compare by their
// string-normalized value, since the backend emits them as either strings or
// numbers.
func (l *Library) StoreBooks(storeID models.ID, search string) []StoreBook {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := &l.storeBooksMemo
	if m.valid && m.storeID == storeID && m.search == search &&
		m.gen.books == l.gen.books && m.gen.authors == l.gen.authors && m.gen.inventory == l.gen.inventory {
		return cloneStoreBooks(m.rows)
	}

	rows := l.computeStoreBooksLocked(storeID, search)
	*m = storeBooksMemo{valid: true, storeID: storeID, search: search, gen: l.gen, rows: rows}
	return cloneStoreBooks(rows)
}

func (l *Library) computeStoreBooksLocked(storeID models.ID, search string) []StoreBook {
	rows := make([]StoreBook, 0, len(l.books))
	if storeID.IsZero() {
		for _, b := range l.books {
			rows = append(rows, StoreBook{Book: b, Author: l.authorNameLocked(b.AuthorID)})
		}
		return rows
	}

	var storeInv []models.InventoryItem
	for _, item := range l.inventory {
		if item.StoreID == storeID {
			storeInv = append(storeInv, item)
		}
	}

	for _, b := range l.books {
		// First matching row wins; duplicate inventory rows for the same
		// book are not deduplicated in the base collection.
		var match *models.InventoryItem
		for i := range storeInv {
			if storeInv[i].BookID == b.ID {
				match = &storeInv[i]
				break
			}
		}
		if match == nil {
			continue
		}
		price := match.Price
		rows = append(rows, StoreBook{
			Book:   b,
			Author: l.authorNameLocked(b.AuthorID),
			Price:  &price,
			InvID:  match.InvID,
		})
	}

	term := strings.TrimSpace(search)
	if term == "" {
		return rows
	}
	lower := strings.ToLower(term)
	filtered := rows[:0]
	for i := range rows {
		if rows[i].matches(lower) {
			filtered = append(filtered, rows[i])
		}
	}
	return filtered
}

// BooksWithStores returns every book with its title, resolved author name,
// and the store/price pair of every inventory row referencing it.
func (l *Library) BooksWithStores() []BookWithStores {
	l.mu.Lock()
	defer l.mu.Unlock()

	m := &l.bookStoresMemo
	if m.valid && m.gen == l.gen {
		return cloneBooksWithStores(m.rows)
	}

	storeIdx := l.storeIndexLocked()
	rows := make([]BookWithStores, 0, len(l.books))
	for _, b := range l.books {
		listings := make([]StoreListing, 0)
		for _, item := range l.inventory {
			if item.BookID != b.ID {
				continue
			}
			name := UnknownStore
			if s, ok := storeIdx[item.StoreID]; ok {
				name = s.Name
			}
			listings = append(listings, StoreListing{StoreName: name, Price: item.Price})
		}
		rows = append(rows, BookWithStores{
			Title:  b.Name,
			Author: l.authorNameLocked(b.AuthorID),
			Stores: listings,
		})
	}

	*m = bookStoresMemo{valid: true, gen: l.gen, rows: rows}
	return cloneBooksWithStores(rows)
}
