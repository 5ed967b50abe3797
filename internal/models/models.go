// Package models defines the core data structures used throughout the application.
package models

// Author is a book author as returned by the collection store.
type Author struct {
	ID        ID     `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName returns the author's full name, first and last joined by a
// single space.
func (a *Author) DisplayName() string {
	return a.FirstName + " " + a.LastName
}

// Book is a book as returned by the collection store. AuthorID may not
// resolve to a known author; joins fall back to a placeholder label.
type Book struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	PageCount int    `json:"page_count"`
	AuthorID  ID     `json:"author_id"`
}

// Store is a physical bookstore.
type Store struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// InventoryItem is one priced listing of a book at a store. InvID is the only
// stable key for edits and deletes.
type InventoryItem struct {
	InvID   ID      `json:"invId"`
	StoreID ID      `json:"store_id"`
	BookID  ID      `json:"book_id"`
	Price   float64 `json:"price"`
}

// User is a signed-in identity. Credentials are checked by the collection
// store; the password never appears on this type.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type ctxKey int

// UserKey is the context key under which the authenticated identity travels
// through a request.
const UserKey ctxKey = iota
