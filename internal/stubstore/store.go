// Package stubstore serves a small JSON-file backed rendition of the
// upstream bookstore REST API, for local development without the real
// service.
package stubstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"bookstand/internal/models"
)

// ErrNotFound is returned when a mutation targets an unknown record.
var ErrNotFound = errors.New("record not found")

// userRecord is a user row as stored on disk. The password never leaves
// the stub; lookups strip it before responding.
type userRecord struct {
	models.User
	Password string `json:"password"`
}

// dataset is the on-disk layout of the data file.
type dataset struct {
	Stores    []models.Store         `json:"stores"`
	Books     []models.Book          `json:"books"`
	Authors   []models.Author        `json:"authors"`
	Inventory []models.InventoryItem `json:"inventory"`
	Users     []userRecord           `json:"users"`
}

// DB holds the collections in memory and persists every mutation back to
// the data file.
type DB struct {
	path string

	mu   sync.RWMutex
	data dataset
}

// Open loads the data file.
func Open(path string) (*DB, error) {
	d := &DB{path: path}
	if err := d.Reload(); err != nil {
		return nil, err
	}
	return d, nil
}

// Reload replaces the in-memory collections with the file's content.
func (d *DB) Reload() error {
	raw, err := os.ReadFile(d.path)
	if err != nil {
		return fmt.Errorf("failed to read data file: %w", err)
	}
	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse data file: %w", err)
	}
	d.mu.Lock()
	d.data = data
	d.mu.Unlock()
	return nil
}

// saveLocked writes the dataset back to the data file. Writes go through a
// temporary file so a crash never leaves a half-written file behind.
func (d *DB) saveLocked() error {
	raw, err := json.MarshalIndent(&d.data, "", "  ")
	if err != nil {
		return err
	}
	tmp := d.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.path)
}

// Watch reloads the collections whenever the data file is edited
// externally. Reloading after our own save is a harmless no-op.
func (d *DB) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory rather than the file so rename-based saves and
	// editors that replace the file keep being observed.
	if err := w.Add(filepath.Dir(d.path)); err != nil {
		_ = w.Close()
		return err
	}
	name := filepath.Base(d.path)
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
					if err := d.Reload(); err != nil {
						slog.ErrorContext(ctx, "Failed to reload data file", "err", err)
						continue
					}
					slog.InfoContext(ctx, "Reloaded data file", "path", d.path)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.ErrorContext(ctx, "Watcher error", "err", err)
			}
		}
	}()
	return nil
}

func (d *DB) Stores() []models.Store {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.data.Stores)
}

func (d *DB) Books() []models.Book {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.data.Books)
}

func (d *DB) Authors() []models.Author {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.data.Authors)
}

func (d *DB) Inventory() []models.InventoryItem {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.data.Inventory)
}

// Users returns every user row with the password stripped. When both email
// and password are non-empty only exactly matching rows are returned.
func (d *DB) Users(email, password string) []models.User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]models.User, 0, len(d.data.Users))
	for _, u := range d.data.Users {
		if email != "" || password != "" {
			if u.Email != email || u.Password != password {
				continue
			}
		}
		out = append(out, u.User)
	}
	return out
}

// AddInventory appends an item, generating an invId when the caller did not
// supply one, and persists the collection.
func (d *DB) AddInventory(item models.InventoryItem) (models.InventoryItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if item.InvID.IsZero() {
		item.InvID = models.ID(uuid.NewString())
	}
	d.data.Inventory = append(d.data.Inventory, item)
	if err := d.saveLocked(); err != nil {
		return models.InventoryItem{}, err
	}
	return item, nil
}

// UpdateInventoryPrice replaces one item's price and persists the collection.
func (d *DB) UpdateInventoryPrice(invID models.ID, price float64) (models.InventoryItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.data.Inventory {
		if d.data.Inventory[i].InvID == invID {
			d.data.Inventory[i].Price = price
			if err := d.saveLocked(); err != nil {
				return models.InventoryItem{}, err
			}
			return d.data.Inventory[i], nil
		}
	}
	return models.InventoryItem{}, ErrNotFound
}

// DeleteInventory drops one item and persists the collection.
func (d *DB) DeleteInventory(invID models.ID) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.data.Inventory {
		if d.data.Inventory[i].InvID == invID {
			d.data.Inventory = slices.Delete(d.data.Inventory, i, i+1)
			return d.saveLocked()
		}
	}
	return ErrNotFound
}
