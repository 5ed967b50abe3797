// Mutation entry points for the admin inventory page. Each applies an
// optimistic local update and then issues the remote write asynchronously;
// the two phases are not transactionally linked. A remote failure is reported
// through OnRemoteError so the owner can decide to retry or re-fetch, instead
// of the layer silently diverging from the backend.

package library

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"bookstand/internal/models"
	"github.com/google/uuid"
)

// ErrItemNotFound is returned when an invId resolves to no inventory item.
var ErrItemNotFound = errors.New("inventory item not found")

// writeTimeout bounds one asynchronous remote write.
const writeTimeout = 30 * time.Second

// Remove drops the matching item from the local collection and issues a
// remote delete by id. Sibling items are untouched.
func (l *Library) Remove(invID models.ID) error {
	l.mu.Lock()
	idx := l.findInventoryLocked(invID)
	if idx < 0 {
		l.mu.Unlock()
		return ErrItemNotFound
	}
	l.inventory = append(l.inventory[:idx], l.inventory[idx+1:]...)
	l.gen.inventory++
	l.mu.Unlock()

	l.remoteWrite("delete", invID, func(ctx context.Context) error {
		return l.store.DeleteInventory(ctx, invID)
	})
	return nil
}

// UpdatePrice replaces the matching item's price in place and issues a remote
// partial update with the new price. All other fields and all other items are
// untouched; a second update overwrites, not accumulates.
func (l *Library) UpdatePrice(invID models.ID, price float64) error {
	l.mu.Lock()
	idx := l.findInventoryLocked(invID)
	if idx < 0 {
		l.mu.Unlock()
		return ErrItemNotFound
	}
	l.inventory[idx].Price = price
	l.gen.inventory++
	l.mu.Unlock()

	l.remoteWrite("update", invID, func(ctx context.Context) error {
		return l.store.UpdateInventoryPrice(ctx, invID, price)
	})
	return nil
}

// Add generates a new unique invId, appends the item to the local collection,
// and issues a remote create with the full item payload. The created item is
// returned.
func (l *Library) Add(storeID, bookID models.ID, price float64) (models.InventoryItem, error) {
	if storeID.IsZero() || bookID.IsZero() {
		return models.InventoryItem{}, errors.New("store and book ids are required")
	}

	l.mu.Lock()
	invID := models.ID(uuid.NewString())
	// uuid collisions are not a practical concern, but invId uniqueness is
	// an invariant of the collection, so verify anyway.
	for l.findInventoryLocked(invID) >= 0 {
		invID = models.ID(uuid.NewString())
	}
	item := models.InventoryItem{InvID: invID, StoreID: storeID, BookID: bookID, Price: price}
	l.inventory = append(l.inventory, item)
	l.gen.inventory++
	l.mu.Unlock()

	l.remoteWrite("create", invID, func(ctx context.Context) error {
		return l.store.CreateInventory(ctx, item)
	})
	return item, nil
}

// findInventoryLocked returns the index of the item with the given invId, or
// -1. Callers must hold l.mu.
func (l *Library) findInventoryLocked(invID models.ID) int {
	for i := range l.inventory {
		if l.inventory[i].InvID == invID {
			return i
		}
	}
	return -1
}

// remoteWrite runs the remote half of a mutation in the background. The local
// update has already been applied; the UI never waits on the write.
func (l *Library) remoteWrite(op string, invID models.ID, fn func(context.Context) error) {
	l.writes.Add(1)
	go func() {
		defer l.writes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			if l.OnRemoteError != nil {
				l.OnRemoteError(op, invID, err)
				return
			}
			slog.Error("Remote inventory write failed", "op", op, "invId", invID, "err", err)
		}
	}()
}

// Wait blocks until every in-flight remote write has settled. Used on
// shutdown and in tests.
func (l *Library) Wait() {
	l.writes.Wait()
}
