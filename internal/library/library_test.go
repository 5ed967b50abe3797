package library

import (
	"context"
	"errors"
	"sync"
	"testing"

	"bookstand/internal/models"
)

// fakeStore is an in-memory CollectionStore that records writes.
type fakeStore struct {
	mu        sync.Mutex
	stores    []models.Store
	books     []models.Book
	authors   []models.Author
	inventory []models.InventoryItem

	storesErr    error
	booksErr     error
	authorsErr   error
	inventoryErr error
	writeErr     error

	creates []models.InventoryItem
	updates []models.ID
	deletes []models.ID
}

func (f *fakeStore) Stores(ctx context.Context) ([]models.Store, error) {
	return f.stores, f.storesErr
}

func (f *fakeStore) Books(ctx context.Context) ([]models.Book, error) {
	return f.books, f.booksErr
}

func (f *fakeStore) Authors(ctx context.Context) ([]models.Author, error) {
	return f.authors, f.authorsErr
}

func (f *fakeStore) Inventory(ctx context.Context) ([]models.InventoryItem, error) {
	return f.inventory, f.inventoryErr
}

func (f *fakeStore) CreateInventory(ctx context.Context, item models.InventoryItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, item)
	return f.writeErr
}

func (f *fakeStore) UpdateInventoryPrice(ctx context.Context, invID models.ID, price float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, invID)
	return f.writeErr
}

func (f *fakeStore) DeleteInventory(ctx context.Context, invID models.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, invID)
	return f.writeErr
}

// testStore returns a store populated with a small, fully linked data set.
func testStore() *fakeStore {
	return &fakeStore{
		stores: []models.Store{
			{ID: "1", Name: "Main St"},
			{ID: "2", Name: "Harbor"},
		},
		books: []models.Book{
			{ID: "b1", Name: "Dune", PageCount: 412, AuthorID: "a1"},
			{ID: "b2", Name: "The Hobbit", PageCount: 310, AuthorID: "a2"},
			{ID: "b3", Name: "Orphaned", PageCount: 99, AuthorID: "missing"},
		},
		authors: []models.Author{
			{ID: "a1", FirstName: "Frank", LastName: "Herbert"},
			{ID: "a2", FirstName: "J. R. R.", LastName: "Tolkien"},
		},
		inventory: []models.InventoryItem{
			{InvID: "a", StoreID: "1", BookID: "b1", Price: 9.99},
			{InvID: "b", StoreID: "1", BookID: "b2", Price: 14.5},
			{InvID: "c", StoreID: "2", BookID: "b2", Price: 12},
		},
	}
}

func loadedLibrary(t *testing.T, store *fakeStore) *Library {
	t.Helper()
	l := New(store)
	l.Load(t.Context())
	if l.Loading() {
		t.Fatal("library still loading after Load with populated store")
	}
	return l
}

func TestLoadPartialFailure(t *testing.T) {
	store := testStore()
	store.authorsErr = errors.New("connection refused")
	l := New(store)
	l.Load(t.Context())

	// The failed collection stays empty, the others are installed, and the
	// loading predicate keeps reporting true.
	if got := len(l.Authors()); got != 0 {
		t.Errorf("expected empty authors after fetch failure, got %d", got)
	}
	if got := len(l.Books()); got != 3 {
		t.Errorf("expected books to load despite authors failing, got %d", got)
	}
	if !l.Loading() {
		t.Error("Loading() = false, want true while a collection is empty")
	}

	// Joins degrade to the placeholder label rather than failing.
	rows := l.StoreBooks("1", "")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for _, r := range rows {
		if r.Author != UnknownAuthor {
			t.Errorf("author = %q, want %q", r.Author, UnknownAuthor)
		}
	}
}

func TestLoadCanceledDiscardsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	l := New(testStore())
	l.Load(ctx)

	if got := len(l.Books()); got != 0 {
		t.Errorf("canceled Load must discard results, got %d books", got)
	}
	if !l.Loading() {
		t.Error("Loading() = false after canceled Load")
	}
}

func TestCurrentStore(t *testing.T) {
	l := loadedLibrary(t, testStore())
	s := l.CurrentStore("2")
	if s == nil || s.Name != "Harbor" {
		t.Errorf("CurrentStore(2) = %+v, want Harbor", s)
	}
	if l.CurrentStore("999") != nil {
		t.Error("CurrentStore(999) should be nil")
	}
}

func TestAddThenRemoveRestoresCollection(t *testing.T) {
	store := testStore()
	l := loadedLibrary(t, store)
	before := l.Inventory()

	item, err := l.Add("2", "b1", 21.0)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if item.InvID.IsZero() {
		t.Fatal("Add did not assign an invId")
	}
	for _, existing := range before {
		if existing.InvID == item.InvID {
			t.Fatalf("generated invId %q collides with existing item", item.InvID)
		}
	}
	if got := len(l.Inventory()); got != len(before)+1 {
		t.Fatalf("expected %d items after add, got %d", len(before)+1, got)
	}

	if err := l.Remove(item.InvID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	after := l.Inventory()
	if len(after) != len(before) {
		t.Fatalf("expected %d items after add+remove, got %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("item %d altered by add+remove: %+v != %+v", i, before[i], after[i])
		}
	}

	l.Wait()
	if len(store.creates) != 1 || store.creates[0] != item {
		t.Errorf("expected one remote create with the full item, got %+v", store.creates)
	}
	if len(store.deletes) != 1 || store.deletes[0] != item.InvID {
		t.Errorf("expected one remote delete for %q, got %+v", item.InvID, store.deletes)
	}
}

func TestUpdatePriceTouchesOnlyTarget(t *testing.T) {
	store := testStore()
	l := loadedLibrary(t, store)
	before := l.Inventory()

	if err := l.UpdatePrice("b", 17.25); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}
	// A second update overwrites, not accumulates.
	if err := l.UpdatePrice("b", 18.0); err != nil {
		t.Fatalf("UpdatePrice failed: %v", err)
	}

	after := l.Inventory()
	if len(after) != len(before) {
		t.Fatalf("item count changed: %d != %d", len(after), len(before))
	}
	for i := range after {
		if after[i].InvID == "b" {
			if after[i].Price != 18.0 {
				t.Errorf("price = %v, want 18", after[i].Price)
			}
			if after[i].StoreID != before[i].StoreID || after[i].BookID != before[i].BookID {
				t.Errorf("non-price fields altered: %+v", after[i])
			}
			continue
		}
		if after[i] != before[i] {
			t.Errorf("sibling item altered: %+v != %+v", after[i], before[i])
		}
	}

	l.Wait()
	if len(store.updates) != 2 {
		t.Errorf("expected 2 remote updates, got %d", len(store.updates))
	}
}

func TestMutationsUnknownID(t *testing.T) {
	store := testStore()
	l := loadedLibrary(t, store)

	if err := l.Remove("nope"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Remove(nope) = %v, want ErrItemNotFound", err)
	}
	if err := l.UpdatePrice("nope", 1); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("UpdatePrice(nope) = %v, want ErrItemNotFound", err)
	}
	l.Wait()
	if len(store.updates) != 0 || len(store.deletes) != 0 {
		t.Error("no remote write may be issued for an unknown invId")
	}
}

func TestRemoteWriteFailureReported(t *testing.T) {
	store := testStore()
	store.writeErr = errors.New("upstream down")
	l := loadedLibrary(t, store)

	var mu sync.Mutex
	var reported []string
	l.OnRemoteError = func(op string, invID models.ID, err error) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, op)
	}

	if err := l.Remove("a"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	l.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != "delete" {
		t.Errorf("expected one reported delete failure, got %v", reported)
	}
	// The optimistic local state keeps the mutation; reconciliation is the
	// callback owner's call.
	if got := len(l.Inventory()); got != 2 {
		t.Errorf("expected local delete to stick, got %d items", got)
	}
}
