package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookstand/internal/bookapi"
	"bookstand/internal/library"
	"bookstand/internal/session"
)

// newUpstream fakes the collection store with one store, two books, and a
// single admin credential pair.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/stores":
			_, _ = w.Write([]byte(`[{"id":"1","name":"Main St"}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/books":
			_, _ = w.Write([]byte(`[
				{"id":"b1","name":"Dune","page_count":412,"author_id":"a1"},
				{"id":"b2","name":"The Hobbit","page_count":310,"author_id":"a2"}
			]`))
		case r.Method == http.MethodGet && r.URL.Path == "/authors":
			_, _ = w.Write([]byte(`[
				{"id":"a1","first_name":"Frank","last_name":"Herbert"},
				{"id":"a2","first_name":"J. R. R.","last_name":"Tolkien"}
			]`))
		case r.Method == http.MethodGet && r.URL.Path == "/inventory":
			_, _ = w.Write([]byte(`[{"invId":"a","store_id":"1","book_id":"b1","price":9.99}]`))
		case r.Method == http.MethodGet && r.URL.Path == "/users":
			q := r.URL.Query()
			if q.Get("email") == "admin@shop.test" && q.Get("password") == "s3cret" {
				_, _ = w.Write([]byte(`[{"id":"u1","email":"admin@shop.test","name":"Admin"}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			// Inventory writes are accepted and dropped.
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*httptest.Server, *library.Library) {
	t.Helper()
	upstream := newUpstream(t)
	client := bookapi.NewClient(upstream.URL)
	lib := library.New(client)
	lib.Load(t.Context())
	gate, err := session.NewGate(client, session.NewMemoryStore())
	if err != nil {
		t.Fatal(err)
	}
	router := NewRouter(lib, gate, &Config{JWTSecret: "test-secret", Version: "test"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	t.Cleanup(lib.Wait)
	return srv, lib
}

// doJSON performs a request and decodes the JSON response body.
func doJSON(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp.StatusCode, decoded
}

func login(t *testing.T, baseURL string) string {
	t.Helper()
	status, body := doJSON(t, http.MethodPost, baseURL+"/api/auth/login", "", map[string]string{
		"email":    "admin@shop.test",
		"password": "s3cret",
	})
	if status != http.StatusOK {
		t.Fatalf("login failed with status %d: %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/health", "", nil)
	if status != http.StatusOK || body["status"] != "ok" {
		t.Errorf("health = %d %v", status, body)
	}
	if body["loading"] != false {
		t.Errorf("loading = %v, want false", body["loading"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, _ := newTestServer(t)
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "", map[string]string{
		"email":    "admin@shop.test",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	errObj, _ := body["error"].(map[string]any)
	if errObj["code"] != "INVALID_CREDENTIALS" {
		t.Errorf("code = %v, want INVALID_CREDENTIALS", errObj["code"])
	}

	// The rejected attempt must not have signed anyone in.
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("me after rejected login = %d, want 401", status)
	}
}

func TestBrowseEndpointsArePublic(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/books", "", nil)
	if status != http.StatusOK {
		t.Fatalf("books = %d", status)
	}
	books, _ := body["books"].([]any)
	if len(books) != 2 {
		t.Errorf("expected 2 books, got %d", len(books))
	}
	first, _ := books[0].(map[string]any)
	if first["title"] != "Dune" || first["author"] != "Frank Herbert" {
		t.Errorf("unexpected first book: %v", first)
	}
	stores, _ := first["stores"].([]any)
	if len(stores) != 1 {
		t.Fatalf("Dune should be listed in one store, got %v", first["stores"])
	}
	listing, _ := stores[0].(map[string]any)
	if listing["store_name"] != "Main St" || listing["price"] != 9.99 {
		t.Errorf("unexpected listing: %v", listing)
	}

	// A book with zero inventory keeps an empty stores list.
	second, _ := books[1].(map[string]any)
	if s, ok := second["stores"].([]any); !ok || len(s) != 0 {
		t.Errorf("expected empty stores list, got %v", second["stores"])
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/stores", "", nil)
	if status != http.StatusOK {
		t.Errorf("stores = %d", status)
	}
	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/authors", "", nil)
	if status != http.StatusOK {
		t.Errorf("authors = %d", status)
	}
}

func TestStoreBooksEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/stores/1/books", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	store, _ := body["store"].(map[string]any)
	if store["name"] != "Main St" {
		t.Errorf("store = %v", store)
	}
	books, _ := body["books"].([]any)
	if len(books) != 1 {
		t.Fatalf("expected 1 listed book, got %d", len(books))
	}
	row, _ := books[0].(map[string]any)
	if row["name"] != "Dune" || row["price"] != 9.99 || row["invId"] != "a" {
		t.Errorf("unexpected row: %v", row)
	}

	// Search that matches nothing.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/stores/1/books?search=zebra", "", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if books, _ := body["books"].([]any); len(books) != 0 {
		t.Errorf("expected no matches for zebra, got %v", books)
	}

	// Unknown store.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/stores/999/books", "", nil)
	if status != http.StatusNotFound {
		t.Errorf("unknown store = %d %v, want 404", status, body)
	}
}

func TestMutationsRequireIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	price := 10.0
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/stores/1/inventory", "", map[string]any{
		"book_id": "b2", "price": price,
	})
	if status != http.StatusUnauthorized {
		t.Fatalf("anonymous add = %d, want 401", status)
	}
	details, _ := body["details"].(map[string]any)
	if details["redirect"] != "/login" {
		t.Errorf("expected a redirect hint to /login, got %v", body)
	}

	status, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/inventory/a", "", map[string]any{"price": 1.0})
	if status != http.StatusUnauthorized {
		t.Errorf("anonymous patch = %d, want 401", status)
	}
	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/inventory/a", "", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("anonymous delete = %d, want 401", status)
	}
}

func TestInventoryLifecycle(t *testing.T) {
	srv, lib := newTestServer(t)
	token := login(t, srv.URL)

	// Validation happens before anything else.
	status, body := doJSON(t, http.MethodPost, srv.URL+"/api/stores/1/inventory", token, map[string]any{
		"book_id": "", "price": nil,
	})
	if status != http.StatusBadRequest {
		t.Fatalf("empty form = %d %v, want 400", status, body)
	}

	// Add.
	status, body = doJSON(t, http.MethodPost, srv.URL+"/api/stores/1/inventory", token, map[string]any{
		"book_id": "b2", "price": 15.5,
	})
	if status != http.StatusOK {
		t.Fatalf("add = %d %v", status, body)
	}
	item, _ := body["item"].(map[string]any)
	invID, _ := item["invId"].(string)
	if invID == "" {
		t.Fatal("add returned no invId")
	}

	// The optimistic update is visible immediately.
	status, body = doJSON(t, http.MethodGet, srv.URL+"/api/stores/1/books", "", nil)
	if status != http.StatusOK {
		t.Fatal(status)
	}
	if books, _ := body["books"].([]any); len(books) != 2 {
		t.Errorf("expected 2 listed books after add, got %d", len(books))
	}

	// Update the price.
	status, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/inventory/"+invID, token, map[string]any{"price": 18.25})
	if status != http.StatusOK {
		t.Fatalf("patch = %d", status)
	}

	// Delete.
	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/inventory/"+invID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete = %d", status)
	}
	if got := len(lib.Inventory()); got != 1 {
		t.Errorf("expected inventory back to 1 item, got %d", got)
	}

	// Unknown ids are 404s.
	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/api/inventory/"+invID, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("double delete = %d, want 404", status)
	}
}

func TestMe(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv.URL)

	status, body := doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me = %d", status)
	}
	if body["email"] != "admin@shop.test" {
		t.Errorf("me = %v", body)
	}

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/api/auth/me", "not-a-token", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("me with bad token = %d, want 401", status)
	}
}
