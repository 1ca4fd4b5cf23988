package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAddLineSendsPayloadAndDecodesSnapshot(t *testing.T) {
	var got addPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart/add.js" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Snapshot{ItemCount: 4})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Routes{})
	snap, err := c.AddLine(context.Background(), 12345, 4, map[string]string{"Text": "AB CD"})
	if err != nil {
		t.Fatalf("AddLine: %v", err)
	}
	if snap.ItemCount != 4 {
		t.Fatalf("expected item_count 4, got %d", snap.ItemCount)
	}
	if got.ID != 12345 || got.Quantity != 4 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Properties["Text"] != "AB CD" {
		t.Fatalf("properties not forwarded: %+v", got.Properties)
	}
}

func TestChangeLineZeroQuantityIsRemoval(t *testing.T) {
	var got changePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cart/change.js" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Snapshot{ItemCount: 0})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Routes{})
	if _, err := c.ChangeLine(context.Background(), "line-1", 0); err != nil {
		t.Fatalf("ChangeLine: %v", err)
	}
	if got.ID != "line-1" || got.Quantity != 0 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestAddLineErrorDescriptionFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"description":"Nicht genug Bestand"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Routes{})
	_, err := c.AddLine(context.Background(), 1, 1, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", apiErr.Status)
	}
	if apiErr.Description != "Nicht genug Bestand" {
		t.Fatalf("unexpected description %q", apiErr.Description)
	}
}

func TestErrorFallbackMessageWhenBodyUnusable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream busted</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Routes{})
	_, err := c.ChangeLine(context.Background(), "x", 2)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Description != FallbackErrorMessage {
		t.Fatalf("expected fallback message, got %q", apiErr.Description)
	}
}

func TestErrorsFieldMapFlattened(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":{"quantity":["muss positiv sein"]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Routes{})
	_, err := c.ChangeLine(context.Background(), "x", -1)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Description != "muss positiv sein" {
		t.Fatalf("unexpected description %q", apiErr.Description)
	}
}

func TestFetchSectionsBuildsQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sections"); got != "cart-drawer-content" {
			t.Errorf("unexpected sections query %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"cart-drawer-content": "<div id=\"cart-drawer-content\"></div>",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, Routes{})
	sections, err := c.FetchSections(context.Background(), "/collections/lampen", "cart-drawer-content")
	if err != nil {
		t.Fatalf("FetchSections: %v", err)
	}
	if _, ok := sections["cart-drawer-content"]; !ok {
		t.Fatalf("missing section in result: %v", sections)
	}
}

func TestOfflineClientServesCannedData(t *testing.T) {
	c := NewClient("", Routes{})
	snap, err := c.FetchSnapshot(context.Background())
	if err != nil {
		t.Fatalf("FetchSnapshot: %v", err)
	}
	if snap.ItemCount == 0 || len(snap.Items) == 0 {
		t.Fatalf("expected canned snapshot, got %+v", snap)
	}
	removed, err := c.ChangeLine(context.Background(), snap.Items[0].Key, 0)
	if err != nil {
		t.Fatalf("ChangeLine: %v", err)
	}
	if removed.ItemCount >= snap.ItemCount {
		t.Fatalf("expected item count to drop, got %d -> %d", snap.ItemCount, removed.ItemCount)
	}
}
