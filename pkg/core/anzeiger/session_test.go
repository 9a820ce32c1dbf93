package anzeiger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBootstrapSequence(t *testing.T) {
	var paths []string
	var cookies []string
	var agents []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.RequestURI())
		if c, err := r.Cookie("cc"); err == nil {
			cookies = append(cookies, c.Value)
		}
		agents = append(agents, r.Header.Get("User-Agent"))
		w.Write([]byte("<html><body>seite</body></html>"))
	}))
	defer srv.Close()

	mgr := NewSessionManagerWithBase(srv.URL, nil)
	sess, body, err := mgr.Bootstrap(context.Background(), "Musterfirma GmbH")
	if err != nil {
		t.Fatalf("Bootstrap returned error: %v", err)
	}
	if sess.ID == "" {
		t.Error("Expected a session id")
	}
	if !strings.Contains(body, "seite") {
		t.Errorf("Unexpected search response body %q", body)
	}

	if len(paths) != 3 {
		t.Fatalf("Expected 3 requests, got %d: %v", len(paths), paths)
	}
	if paths[0] != "/" {
		t.Errorf("First request should hit the root, got %q", paths[0])
	}
	if paths[1] != "/pub/de/start?0" {
		t.Errorf("Second request should hit the start page, got %q", paths[1])
	}
	if !strings.Contains(paths[2], "fulltext=Musterfirma+GmbH") {
		t.Errorf("Search request missing escaped query: %q", paths[2])
	}
	if !strings.Contains(paths[2], "card-form") {
		t.Errorf("Search request missing panel path: %q", paths[2])
	}

	for i, c := range cookies {
		if c != sessionCookieSeed {
			t.Errorf("Request %d: expected cc cookie %q, got %q", i, sessionCookieSeed, c)
		}
	}
	if len(cookies) != 3 {
		t.Errorf("cc cookie should ride on every request, saw %d of 3", len(cookies))
	}
	for i, ua := range agents {
		if !strings.Contains(ua, "Chrome") {
			t.Errorf("Request %d: expected desktop user agent, got %q", i, ua)
		}
	}

	if sess.SearchURL() == "" {
		t.Error("Expected SearchURL to be recorded after bootstrap")
	}
}

func TestSessionGetTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RequestURI() == "/pub/de/start?0" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	mgr := NewSessionManagerWithBase(srv.URL, nil)
	_, _, err := mgr.Bootstrap(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected an error for a failing start page")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("Expected ErrTransport, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Errorf("Error should carry the status, got %v", err)
	}
}
