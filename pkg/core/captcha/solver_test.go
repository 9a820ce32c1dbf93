package captcha

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer auth, got %q", got)
		}
		var req solveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		img, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			t.Fatalf("Image is not base64: %v", err)
		}
		if string(img) != "png-bytes" {
			t.Errorf("Unexpected image payload %q", img)
		}
		json.NewEncoder(w).Encode(solveResponse{Text: "AB12CD"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	token, err := c.Solve(context.Background(), []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Solve returned error: %v", err)
	}
	if token != "AB12CD" {
		t.Errorf("Expected token 'AB12CD', got %q", token)
	}
}

func TestSolveServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(solveResponse{Error: "unreadable image"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Solve(context.Background(), []byte("x"))
	if err == nil || !strings.Contains(err.Error(), "unreadable image") {
		t.Errorf("Expected the service error to surface, got %v", err)
	}
}

func TestSolveWithoutEndpoint(t *testing.T) {
	t.Setenv("CAPTCHA_SOLVER_URL", "")
	t.Setenv("CAPTCHA_SOLVER_KEY", "")

	c := NewClient("", "")
	if _, err := c.Solve(context.Background(), []byte("x")); err == nil {
		t.Error("Expected an error when no endpoint is configured")
	}
}
