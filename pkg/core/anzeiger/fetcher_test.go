package anzeiger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bundesanzeiger/pkg/models"
)

func TestExtractContent(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"publication container",
			`<html><body><div class="publication_container"> Bilanz 2022 </div></body></html>`,
			"Bilanz 2022",
		},
		{
			"fallback to publication div",
			`<html><body><div class="publication">GuV</div></body></html>`,
			"GuV",
		},
		{
			"fallback to content div",
			`<html><body><div class="content">Anhang</div></body></html>`,
			"Anhang",
		},
		{
			"fallback to body text",
			`<html><body><p>nur Fliesstext</p></body></html>`,
			"nur Fliesstext",
		},
		{
			"nothing at all",
			`<html><body></body></html>`,
			ContentUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractContent(tt.html, nil)
			if got != tt.want {
				t.Errorf("ExtractContent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractContentPrefersContainer(t *testing.T) {
	html := `<html><body>
		<div class="publication_container">richtig</div>
		<div class="content">falsch</div>
	</body></html>`
	if got := ExtractContent(html, nil); got != "richtig" {
		t.Errorf("Expected the publication container to win, got %q", got)
	}
}

func TestFetchRebootstrapsAndFollowsLink(t *testing.T) {
	var paths []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/detail") {
			w.Write([]byte(`<html><body><div class="publication_container">Jahresabschluss Text</div></body></html>`))
			return
		}
		w.Write([]byte("<html><body>start</body></html>"))
	}))
	defer srv.Close()

	sessions := NewSessionManagerWithBase(srv.URL, nil)
	gate := NewGate(&fakeSolver{solveFunc: func(context.Context, []byte) (string, error) {
		t.Fatal("No challenge expected")
		return "", nil
	}}, nil)
	fetcher := NewDocumentFetcher(sessions, gate, nil)

	record := &models.FilingRecord{Title: "Jahresabschluss", DetailLink: "detail"}
	content, err := fetcher.Fetch(context.Background(), record, "Musterfirma GmbH")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if content != "Jahresabschluss Text" {
		t.Errorf("Unexpected content %q", content)
	}

	// Full bootstrap (3 requests) plus the detail fetch.
	if len(paths) != 4 {
		t.Fatalf("Expected 4 requests, got %d: %v", len(paths), paths)
	}
	if !strings.HasSuffix(paths[3], "/detail") {
		t.Errorf("Last request should hit the detail link, got %q", paths[3])
	}
}

func TestFetchRequiresDetailLink(t *testing.T) {
	fetcher := NewDocumentFetcher(NewSessionManagerWithBase("http://unused.invalid", nil), NewGate(nil, nil), nil)

	_, err := fetcher.Fetch(context.Background(), &models.FilingRecord{Title: "ohne Link"}, "q")
	if err == nil {
		t.Fatal("Expected an error for a record without a detail link")
	}
}
