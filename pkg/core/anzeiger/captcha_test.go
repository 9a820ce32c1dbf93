package anzeiger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type fakeSolver struct {
	solveFunc func(ctx context.Context, image []byte) (string, error)
}

func (s *fakeSolver) Solve(ctx context.Context, image []byte) (string, error) {
	return s.solveFunc(ctx, image)
}

const clearPage = `<html><body><div class="publication_container">Jahresabschluss Inhalt</div></body></html>`

const challengePage = `
<html><body>
<form action="suche"><input name="fulltext"/></form>
<div class="captcha_wrapper"><img src="captcha.png"/></div>
<form action="confirm"><input name="solution"/></form>
</body></html>`

func TestIsChallenged(t *testing.T) {
	if IsChallenged(clearPage) {
		t.Error("Clear page should not be challenged")
	}
	if !IsChallenged(challengePage) {
		t.Error("Challenge page should be challenged")
	}
	if IsChallenged(`<html><body><p>weder noch</p></body></html>`) {
		t.Error("Page without the widget should not be challenged")
	}
}

func TestEnsureClearPassthrough(t *testing.T) {
	gate := NewGate(&fakeSolver{solveFunc: func(context.Context, []byte) (string, error) {
		t.Fatal("Solver must not be called for a clear page")
		return "", nil
	}}, nil)

	got, err := gate.EnsureClear(context.Background(), &Session{}, clearPage)
	if err != nil {
		t.Fatalf("EnsureClear returned error: %v", err)
	}
	if got != clearPage {
		t.Error("Clear page should pass through unchanged")
	}

	plain := `<html><body><p>kein Inhalt</p></body></html>`
	got, err = gate.EnsureClear(context.Background(), &Session{}, plain)
	if err != nil {
		t.Fatalf("EnsureClear returned error: %v", err)
	}
	if got != plain {
		t.Error("Page without content or challenge should pass through")
	}
}

func TestEnsureClearSolvesChallenge(t *testing.T) {
	var gotSolution string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "captcha.png"):
			w.Write([]byte("png-bytes"))
		case strings.HasSuffix(r.URL.Path, "confirm"):
			r.ParseForm()
			gotSolution = r.PostFormValue("solution")
			if r.PostFormValue("confirm-button") != "OK" {
				t.Errorf("Expected confirm-button=OK, got %q", r.PostFormValue("confirm-button"))
			}
			w.Write([]byte(clearPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := &Session{
		client:    srv.Client(),
		baseURL:   srv.URL,
		searchURL: srv.URL + "/pub/de/start?0-2",
	}

	var solvedImage []byte
	gate := NewGate(&fakeSolver{solveFunc: func(_ context.Context, image []byte) (string, error) {
		solvedImage = image
		return "AB12CD", nil
	}}, nil)

	got, err := gate.EnsureClear(context.Background(), sess, challengePage)
	if err != nil {
		t.Fatalf("EnsureClear returned error: %v", err)
	}
	if string(solvedImage) != "png-bytes" {
		t.Errorf("Solver received wrong image bytes: %q", solvedImage)
	}
	if gotSolution != "AB12CD" {
		t.Errorf("Expected solution 'AB12CD' to be posted, got %q", gotSolution)
	}
	if !strings.Contains(got, "Jahresabschluss Inhalt") {
		t.Errorf("Expected the cleared page, got %q", got)
	}
}

func TestEnsureClearRepeatedChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "captcha.png"):
			w.Write([]byte("png-bytes"))
		case strings.HasSuffix(r.URL.Path, "confirm"):
			// Wrong token: the site answers with a fresh challenge.
			w.Write([]byte(challengePage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	sess := &Session{
		client:    srv.Client(),
		baseURL:   srv.URL,
		searchURL: srv.URL + "/pub/de/start?0-2",
	}
	gate := NewGate(&fakeSolver{solveFunc: func(context.Context, []byte) (string, error) {
		return "WRONG", nil
	}}, nil)

	_, err := gate.EnsureClear(context.Background(), sess, challengePage)
	if !errors.Is(err, ErrCaptchaUnsolved) {
		t.Errorf("Expected ErrCaptchaUnsolved after a repeated challenge, got %v", err)
	}
}

func TestEnsureClearSolverFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	sess := &Session{
		client:    srv.Client(),
		baseURL:   srv.URL,
		searchURL: srv.URL + "/pub/de/start?0-2",
	}
	gate := NewGate(&fakeSolver{solveFunc: func(context.Context, []byte) (string, error) {
		return "", errors.New("service down")
	}}, nil)

	_, err := gate.EnsureClear(context.Background(), sess, challengePage)
	if !errors.Is(err, ErrCaptchaUnsolved) {
		t.Errorf("Expected ErrCaptchaUnsolved when the solver fails, got %v", err)
	}
}
