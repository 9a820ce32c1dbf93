package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeRunner struct {
	response string
	err      error
	prompt   string
}

func (f *fakeRunner) ExecutePrompt(ctx context.Context, agentType, rawPrompt, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	f.prompt = rawPrompt
	return f.response, f.err
}

func TestExtractParsesFields(t *testing.T) {
	runner := &fakeRunner{response: `{
		"net_profit": -50000.5,
		"umsatz": 1200000,
		"mitarbeiter": 42,
		"bilanzsumme_total": null
	}`}
	e := New(runner, nil)

	fields, err := e.Extract(context.Background(), "Jahresabschluss Text")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fields.NetProfit == nil || *fields.NetProfit != -50000.5 {
		t.Errorf("Expected net_profit -50000.5, got %v", fields.NetProfit)
	}
	if fields.Umsatz == nil || *fields.Umsatz != 1200000 {
		t.Errorf("Expected umsatz 1200000, got %v", fields.Umsatz)
	}
	if fields.Mitarbeiter == nil || *fields.Mitarbeiter != 42 {
		t.Errorf("Expected mitarbeiter 42, got %v", fields.Mitarbeiter)
	}
	if fields.BilanzsummeTotal != nil {
		t.Errorf("Explicit null must stay nil, got %v", *fields.BilanzsummeTotal)
	}
	if fields.Eigenkapital != nil {
		t.Error("Missing key must stay nil")
	}
}

func TestExtractStripsCodeFences(t *testing.T) {
	runner := &fakeRunner{response: "```json\n{\"cash\": 250000}\n```"}
	e := New(runner, nil)

	fields, err := e.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fields.Cash == nil || *fields.Cash != 250000 {
		t.Errorf("Expected cash 250000, got %v", fields.Cash)
	}
}

func TestExtractGermanNumericStrings(t *testing.T) {
	runner := &fakeRunner{response: `{
		"umsatz": "1.234.567,89",
		"schulden": "500000.25",
		"eigenkapital": "null",
		"dividende": "nicht ermittelbar"
	}`}
	e := New(runner, nil)

	fields, err := e.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fields.Umsatz == nil || *fields.Umsatz != 1234567.89 {
		t.Errorf("German format: expected 1234567.89, got %v", fields.Umsatz)
	}
	// "500000.25" reads as 50000025 under the German convention; the
	// convention wins because reports quote German-formatted figures.
	if fields.Schulden == nil || *fields.Schulden != 50000025 {
		t.Errorf("Expected 50000025, got %v", fields.Schulden)
	}
	if fields.Eigenkapital != nil {
		t.Error("String 'null' must stay nil")
	}
	if fields.Dividende != nil {
		t.Error("Unparsable value must be nulled, not raised")
	}
}

func TestExtractRepairsBrokenJSON(t *testing.T) {
	// Trailing comma; the strict parse fails, the repair pass saves it.
	runner := &fakeRunner{response: `{"net_profit": 1000,}`}
	e := New(runner, nil)

	fields, err := e.Extract(context.Background(), "text")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fields.NetProfit == nil || *fields.NetProfit != 1000 {
		t.Errorf("Expected net_profit 1000, got %v", fields.NetProfit)
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		text   string
	}{
		{"empty text", &fakeRunner{response: "{}"}, "   "},
		{"provider failure", &fakeRunner{err: errors.New("boom")}, "text"},
		{"empty response", &fakeRunner{response: "  "}, "text"},
		{"non-json response", &fakeRunner{response: "Leider kann ich das nicht."}, "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.runner, nil)
			_, err := e.Extract(context.Background(), tt.text)
			if !errors.Is(err, ErrExtraction) {
				t.Errorf("Expected ErrExtraction, got %v", err)
			}
		})
	}
}

func TestExtractTruncatesLongText(t *testing.T) {
	runner := &fakeRunner{response: "{}"}
	e := New(runner, nil)

	long := strings.Repeat("a", maxTextLen+1000)
	if _, err := e.Extract(context.Background(), long); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	body := strings.TrimPrefix(runner.prompt, UserPromptHeader)
	if len(body) != maxTextLen+len(truncationMarker) {
		t.Errorf("Expected %d chars after truncation, got %d", maxTextLen+len(truncationMarker), len(body))
	}
	if !strings.HasSuffix(body, truncationMarker) {
		t.Error("Truncated text should end with the marker")
	}
}
