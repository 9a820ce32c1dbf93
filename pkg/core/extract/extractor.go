// Package extract sends isolated report text to an LLM and parses the
// structured financial answer.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"bundesanzeiger/pkg/core/utils"
	"bundesanzeiger/pkg/models"
)

// ErrExtraction marks a failed LLM call or an unparsable response. The
// caller treats it like "all fields null" for cache admission.
var ErrExtraction = errors.New("extraction failed")

// maxTextLen bounds the report text sent to the model, approximating a
// 100K-token context at 4 chars per token. A hard cut, not a summary.
const maxTextLen = 400000

const truncationMarker = "..."

// agentType keys the provider/model override in config/models.yaml.
const agentType = "extractor"

// PromptRunner executes one prompt against a configured agent. It is
// satisfied by agent.Manager.
type PromptRunner interface {
	ExecutePrompt(ctx context.Context, agentType, rawPrompt, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

// Extractor turns report text into FinancialFields via one chat-style
// LLM call with a JSON-object response hint.
type Extractor struct {
	mgr PromptRunner
	log *slog.Logger
}

func New(mgr PromptRunner, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{mgr: mgr, log: log}
}

// Extract runs the extraction contract against text. It returns
// ErrExtraction when the provider call fails or the response is not
// JSON in any salvageable form; individual unparsable fields merely go
// null.
func (e *Extractor) Extract(ctx context.Context, text string) (*models.FinancialFields, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty report text", ErrExtraction)
	}

	if len(text) > maxTextLen {
		e.log.Info("truncating report text", "from", len(text), "to", maxTextLen)
		text = text[:maxTextLen] + truncationMarker
	}

	options := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}

	raw, err := e.mgr.ExecutePrompt(ctx, agentType, UserPromptHeader+text, SystemPrompt, options)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: empty response", ErrExtraction)
	}

	fields, err := e.parseResponse(raw)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// parseResponse decodes the model's answer. Code fences are stripped
// first; a strict parse is followed by JSON repair and finally a
// lenient Hjson pass before giving up.
func (e *Extractor) parseResponse(raw string) (*models.FinancialFields, error) {
	clean := stripCodeFences(raw)

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(clean), &payload); err != nil {
		repaired, repErr := utils.RepairJSON(clean)
		if repErr == nil {
			if err := json.Unmarshal([]byte(repaired), &payload); err == nil {
				return e.coerceFields(payload), nil
			}
		}
		lenient, hjErr := utils.ParseHJSON(clean)
		if hjErr == nil {
			if err := json.Unmarshal([]byte(lenient), &payload); err == nil {
				return e.coerceFields(payload), nil
			}
		}
		return nil, fmt.Errorf("%w: response is not JSON: %v", ErrExtraction, err)
	}

	return e.coerceFields(payload), nil
}

// coerceFields maps the raw JSON object onto the extraction contract.
// Missing keys and literal nulls stay nil; numeric strings are parsed
// German-format first; values that still fail are logged and nulled,
// never raised.
func (e *Extractor) coerceFields(payload map[string]interface{}) *models.FinancialFields {
	fields := &models.FinancialFields{}

	for _, name := range models.FieldNames {
		value, ok := payload[name]
		if !ok || value == nil {
			continue
		}
		slot := fields.Field(name)

		switch v := value.(type) {
		case float64:
			*slot = ptr(v)
		case json.Number:
			if f, err := v.Float64(); err == nil {
				*slot = ptr(f)
			}
		case string:
			if strings.EqualFold(strings.TrimSpace(v), "null") || strings.TrimSpace(v) == "" {
				continue
			}
			if f, ok := parseNumericString(v); ok {
				*slot = ptr(f)
			} else {
				e.log.Warn("could not coerce field value", "field", name, "value", v)
			}
		default:
			e.log.Warn("unexpected field type", "field", name, "value", fmt.Sprintf("%v", value))
		}
	}

	return fields
}

// parseNumericString parses a number in German convention first
// (period as thousands separator, comma as decimal point), then falls
// back to plain parsing.
func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "€")
	s = strings.TrimSpace(s)

	german := strings.ReplaceAll(s, ".", "")
	german = strings.ReplaceAll(german, ",", ".")
	if f, err := strconv.ParseFloat(german, 64); err == nil {
		return f, true
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	return 0, false
}

// stripCodeFences removes surrounding markdown code fences from an LLM
// answer, tolerating a ```json language tag.
func stripCodeFences(s string) string {
	clean := strings.TrimSpace(s)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

func ptr(f float64) *float64 {
	return &f
}
