// Package intent maps a free-form user question onto a pipeline
// operation via Gemini function calling, so "wie steht es um die
// Deutsche Bahn?" resolves to a company lookup.
package intent

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	parserModel  = "gemini-2.0-flash"
	lookupTool   = "get_company_info"
	systemPrompt = "You resolve user questions about German companies to structured lookups. " +
		"Always call " + lookupTool + " with the exact legal company name mentioned in the question."
)

// Intent is the parsed outcome of a question.
type Intent struct {
	CompanyName string
}

// Parser extracts lookup intents from natural-language questions.
type Parser struct {
	client *genai.Client
}

// NewParser builds a parser against the Gemini API. The key is taken
// from GEMINI_API_KEY unless given explicitly.
func NewParser(ctx context.Context, apiKey string) (*Parser, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %v", err)
	}
	return &Parser{client: client}, nil
}

// Close releases the underlying API client.
func (p *Parser) Close() error {
	return p.client.Close()
}

// Parse forces the model through the lookup tool and returns the
// company name it selected.
func (p *Parser) Parse(ctx context.Context, question string) (*Intent, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}

	model := p.client.GenerativeModel(parserModel)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.Tools = []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        lookupTool,
			Description: "Look up the statutory filings of a German company by its name.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"company_name": {
						Type:        genai.TypeString,
						Description: "The company name as mentioned in the question, including its legal form if given.",
					},
				},
				Required: []string{"company_name"},
			},
		}},
	}}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{lookupTool},
		},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		return nil, fmt.Errorf("intent call failed: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty intent response")
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		call, ok := part.(genai.FunctionCall)
		if !ok || call.Name != lookupTool {
			continue
		}
		name, _ := call.Args["company_name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("intent call returned no company name")
		}
		return &Intent{CompanyName: name}, nil
	}
	return nil, fmt.Errorf("no company lookup in intent response")
}
