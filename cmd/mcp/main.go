// Command mcp serves the pipeline as line-delimited JSON tools
// ("search" and "analyze") over stdin/stdout, so agent hosts can call
// it as a subprocess. One request per line in, one response per line
// out.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"bundesanzeiger/pkg/core/app"
	"bundesanzeiger/pkg/core/config"
	"bundesanzeiger/pkg/core/utils"
)

type toolRequest struct {
	ID          json.RawMessage `json:"id,omitempty"`
	Tool        string          `json:"tool"`
	CompanyName string          `json:"company_name"`
}

type toolResponse struct {
	ID      json.RawMessage `json:"id,omitempty"`
	Content string          `json:"content,omitempty"`
	Data    interface{}     `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func main() {
	godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg := config.Load()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		os.Exit(1)
	}
	defer application.Close()

	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	out := json.NewEncoder(os.Stdout)

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}

		var req toolRequest
		if err := json.Unmarshal(line, &req); err != nil {
			out.Encode(toolResponse{Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}
		out.Encode(handle(ctx, application, req))
	}

	if err := in.Err(); err != nil {
		log.Error("stdin read failed", "err", err)
		os.Exit(1)
	}
}

func handle(ctx context.Context, application *app.App, req toolRequest) toolResponse {
	if req.CompanyName == "" {
		return toolResponse{ID: req.ID, Error: "company_name is required"}
	}

	switch req.Tool {
	case "search":
		result := application.Pipeline.Search(ctx, req.CompanyName)
		return toolResponse{ID: req.ID, Content: renderContent(application, utils.FormatSearchResult(result)), Data: result}
	case "analyze":
		result := application.Pipeline.Analyze(ctx, req.CompanyName)
		return toolResponse{ID: req.ID, Content: renderContent(application, utils.FormatAnalyzeResult(result)), Data: result}
	default:
		return toolResponse{ID: req.ID, Error: fmt.Sprintf("unknown tool %q", req.Tool)}
	}
}

func renderContent(application *app.App, content string) string {
	if !utils.ValidateMarkdown(content) {
		application.Log.Warn("rendered summary is not valid markdown")
	}
	return content
}
