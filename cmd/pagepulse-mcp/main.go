// pagepulse-mcp exposes the PagePulse HTTP API as MCP tools over stdio, so
// agent clients can audit pages without speaking HTTP themselves.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	apiURL := os.Getenv("PAGEPULSE_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	// Optional: forwarded to the narrative summarizer (BYOK).
	llmKey := os.Getenv("PAGEPULSE_LLM_API_KEY")

	s := server.NewMCPServer(
		"pagepulse",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	auditTool := mcp.NewTool("audit_page",
		mcp.WithDescription("Run a page-speed audit of a URL: category scores, lab metrics, field data and improvement opportunities."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to audit"),
		),
	)
	s.AddTool(auditTool, handleGet(apiURL, "/api/audit", nil))

	structureTool := mcp.NewTool("page_structure",
		mcp.WithDescription("Count the structural elements of a page (sections, carousels, testimonials, libraries, media, ad slots) and score its heaviness."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to analyse"),
		),
		mcp.WithString("mode",
			mcp.Description("Census mode: 'rendered-dom' (default, runs the page in a browser) or 'static' (served markup only)"),
			mcp.Enum("rendered-dom", "static"),
		),
	)
	s.AddTool(structureTool, handleGet(apiURL, "/api/asp-recommendations", []string{"mode"}))

	fullTool := mcp.NewTool("full_audit",
		mcp.WithDescription("Run the page-speed audit and the structural census together. Either half may fail independently; the other is still returned."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the page to audit"),
		),
		mcp.WithString("mode",
			mcp.Description("Census mode: 'rendered-dom' (default) or 'static'"),
			mcp.Enum("rendered-dom", "static"),
		),
	)
	s.AddTool(fullTool, handleGet(apiURL, "/api/full-audit", []string{"mode"}))

	summaryTool := mcp.NewTool("summarize_audit",
		mcp.WithDescription("Turn a previously obtained audit JSON into a short plain-language summary with suggested SEO keywords. Requires PAGEPULSE_LLM_API_KEY."),
		mcp.WithString("audit_json",
			mcp.Required(),
			mcp.Description("The audit result to summarize, as a JSON object string"),
		),
	)
	s.AddTool(summaryTool, handleSummarize(apiURL, llmKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// handleGet proxies one GET endpoint, forwarding the url argument plus any
// named optional string arguments as query parameters.
func handleGet(apiURL, path string, extraParams []string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		q := url.Values{}
		q.Set("url", target)
		for _, name := range extraParams {
			if v := request.GetString(name, ""); v != "" {
				q.Set(name, v)
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+path+"?"+q.Encode(), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}

		body, status, err := do(client, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		if status >= 400 {
			return mcp.NewToolResultError(apiErrorMessage(body, status)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func handleSummarize(apiURL, llmKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 180 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if llmKey == "" {
			return mcp.NewToolResultError("PAGEPULSE_LLM_API_KEY is not set"), nil
		}

		auditJSON, err := request.RequireString("audit_json")
		if err != nil {
			return mcp.NewToolResultError("audit_json is required"), nil
		}
		var audit map[string]any
		if err := json.Unmarshal([]byte(auditJSON), &audit); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("audit_json is not a JSON object: %v", err)), nil
		}

		payload, err := json.Marshal(map[string]any{"apiKey": llmKey, "audit": audit})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to marshal request: %v", err)), nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+"/api/recommendations", bytes.NewReader(payload))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		req.Header.Set("Content-Type", "application/json")

		body, status, err := do(client, req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		if status >= 400 {
			return mcp.NewToolResultError(apiErrorMessage(body, status)), nil
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

func do(client *http.Client, req *http.Request) ([]byte, int, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return body, resp.StatusCode, nil
}

// apiErrorMessage digs the structured error out of a failed API response.
func apiErrorMessage(body []byte, status int) string {
	var apiErr struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		if apiErr.Code != "" {
			return fmt.Sprintf("[%s] %s", apiErr.Code, apiErr.Error)
		}
		return apiErr.Error
	}
	return fmt.Sprintf("API returned HTTP %d", status)
}
