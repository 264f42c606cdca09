// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/httputil"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/internal/schema"
	"github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"
)

// systemPromptTmpl instructs the model to fill the field schema from the
// supplied page text and emit nothing but JSON.
var systemPromptTmpl = template.Must(template.New("system").Parse(`You are an institution profiling system. Extract structured facts about one institution from the provided web content.

Emit a single JSON object whose keys come only from this list:
{{range .Fields}}- {{.Name}}{{if .Note}} ({{.Note}}){{end}}
{{end}}
Rules:
- Omit any field the content does not support. Never guess and never emit placeholders like "unknown" or "N/A".
- Use plain strings for text fields, numbers for counts and amounts, arrays for list fields.
- "type" must be one of: university, hospital, bank, general.
- Do not include any text outside the JSON object.`))

// promptField is one schema row rendered into the system prompt.
type promptField struct {
	Name string
	Note string
}

// systemPrompt renders the schema for the institution type: specialized
// fields of other types are left out so the model cannot fill them.
func systemPrompt(instType types.InstitutionType) string {
	var rows []promptField
	for _, f := range schema.Fields() {
		if !f.AppliesTo(instType) {
			continue
		}
		row := promptField{Name: f.Name}
		if f.Class == schema.ClassSpecialized {
			row.Note = "specialized"
		}
		rows = append(rows, row)
	}

	var buf bytes.Buffer
	if err := systemPromptTmpl.Execute(&buf, struct{ Fields []promptField }{rows}); err != nil {
		// The template is static; execution cannot fail on this data.
		return ""
	}
	return buf.String()
}

func userPrompt(prepared string) string {
	return "Web content about the institution:\n\n" + prepared
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test
// substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// claudeCostPerMTok maps model prefixes to (input, output) USD per
// million tokens, for the benchmark's cost accounting.
var claudeCostPerMTok = map[string][2]float64{
	"claude-3-5-haiku":  {0.80, 4.00},
	"claude-3-5-sonnet": {3.00, 15.00},
	"claude-sonnet-4":   {3.00, 15.00},
}

// ClaudeBackend calls the Claude Messages API.
type ClaudeBackend struct {
	APIKey string
	Client *http.Client
}

// Name returns the backend identifier.
func (c *ClaudeBackend) Name() string { return "claude" }

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
	Usage   claudeUsage     `json:"usage"`
}

// claudeContent is a content block in the response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// claudeUsage carries token accounting.
type claudeUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Complete sends one system+user exchange and returns the text reply with
// token usage and estimated cost.
func (c *ClaudeBackend) Complete(ctx context.Context, system, user string, cfg types.ExtractConfig) (Completion, error) {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	reqBody := claudeRequest{
		Model:       cfg.Model,
		MaxTokens:   maxTokens,
		System:      system,
		Temperature: cfg.Temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: user},
		},
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return Completion{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return Completion{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return Completion{}, fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Completion{}, fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return Completion{}, fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		return Completion{
			Text:         block.Text,
			InputTokens:  cResp.Usage.InputTokens,
			OutputTokens: cResp.Usage.OutputTokens,
			CostUSD:      estimateCost(cfg.Model, cResp.Usage),
		}, nil
	}
	return Completion{}, fmt.Errorf("no text content in Claude API response")
}

// estimateCost converts token usage to USD with the per-model table;
// unknown models cost zero rather than guessing.
func estimateCost(model string, usage claudeUsage) float64 {
	for prefix, rates := range claudeCostPerMTok {
		if strings.HasPrefix(model, prefix) {
			return float64(usage.InputTokens)*rates[0]/1e6 +
				float64(usage.OutputTokens)*rates[1]/1e6
		}
	}
	return 0
}
