package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Backend completes a prompt.
type Backend interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Ollama talks to an Ollama server's /api/generate endpoint.
type Ollama struct {
	URL         string
	Model       string
	Temperature float64
	MaxTokens   int
	Client      *http.Client
	Log         zerolog.Logger
}

// NewOllama returns a client for the server at url, or the local default
// when url is empty.
func NewOllama(url, model string, log zerolog.Logger) *Ollama {
	if url == "" {
		url = DefaultOllamaURL
	}
	return &Ollama{
		URL:         strings.TrimRight(url, "/"),
		Model:       model,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Client:      &http.Client{Timeout: 5 * time.Minute},
		Log:         log,
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Complete sends a single non-streaming generate request.
func (o *Ollama) Complete(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  o.Model,
		Prompt: system + "\n\nUser: " + prompt + "\n\nAssistant:",
		Options: generateOptions{
			Temperature: o.Temperature,
			NumPredict:  o.MaxTokens,
		},
	})
	if err != nil {
		return "", err
	}

	start := time.Now()
	var out generateResponse
	if err := o.do(ctx, http.MethodPost, "/api/generate", bytes.NewReader(body), &out); err != nil {
		return "", err
	}
	if out.Error != "" {
		return "", fmt.Errorf("ollama: %s", out.Error)
	}
	o.Log.Debug().Str("model", o.Model).Dur("took", time.Since(start)).Int("chars", len(out.Response)).Msg("completion")
	return out.Response, nil
}

// Models lists the models installed on the server.
func (o *Ollama) Models(ctx context.Context) ([]string, error) {
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := o.do(ctx, http.MethodGet, "/api/tags", nil, &out); err != nil {
		return nil, err
	}
	names := make([]string, len(out.Models))
	for i, m := range out.Models {
		names[i] = m.Name
	}
	return names, nil
}

func (o *Ollama) do(ctx context.Context, method, path string, body io.Reader, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, o.URL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama %s: %s: %s", path, resp.Status, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ollama %s: decode: %w", path, err)
	}
	return nil
}

// Ask builds a prompt from r, sends it with the system prompt and returns the
// reply together with any BASIC source extracted from it.
func Ask(ctx context.Context, b Backend, r Request) (reply, code string, err error) {
	reply, err = b.Complete(ctx, SystemPrompt, BuildPrompt(r))
	if err != nil {
		return "", "", err
	}
	return reply, ExtractBASIC(reply), nil
}
