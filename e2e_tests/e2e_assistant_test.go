package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"trs80/pkg/cli"
	"trs80/pkg/host"
	"trs80/pkg/machine"
)

// TestAssistantRepairsProgram runs a broken program, asks a fake Ollama
// server about it and runs the listing it sends back.
func TestAssistantRepairsProgram(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		prompt = req.Prompt
		json.NewEncoder(w).Encode(map[string]string{
			"response": "Line 20 divides by zero. Use B instead:\n```BASIC\n15 B=2\n20 PRINT A/B\n```\n",
		})
	}))
	defer srv.Close()

	cfg, err := cli.ParseArgs("test", []string{
		"-storage", filepath.Join(t.TempDir(), "shelf"),
		"-ollama", srv.URL,
		"-l", "warn",
	})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	out := new(strings.Builder)
	s, err := host.New(cfg, io.Discard, machine.WithEcho(out))
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	m := s.Machine

	m.SubmitLine("10 A=8")
	m.SubmitLine("20 PRINT A/0")
	m.SubmitLine("RUN")
	m.Run(context.Background())
	if m.Err() == nil {
		t.Fatalf("expected the division to fail")
	}

	_, code, err := s.Ask(context.Background(), s.Request("Why does my program stop?"))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	for _, want := range []string{"Why does my program stop?", "20 PRINT A/0", "Last Error:", "runtime error"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt sent to the model is missing %q", want)
		}
	}

	if _, err := s.ApplyCode(code); err != nil {
		t.Fatalf("ApplyCode: %v", err)
	}
	out.Reset()
	m.SubmitLine("RUN")
	m.Run(context.Background())
	if out.String() != "4\n" {
		t.Errorf("repaired program printed %q", out.String())
	}
}
