package server

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/HendryAvila/intent-mcp/internal/cloud"
	"github.com/HendryAvila/intent-mcp/internal/config"
	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap/zaptest"
)

func localConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"a.md": "---\nid: a\nstatus: draft\nrelations:\n  - target: b\n    type: depends_on\n---\n# Checkout\n",
		"b.md": "---\nid: b\nstatus: shipped\nuserGoal: Payments\n---\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	cfg := config.Default()
	cfg.Dir = dir
	return cfg
}

// call sends one JSON-RPC message and returns the encoded response.
func call(t *testing.T, s *server.MCPServer, msg string) string {
	t.Helper()
	resp := s.HandleMessage(context.Background(), json.RawMessage(msg))
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(data)
}

func initialize(t *testing.T, s *server.MCPServer) {
	t.Helper()
	call(t, s, `{"jsonrpc":"2.0","id":0,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`)
}

func TestNew_RegistersEverything(t *testing.T) {
	s, cleanup, err := New(localConfig(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()
	initialize(t, s)

	toolsResp := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	for _, name := range []string{
		"intent_list_workspaces", "intent_list", "intent_get",
		"intent_search", "intent_dependencies", "intent_analyze",
	} {
		if !strings.Contains(toolsResp, `"`+name+`"`) {
			t.Errorf("tool %s not registered", name)
		}
	}

	promptsResp := call(t, s, `{"jsonrpc":"2.0","id":2,"method":"prompts/list"}`)
	for _, name := range []string{"intent-review", "intent-plan"} {
		if !strings.Contains(promptsResp, `"`+name+`"`) {
			t.Errorf("prompt %s not registered", name)
		}
	}

	templatesResp := call(t, s, `{"jsonrpc":"2.0","id":3,"method":"resources/templates/list"}`)
	if !strings.Contains(templatesResp, "intents://workspaces/{workspace}/analysis") {
		t.Errorf("analysis template not registered: %s", templatesResp)
	}
}

func TestNew_AnalyzeLocalWorkspace(t *testing.T) {
	s, cleanup, err := New(localConfig(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer cleanup()
	initialize(t, s)

	resp := call(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"intent_analyze","arguments":{"kind":"critical-path"}}}`)
	if !strings.Contains(resp, `\"length\": 2`) {
		t.Errorf("unexpected analysis response: %s", resp)
	}
}

func TestNewSource(t *testing.T) {
	log := zaptest.NewLogger(t)

	src, cleanup, err := NewSource(localConfig(t), log)
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	cleanup()
	if _, ok := src.(*intents.FileStore); !ok {
		t.Errorf("local source is %T, want *intents.FileStore", src)
	}

	cfg := config.Default()
	cfg.Mode = config.ModeCloud
	cfg.API.URL = "https://intents.example.com"
	src, cleanup, err = NewSource(cfg, log)
	if err != nil {
		t.Fatalf("cloud: %v", err)
	}
	cleanup()
	if _, ok := src.(*cloud.Client); !ok {
		t.Errorf("cloud source is %T, want *cloud.Client", src)
	}

	cfg.Mode = "hybrid"
	if _, _, err := NewSource(cfg, log); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestServerInstructions(t *testing.T) {
	if got := serverInstructions(config.ModeCloud, ""); !strings.Contains(got, "always pass `workspace`") {
		t.Errorf("missing workspace hint:\n%s", got)
	}
	if got := serverInstructions(config.ModeLocal, "default"); !strings.Contains(got, `use "default"`) {
		t.Errorf("missing default workspace:\n%s", got)
	}
}
