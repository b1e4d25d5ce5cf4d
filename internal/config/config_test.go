package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.Name != "claude" {
		t.Fatalf("backend = %q", cfg.Backend.Name)
	}
	if cfg.Backend.Timeout != 5*time.Minute {
		t.Fatalf("timeout = %v", cfg.Backend.Timeout)
	}
	if cfg.Sink.Kind != "stdout" || cfg.Sink.Verbosity != "standard" {
		t.Fatalf("sink = %+v", cfg.Sink)
	}
	if !cfg.Expect.ShouldTrigger {
		t.Fatal("expect trigger should default to true")
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("log level = %q", cfg.Logging.Level)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TRACEVAL_BACKEND", "gemini")
	t.Setenv("TRACEVAL_BACKEND_TIMEOUT", "30s")
	t.Setenv("TRACEVAL_BACKEND_ARGS", "--output-format stream-json")
	t.Setenv("TRACEVAL_SINK", "file")
	t.Setenv("TRACEVAL_SINK_PATH", "/tmp/out.ndjson")
	t.Setenv("TRACEVAL_EXPECT_TRIGGER", "false")
	t.Setenv("TRACEVAL_SECURITY_FOCUS", "true")
	t.Setenv("TRACEVAL_EXPECTED_TOOLS", "bash,edit")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend.Name != "gemini" || cfg.Backend.Timeout != 30*time.Second {
		t.Fatalf("backend = %+v", cfg.Backend)
	}
	if len(cfg.Backend.Args) != 2 || cfg.Backend.Args[0] != "--output-format" {
		t.Fatalf("args = %v", cfg.Backend.Args)
	}
	if cfg.Sink.Kind != "file" || cfg.Sink.Path != "/tmp/out.ndjson" {
		t.Fatalf("sink = %+v", cfg.Sink)
	}
	if cfg.Expect.ShouldTrigger || !cfg.Expect.SecurityFocus {
		t.Fatalf("expect = %+v", cfg.Expect)
	}
	if cfg.Expect.ExpectedTools != "bash,edit" {
		t.Fatalf("expected tools = %q", cfg.Expect.ExpectedTools)
	}
}
