package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/crimson-sun/traceval/internal/analyze"
	"github.com/crimson-sun/traceval/internal/config"
	"github.com/crimson-sun/traceval/internal/logging"
	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/normalize"
	"github.com/crimson-sun/traceval/internal/report"
	"github.com/crimson-sun/traceval/internal/report/file"
	"github.com/crimson-sun/traceval/internal/report/stdout"
	"github.com/crimson-sun/traceval/internal/report/webhook"
	"github.com/crimson-sun/traceval/internal/security"
	"github.com/crimson-sun/traceval/internal/trace"
	"github.com/crimson-sun/traceval/internal/trigger"

	// Register normalizer implementations.
	_ "github.com/crimson-sun/traceval/internal/normalize/claude"
	_ "github.com/crimson-sun/traceval/internal/normalize/codex"
	_ "github.com/crimson-sun/traceval/internal/normalize/generic"
	_ "github.com/crimson-sun/traceval/internal/normalize/gemini"
	_ "github.com/crimson-sun/traceval/internal/normalize/opencode"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.Init(cfg.Sink.Kind == "stdout", logging.ParseLevel(cfg.Logging.Level))

	// Resolve normalizer.
	ctor, err := normalize.Get(cfg.Backend.Name)
	if err != nil {
		log.Fatalf("failed to get normalizer: %v (known: %v)", err, normalize.Backends())
	}
	norm := ctor()

	// Resolve sink.
	sink, err := buildSink(cfg.Sink)
	if err != nil {
		log.Fatalf("failed to create sink: %v", err)
	}
	defer sink.Close()

	// Read the captured trace.
	raw, err := readTrace(cfg.TracePath)
	if err != nil {
		log.Fatalf("failed to read trace: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Warn("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	slog.Info("evaluating trace", "backend", cfg.Backend.Name, "bytes", len(raw))

	events := norm.Normalize(trace.Parse(raw))
	rep := analyze.Analyze(events)
	expectation := model.Expectation{
		ShouldTrigger: cfg.Expect.ShouldTrigger,
		ExpectedTools: cfg.Expect.ExpectedTools,
		Category:      cfg.Expect.Category,
		SecurityFocus: cfg.Expect.SecurityFocus,
	}
	verdict := trigger.Validate(events, expectation)

	result := model.CaseResult{
		RunID:       uuid.NewString(),
		Backend:     cfg.Backend.Name,
		Expectation: expectation,
		Report:      rep,
		Trigger:     verdict,
		Passed:      verdict.Triggered == expectation.ShouldTrigger,
	}
	if expectation.SecurityFocus {
		sec := security.Evaluate(events, rep.Commands, nil)
		result.Security = &sec
	}

	if err := sink.Write(ctx, result); err != nil {
		log.Fatalf("failed to write result: %v", err)
	}
	slog.Info("evaluation complete",
		"passed", result.Passed,
		"efficiency", result.Report.EfficiencyScore,
		"events", result.Report.EventCount)
}

func buildSink(cfg config.SinkConfig) (report.Sink, error) {
	verbosity := report.ParseVerbosity(cfg.Verbosity)
	switch cfg.Kind {
	case "file":
		return file.New(cfg.Path, verbosity)
	case "webhook":
		return webhook.New(cfg.URL, verbosity), nil
	default:
		return stdout.New(verbosity, cfg.Pretty), nil
	}
}

func readTrace(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}
