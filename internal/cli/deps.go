// Package cli provides the Cobra command tree for cdkforge. This file
// defines Dependencies, the composition root that wires the domain packages
// together for one invocation.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/cdkforge/cdkforge/internal/awsprofile"
	"github.com/cdkforge/cdkforge/internal/cli/wizard"
	"github.com/cdkforge/cdkforge/internal/config"
	"github.com/cdkforge/cdkforge/internal/scaffold"
	"github.com/cdkforge/cdkforge/internal/ui"
	"github.com/cdkforge/cdkforge/internal/update"
	"github.com/cdkforge/cdkforge/pkg/resilience"
)

// tracerName is the instrumentation scope of cdkforge spans.
const tracerName = "github.com/cdkforge/cdkforge"

// Dependencies holds the services used by the commands. It is the only
// place concrete implementations are chosen; tests replace fields.
type Dependencies struct {
	Config   *config.Config
	Logger   *slog.Logger
	Tracer   trace.Tracer
	AWS      *awsprofile.Resolver
	Headless *ui.HeadlessManager
	Theme    *ui.Theme

	// Tools runs version control and package managers. nil runs real
	// processes.
	Tools scaffold.Tools

	// Prompt asks the wizard questions.
	Prompt func([]wizard.Question) (*wizard.Result, error)

	// NewChecker builds the release checker for the version command.
	NewChecker func(cfg config.UpdateConfig, logger *slog.Logger) update.Checker

	Getenv     func(string) string
	Getwd      func() (string, error)
	Executable func() (string, error)
}

// newDependencies loads the configuration and builds the default services.
// An explicit configPath must exist; the default path may be absent.
func newDependencies(configPath string, verbose bool, stderr io.Writer) (*Dependencies, error) {
	bootstrap := newLogger(verbose, config.DefaultLogLevel, config.DefaultLogFormat, stderr)

	cfg, err := loadConfig(config.NewLoader(bootstrap), configPath)
	if err != nil {
		return nil, err
	}

	logger := newLogger(verbose, cfg.Log.Level, cfg.Log.Format, stderr)

	return &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Tracer:     otel.Tracer(tracerName),
		AWS:        awsprofile.NewResolver(logger),
		Headless:   ui.NewHeadlessManager(),
		Theme:      ui.NewTheme(),
		Prompt:     wizard.Run,
		NewChecker: newReleaseChecker,
		Getenv:     os.Getenv,
		Getwd:      os.Getwd,
		Executable: os.Executable,
	}, nil
}

func loadConfig(loader *config.Loader, path string) (*config.Config, error) {
	if path != "" {
		return loader.LoadFile(path)
	}
	defaultPath, err := config.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("locate config: %w", err)
	}
	return loader.Load(defaultPath)
}

// newLogger returns a stderr logger when verbose is set or level is debug.
// Otherwise diagnostics are discarded and only user-facing output is shown.
func newLogger(verbose bool, level, format string, w io.Writer) *slog.Logger {
	if !verbose && level != "debug" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// newReleaseChecker builds an update.Checker over a resilience client.
func newReleaseChecker(cfg config.UpdateConfig, logger *slog.Logger) update.Checker {
	client := resilience.NewClient(
		resilience.WithLogger(logger),
		resilience.WithTracer(otel.Tracer(tracerName)),
		resilience.WithCircuitBreaker(releaseBreakerSettings(logger)),
	)
	return update.NewChecker(cfg.ReleasesURL, client, &resilience.RetryOptions{
		MaxRetries: resilience.Int(cfg.MaxRetries),
	}, logger)
}

// releaseBreakerSettings opens the breaker after one failed check, retries
// already having run inside that check. Later checks through the same
// checker fail fast for a minute.
func releaseBreakerSettings(logger *slog.Logger) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        "releases",
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 1
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Debug("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}
}
