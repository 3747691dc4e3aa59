// Package poller runs configured commands on a schedule and feeds their
// JSON output into the synchronization engine. Each poller owns one
// section; the command's stdout must be a single JSON object whose keys
// become the section's fields.
package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/template"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

const (
	// DefaultInterval is used when a poller does not configure one.
	DefaultInterval = 30 * time.Second

	// DefaultTimeout bounds a single command run.
	DefaultTimeout = 10 * time.Second
)

// CommandRunner executes one command and returns its stdout. The seam
// exists so tests can substitute canned output for real processes.
type CommandRunner interface {
	Run(ctx context.Context, name string, args []string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes the command and returns stdout. A non-zero exit includes
// the captured stderr in the error.
func (ExecRunner) Run(ctx context.Context, name string, args []string) ([]byte, error) {
	output, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			return nil, fmt.Errorf("%s exited with code %d: %s", name, exitErr.ExitCode(), stderr)
		}
		return nil, err
	}
	return output, nil
}

// Updater applies one section's polled fields. *engine.Engine
// satisfies it.
type Updater interface {
	Update(section string, partial map[string]any, priority engine.Priority) bool
}

// Config declares one periodic command feeding a section.
type Config struct {
	Section  string
	Command  string
	Args     []string
	Interval time.Duration
	Priority engine.Priority
	Timeout  time.Duration
}

// Poller periodically runs one command and applies its output.
type Poller struct {
	cfg     Config
	updater Updater
	runner  CommandRunner
	tmpl    *template.Engine
	baseCtx map[string]any
}

// New creates a poller. Zero Interval and Timeout receive defaults; a
// nil runner executes real commands.
func New(cfg Config, updater Updater, runner CommandRunner) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Poller{
		cfg:     cfg,
		updater: updater,
		runner:  runner,
		tmpl:    template.New(),
		baseCtx: template.BaseContext(),
	}
}

// Section returns the section this poller feeds.
func (p *Poller) Section() string {
	return p.cfg.Section
}

// Run polls immediately, then on every tick until the context is done.
func (p *Poller) Run(ctx context.Context) {
	p.poll(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

// poll runs the command once and applies its output. Failures are
// logged and the section keeps its previous state until the next tick.
func (p *Poller) poll(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	args, err := p.expandArgs()
	if err != nil {
		logging.Error("Poller", err, "Skipping %s: bad argument template", p.cfg.Section)
		return
	}

	output, err := p.runner.Run(runCtx, p.cfg.Command, args)
	if err != nil {
		logging.Warn("Poller", "Command for %s failed: %v", p.cfg.Section, err)
		return
	}

	fields, err := parseOutput(output)
	if err != nil {
		logging.Warn("Poller", "Output for %s: %v", p.cfg.Section, err)
		return
	}
	if len(fields) == 0 {
		return
	}

	changed := p.updater.Update(p.cfg.Section, fields, p.cfg.Priority)
	logging.Debug("Poller", "Polled %s: %d fields, changed=%t", p.cfg.Section, len(fields), changed)
}

// expandArgs renders the configured argument templates against the base
// context.
func (p *Poller) expandArgs() ([]string, error) {
	replaced, err := p.tmpl.Replace(p.cfg.Args, p.baseCtx)
	if err != nil {
		return nil, err
	}
	args, ok := replaced.([]string)
	if !ok {
		return nil, fmt.Errorf("expanded arguments are not strings")
	}
	return args, nil
}

// parseOutput decodes the command's stdout. Empty output means the
// command has nothing to report this tick.
func parseOutput(output []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("expected a JSON object: %w", err)
	}
	return fields, nil
}
