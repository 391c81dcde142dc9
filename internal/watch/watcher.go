// Package watch runs a command on an interval and redraws its output,
// optionally highlighting what changed since the previous run.
package watch

import (
	"context"
	"math"
	"time"

	"github.com/Iron-Ham/diffwatch/internal/change"
	"github.com/Iron-Ham/diffwatch/internal/errors"
	"github.com/Iron-Ham/diffwatch/internal/highlight"
	"github.com/Iron-Ham/diffwatch/internal/logging"
	"github.com/Iron-Ham/diffwatch/internal/render"
	"github.com/Iron-Ham/diffwatch/internal/runner"
)

// State is the lifecycle state of a Watcher.
type State int

const (
	// StateRunning means iterations continue.
	StateRunning State = iota
	// StateTerminated means the command could not be launched; no further
	// iterations run.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Renderer draws a frame. *render.Renderer implements it.
type Renderer interface {
	Render(f render.Frame) error
}

// Options configures a Watcher.
type Options struct {
	// Command is the shell command string, passed through unaltered.
	Command string
	// Interval is the configured interval in seconds.
	Interval float64
	// Differences enables highlighting of changed bytes.
	Differences bool
}

// Watcher is the refresh loop. It owns the last displayed output and the
// last highlighted view; both are replaced at most once per iteration from
// the single goroutine calling Run or Step.
type Watcher struct {
	opts        Options
	runner      runner.Runner
	highlighter *highlight.Highlighter
	renderer    Renderer
	logger      *logging.Logger

	// sleep waits between iterations; replaced in tests.
	sleep func(ctx context.Context, d time.Duration)

	displayed  string
	diffed     string
	state      State
	iterations int
}

// New creates a Watcher. A nil logger discards diagnostics.
func New(opts Options, r runner.Runner, h *highlight.Highlighter, out Renderer, logger *logging.Logger) *Watcher {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Watcher{
		opts:        opts,
		runner:      r,
		highlighter: h,
		renderer:    out,
		logger:      logger.WithCommand(opts.Command),
		sleep:       sleepContext,
		state:       StateRunning,
	}
}

// maxSleepMillis is the largest whole-millisecond count a time.Duration holds.
const maxSleepMillis = int64(math.MaxInt64 / time.Millisecond)

// SleepDuration converts an interval in seconds to the sleep between runs.
// Precision below one millisecond is discarded. Values too large for a
// time.Duration saturate at the maximum; negative values and NaN sleep zero.
func SleepDuration(seconds float64) time.Duration {
	ms := seconds * 1000
	switch {
	case !(ms > 0):
		return 0
	case ms >= float64(maxSleepMillis):
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(int64(ms)) * time.Millisecond
}

// Interval returns the sleep between iterations.
func (w *Watcher) Interval() time.Duration {
	return SleepDuration(w.opts.Interval)
}

// State returns the current lifecycle state.
func (w *Watcher) State() State {
	return w.state
}

// Displayed returns the text of the last displayed output.
func (w *Watcher) Displayed() string {
	return w.displayed
}

// Diffed returns the view drawn by the last iteration.
func (w *Watcher) Diffed() string {
	return w.diffed
}

// Iterations returns the number of completed iterations.
func (w *Watcher) Iterations() int {
	return w.iterations
}

// Run iterates until the command cannot be launched, in which case the
// launch error is returned, or until ctx is canceled, which returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("watch started", "interval_ms", w.Interval().Milliseconds(), "differences", w.opts.Differences)

	for {
		if ctx.Err() != nil {
			w.logger.Info("watch stopped", "iterations", w.iterations)
			return nil
		}

		if err := w.Step(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info("watch stopped", "iterations", w.iterations)
				return nil
			}
			return err
		}

		w.sleep(ctx, w.Interval())
	}
}

// Step runs one iteration: run the command, recompute the view if the output
// changed, and draw it. Only a launch failure is returned; it moves the
// Watcher to StateTerminated.
func (w *Watcher) Step(ctx context.Context) error {
	if w.state == StateTerminated {
		return errors.NewValidationError("watcher is terminated").WithField("state").WithValue(w.state)
	}

	raw, err := w.runner.Run(ctx, w.opts.Command)
	if err != nil {
		if errors.IsFatal(err) {
			w.state = StateTerminated
			w.logError("command failed to launch", err)
			return err
		}
		// Non-fatal runner errors are shown as empty output.
		w.logError("command run failed", err)
		raw = nil
	}

	if change.Changed(raw, w.displayed) {
		w.update(raw)
	}

	if err := w.renderer.Render(render.Frame{
		Interval: w.opts.Interval,
		Command:  w.opts.Command,
		Body:     w.diffed,
	}); err != nil {
		w.logger.Warn("render failed", "error", err.Error())
	}

	w.iterations++
	return nil
}

// update recomputes the view and the displayed text for new output.
func (w *Watcher) update(raw []byte) {
	if w.opts.Differences {
		res := w.highlighter.Diff(w.displayed, raw)
		if res.Err != nil {
			w.logError("highlighted output dropped", res.Err)
		}
		if res.Dropped > 0 {
			w.logger.Debug("changed bytes dropped from highlight", "dropped", res.Dropped)
		}
		w.logger.Debug("output changed", "changed_bytes", res.Changed, "bytes", len(raw))
		w.diffed = res.Text
	}

	text, err := w.highlighter.Decode(raw)
	if err != nil {
		w.logError("output dropped", err)
	}
	w.displayed = text
	if !w.opts.Differences {
		w.diffed = text
	}
}

// logError logs err at the level matching its severity.
func (w *Watcher) logError(msg string, err error) {
	severity := errors.GetSeverity(err)
	args := []any{"error", err.Error(), "severity", severity.String()}

	switch severity {
	case errors.SeverityDebug:
		w.logger.Debug(msg, args...)
	case errors.SeverityInfo:
		w.logger.Info(msg, args...)
	case errors.SeverityWarning:
		w.logger.Warn(msg, args...)
	default:
		w.logger.Error(msg, args...)
	}
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
