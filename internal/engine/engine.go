package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agentrun/agentrun/internal/config"
	"github.com/agentrun/agentrun/internal/generator"
	"github.com/agentrun/agentrun/internal/logger"
	"github.com/agentrun/agentrun/internal/output"
	"github.com/agentrun/agentrun/internal/stringutil"
	"github.com/agentrun/agentrun/internal/template"
)

// Status is the session state progression.
type Status int

const (
	StatusPending Status = iota
	StatusRunning
	StatusFinished
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusFinished:
		return "finished"
	default:
		return "pending"
	}
}

// Record is the persisted result of one completed task. Records are
// appended to the session log and never mutated.
type Record struct {
	Task      string `json:"task"`
	Prompt    string `json:"prompt"`
	Result    any    `json:"result"`
	Timestamp string `json:"timestamp"`
}

// Engine runs one session: it loads the run configuration once and
// executes its tasks strictly in order. Each task renders a prompt,
// invokes the generator and persists a record. The first failing step
// aborts the remaining tasks.
type Engine struct {
	cfg       *config.Config
	renderer  *template.Renderer
	generator generator.Generator
	writer    *output.Writer

	sessionID string
	status    Status
	history   []Record
	durations []time.Duration
}

type options struct {
	generator generator.Generator
}

// Option configures the engine.
type Option func(*options)

// WithGenerator overrides the generator chosen from the configuration.
func WithGenerator(g generator.Generator) Option {
	return func(o *options) {
		o.generator = g
	}
}

// New loads the run configuration from the given path, validates its
// tasks and builds the renderer, the generator and the session writer.
// Any failure here is fatal; nothing is partially constructed.
func New(ctx context.Context, configPath string, opts ...Option) (*Engine, error) {
	var opt options
	for _, o := range opts {
		o(&opt)
	}

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, err
	}
	if err := config.ValidateTasks(ctx, cfg.Tasks); err != nil {
		return nil, err
	}

	renderer, err := template.NewRenderer(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}

	writer, err := output.NewWriter(ctx, cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	gen := opt.generator
	if gen == nil {
		if cfg.Generator != nil {
			gen = generator.NewHTTP(*cfg.Generator)
		} else {
			gen = generator.Echo{}
		}
	}

	return &Engine{
		cfg:       cfg,
		renderer:  renderer,
		generator: gen,
		writer:    writer,
		sessionID: uuid.NewString(),
		status:    StatusPending,
	}, nil
}

// Run executes the configured tasks in order. An empty task list logs
// a warning and returns without side effects. Errors from rendering,
// generation or persisting are not recovered; the first one aborts the
// run and surfaces to the caller.
func (e *Engine) Run(ctx context.Context) error {
	lg := logger.FromContext(ctx).With("session", e.sessionID)

	if len(e.cfg.Tasks) == 0 {
		lg.Warn("No tasks configured, exiting")
		return nil
	}

	e.status = StatusRunning
	total := len(e.cfg.Tasks)
	lg.Info("Session started", "tasks", total)

	for i, task := range e.cfg.Tasks {
		lg.Info("Executing task", "step", fmt.Sprintf("%d/%d", i+1, total), "name", task.Name)
		start := time.Now()

		prompt, err := e.renderer.Render(task.Template, e.buildContext(task))
		if err != nil {
			return fmt.Errorf("task %q: %w", task.Name, err)
		}

		result, err := e.generator.Generate(ctx, prompt)
		if err != nil {
			return fmt.Errorf("task %q: generation failed: %w", task.Name, err)
		}

		record := Record{
			Task:      task.Name,
			Prompt:    prompt,
			Result:    result,
			Timestamp: stringutil.FormatTimestamp(time.Now()),
		}
		if err := e.writer.Save(record); err != nil {
			return fmt.Errorf("task %q: %w", task.Name, err)
		}

		elapsed := time.Since(start)
		e.history = append(e.history, record)
		e.durations = append(e.durations, elapsed)
		lg.Info("Task completed", "name", task.Name, "elapsed", elapsed.Round(time.Millisecond).String())
	}

	e.status = StatusFinished
	lg.Info("Session finished")
	return nil
}

// buildContext builds the rendering context for one task. Every
// context within a session carries the same session_id.
func (e *Engine) buildContext(task config.Task) map[string]any {
	metadata := task.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"input":      task.Input,
		"metadata":   metadata,
		"session_id": e.sessionID,
	}
}

// SessionID returns the unique identifier of this session.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Status returns the current session status.
func (e *Engine) Status() Status {
	return e.status
}

// LogFile returns the path of the session log file.
func (e *Engine) LogFile() string {
	return e.writer.Path()
}

// History returns the records accumulated so far, in task order.
func (e *Engine) History() []Record {
	history := make([]Record, len(e.history))
	copy(history, e.history)
	return history
}
