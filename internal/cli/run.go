package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/verity/internal/compiler"
	"github.com/roach88/verity/internal/engine"
	"github.com/roach88/verity/internal/logic"
	"github.com/roach88/verity/internal/store"
	"github.com/roach88/verity/internal/world"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database       string
	Script         string
	Session        string
	Fixpoint       bool
	MaxTransitions int

	// SessionIDs overrides the session id generator (for testing).
	// If nil, --session or UUIDv7 ids are used.
	SessionIDs engine.SessionIDGenerator
}

// Script is a YAML list of fact reports played in order.
type Script struct {
	Facts []ScriptFact `yaml:"facts"`
}

// ScriptFact is one scripted report.
type ScriptFact struct {
	Report string `yaml:"report"`
	Value  *bool  `yaml:"value"`
}

// RunStep is the outcome of one scripted report.
type RunStep struct {
	Fact        string `json:"fact"`
	Value       bool   `json:"value"`
	From        int    `json:"from"`
	To          int    `json:"to"`
	NodeCreated bool   `json:"node_created"`
	Satisfied   bool   `json:"satisfied"`
	Won         bool   `json:"won"`
	Changes     []Note `json:"changes,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Note is one value change delivered to an entity listener.
type Note struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RunResult holds the outcome of a scripted session.
type RunResult struct {
	Session     string          `json:"session"`
	World       string          `json:"world"`
	Steps       []RunStep       `json:"steps"`
	NodeCount   int             `json:"node_count"`
	CurrentNode int             `json:"current_node"`
	Won         bool            `json:"won"`
	Fingerprint string          `json:"fingerprint"`
	Final       map[string]bool `json:"final"`
	Failed      int             `json:"failed"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <world>",
		Short: "Play a script of fact reports against a world",
		Long: `Build a world on a fresh engine and play a YAML script of fact reports.

The script is read from --script, or from stdin when it is omitted or "-":

  facts:
    - report: Door.IsLocked
      value: false
    - report: Door.IsOpen
      value: true

With --db, every engine event is journalled to a SQLite database so the
session can be inspected with "trace" and verified with "replay".

Exit codes:
  0 - All reports applied
  1 - One or more reports failed (transition quota or oscillation)
  2 - Command error (world not found, bad script, database error)

Examples:
  verity run ./worlds/door --script play.yaml
  verity run ./worlds/door --script play.yaml --db ./verity.db
  verity run ./worlds/door --fixpoint --max-transitions 50 < play.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorld(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")
	cmd.Flags().StringVar(&opts.Script, "script", "", `YAML script of fact reports ("-" for stdin)`)
	cmd.Flags().StringVar(&opts.Session, "session", "", "fixed session id (default: UUIDv7)")
	cmd.Flags().BoolVar(&opts.Fixpoint, "fixpoint", false, "repeat propagation sweeps until the state settles")
	cmd.Flags().IntVar(&opts.MaxTransitions, "max-transitions", engine.DefaultMaxTransitions, "transition quota per report")

	return cmd
}

func runWorld(opts *RunOptions, path string, cmd *cobra.Command) error {
	if opts.MaxTransitions < 1 {
		return NewExitError(ExitCommandError, "--max-transitions must be positive")
	}

	script, err := readScript(opts.Script, cmd.InOrStdin())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read script", err)
	}

	slog.Info("loading world", "path", path)
	spec, err := loadWorld(path)
	if err != nil {
		return loadExitError(err)
	}
	hash, err := compiler.WorldHash(spec)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash world", err)
	}

	engineOpts := []engine.Option{
		engine.WithLogger(slog.Default()),
		engine.WithMaxTransitions(opts.MaxTransitions),
	}
	if opts.Fixpoint {
		engineOpts = append(engineOpts, engine.WithFixpoint())
	}
	switch {
	case opts.SessionIDs != nil:
		engineOpts = append(engineOpts, engine.WithSessionIDs(opts.SessionIDs))
	case opts.Session != "":
		engineOpts = append(engineOpts, engine.WithSessionIDs(engine.NewFixedGenerator(opts.Session)))
	}

	var journal *store.Journal
	if opts.Database != "" {
		slog.Info("opening journal", "path", opts.Database)
		journal, err = store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := journal.Close(); closeErr != nil {
				slog.Error("error closing database", "error", closeErr)
			}
		}()
		engineOpts = append(engineOpts, engine.WithListener(journal))
	}

	w, err := world.Build(spec, engineOpts...)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to build world", err)
	}
	eng := w.Engine

	ctx, cancel := signalContext(cmd)
	defer cancel()

	if journal != nil {
		if err := journal.BeginSession(ctx, store.SessionInfo{
			ID:             eng.Session(),
			World:          spec.Name,
			WorldHash:      hash,
			Fixpoint:       opts.Fixpoint,
			MaxTransitions: opts.MaxTransitions,
		}); err != nil {
			return WrapExitError(ExitCommandError, "failed to begin session", err)
		}
	}

	result := RunResult{Session: eng.Session(), World: spec.Name, Steps: []RunStep{}}

	var pending []Note
	w.ListenAll(func(name string, value logic.Truth) {
		pending = append(pending, Note{Name: name, Value: value.String()})
	})

	driver := engine.NewDriver(eng, engine.WithResultHandler(func(f engine.Fact, r engine.Report, err error) {
		step := RunStep{
			Fact:        f.Name,
			Value:       f.Value,
			From:        r.From,
			To:          r.To,
			NodeCreated: r.NodeCreated,
			Satisfied:   r.Satisfied,
			Won:         r.Won,
			Changes:     pending,
		}
		if err != nil {
			step.Error = err.Error()
			result.Failed++
		}
		pending = nil
		result.Steps = append(result.Steps, step)
	}))
	for _, f := range script.Facts {
		driver.Enqueue(f.Report, *f.Value)
	}
	driver.Stop()

	slog.Info("session starting", "session", eng.Session(), "world", spec.Name, "facts", len(script.Facts))
	if err := driver.Run(ctx); err != nil {
		return WrapExitError(ExitCommandError, "session interrupted", err)
	}

	result.NodeCount = eng.NodeCount()
	result.CurrentNode = eng.CurrentNode()
	result.Won = eng.Won()
	result.Fingerprint = eng.Fingerprint()
	result.Final = eng.Current().Snapshot()

	if journal != nil {
		if err := journal.EndSession(ctx, eng.Session(), store.SessionResult{
			Fingerprint: result.Fingerprint,
			Node:        result.CurrentNode,
			NodeCount:   result.NodeCount,
			Won:         result.Won,
		}); err != nil {
			return WrapExitError(ExitCommandError, "failed to end session", err)
		}
		if err := journal.Err(); err != nil {
			return WrapExitError(ExitCommandError, "journal write failed", err)
		}
	}
	slog.Info("session finished", "session", eng.Session(), "nodes", result.NodeCount, "won", result.Won)

	return outputRun(opts, cmd, result)
}

// signalContext returns the command's context, cancelled on SIGINT/SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// readScript parses a script from path, or from stdin for "" and "-".
func readScript(path string, stdin io.Reader) (*Script, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var script Script
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&script); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, f := range script.Facts {
		if f.Report == "" {
			return nil, fmt.Errorf("facts[%d]: report is required", i)
		}
		if f.Value == nil {
			return nil, fmt.Errorf("facts[%d]: value is required", i)
		}
	}
	return &script, nil
}

func outputRun(opts *RunOptions, cmd *cobra.Command, result RunResult) error {
	var exitErr error
	if result.Failed > 0 {
		exitErr = NewExitError(ExitFailure, fmt.Sprintf("%d report(s) failed", result.Failed))
	}

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		resp := CLIResponse{Status: "ok", Data: result}
		if result.Failed > 0 {
			resp.Status = "error"
			resp.Error = &CLIError{Code: "E_REPORT_FAILED", Message: fmt.Sprintf("%d report(s) failed", result.Failed)}
		}
		if err := formatter.Respond(resp); err != nil {
			return err
		}
		return exitErr
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Session %s on world %s\n", result.Session, result.World)
	for i, step := range result.Steps {
		created := ""
		if step.NodeCreated {
			created = " (new)"
		}
		fmt.Fprintf(w, "  [%d] %s=%t  node %d → %d%s\n", i+1, step.Fact, step.Value, step.From, step.To, created)
		for _, n := range step.Changes {
			fmt.Fprintf(w, "      %s is now %s\n", n.Name, n.Value)
		}
		if step.Error != "" {
			fmt.Fprintf(w, "      error: %s\n", step.Error)
		}
		if step.Won {
			fmt.Fprintln(w, "      ★ goals satisfied")
		}
	}
	fmt.Fprintf(w, "Nodes: %d, current: %d, won: %t\n", result.NodeCount, result.CurrentNode, result.Won)
	if opts.Verbose {
		fmt.Fprintf(w, "Fingerprint: %s\n", result.Fingerprint)
	}
	return exitErr
}
