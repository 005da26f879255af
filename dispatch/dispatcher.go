package dispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/dirtree"
	"github.com/brettbedarf/dirtree/config"
	"github.com/brettbedarf/dirtree/internal/util"
	"github.com/brettbedarf/dirtree/tree"
	"github.com/google/uuid"
)

// MaxLineSize is the longest command line Run accepts.
const MaxLineSize = 1024 * 1024

// Stats counts what a Dispatcher has done so far.
type Stats struct {
	Commands int // non-empty lines seen
	Created  int
	Deleted  int
	Moved    int
	Listed   int
	Failed   int // commands that reported a failure line
	Ignored  int // unrecognized verbs
}

// Dispatcher owns the root of one tree and applies commands to it, writing
// echoes, listings and failure reports to its sink.
//
// NOTE: Dispatcher is not safe for concurrent use; commands are applied
// strictly one at a time.
type Dispatcher struct {
	cfg    *config.Config
	root   *tree.Node
	out    io.Writer
	runID  uuid.UUID
	stats  Stats
	logger util.Logger
}

// New creates a Dispatcher with an empty tree that writes to out.
func New(cfg *config.Config, out io.Writer) *Dispatcher {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	runID := uuid.New()
	return &Dispatcher{
		cfg:    cfg,
		root:   tree.NewRoot(),
		out:    out,
		runID:  runID,
		logger: util.GetLogger("Dispatcher").With().Str("run", runID.String()).Logger(),
	}
}

// Root returns the tree the dispatcher mutates.
func (d *Dispatcher) Root() *tree.Node {
	return d.root
}

// RunID identifies this dispatcher in logs.
func (d *Dispatcher) RunID() uuid.UUID {
	return d.runID
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}

// Run feeds every line of r to [Dispatcher.Dispatch] in order. It stops at
// the first sink or read error, or when ctx is cancelled between lines.
func (d *Dispatcher) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			d.logger.Warn().Err(err).Int("line", lineNo).Msg("Run cancelled")
			return err
		}
		lineNo++
		if err := d.Dispatch(scanner.Text()); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read commands: %w", err)
	}

	d.logger.Info().
		Int("lines", lineNo).
		Int("commands", d.stats.Commands).
		Int("created", d.stats.Created).
		Int("deleted", d.stats.Deleted).
		Int("moved", d.stats.Moved).
		Int("listed", d.stats.Listed).
		Int("failed", d.stats.Failed).
		Int("ignored", d.stats.Ignored).
		Msg("Run complete")
	return nil
}

// Dispatch parses and applies one command line. Empty lines are ignored.
// Every other line is echoed before it runs, recognized or not.
//
// Tree failures such as deleting a missing path are reported as a line on
// the sink and do not return an error; only sink write failures do.
func (d *Dispatcher) Dispatch(line string) error {
	cmd, ok := dirtree.ParseCommand(line)
	if !ok {
		return nil
	}
	d.stats.Commands++
	if err := d.println(cmd.Echo()); err != nil {
		return err
	}

	arity, known := cmd.Verb.Arity()
	if !known {
		d.stats.Ignored++
		d.logger.Debug().Str("verb", string(cmd.Verb)).Msg("Ignoring unknown verb")
		return nil
	}
	if len(cmd.Operands) < arity {
		d.stats.Failed++
		d.logger.Debug().Str("verb", string(cmd.Verb)).Int("operands", len(cmd.Operands)).Msg("Missing operand")
		return d.println(fmt.Sprintf("Cannot %s - missing operand", strings.ToLower(string(cmd.Verb))))
	}
	d.logger.Debug().Str("verb", string(cmd.Verb)).Strs("operands", cmd.Operands).Msg("Dispatching")

	switch cmd.Verb {
	case dirtree.VerbCreate:
		d.root.Create(d.split(cmd.Operands[0]))
		d.stats.Created++
	case dirtree.VerbDelete:
		removed, err := d.root.Delete(d.split(cmd.Operands[0]))
		if err != nil {
			return d.report(cmd, err)
		}
		if removed != nil {
			d.stats.Deleted++
		}
	case dirtree.VerbMove:
		if err := d.root.Move(d.split(cmd.Operands[0]), d.split(cmd.Operands[1])); err != nil {
			return d.report(cmd, err)
		}
		d.stats.Moved++
	case dirtree.VerbList:
		d.stats.Listed++
		return d.root.List(d.out)
	}
	return nil
}

func (d *Dispatcher) split(raw string) tree.Path {
	return tree.SplitPath(raw, d.cfg.KeepEmptySegments)
}

// report turns a tree failure into its informational line.
func (d *Dispatcher) report(cmd dirtree.Command, err error) error {
	var pe *tree.PathError
	if !errors.As(err, &pe) {
		return err
	}
	d.stats.Failed++
	d.logger.Debug().Err(err).Str("verb", string(cmd.Verb)).Msg("Command failed")

	switch {
	case errors.Is(err, tree.ErrNotFound):
		return d.println(fmt.Sprintf("Cannot delete %s - does not exist", pe.Path))
	case errors.Is(err, tree.ErrExists):
		return d.println(fmt.Sprintf("Cannot move %s to %s - %s already exists", cmd.Operands[0], cmd.Operands[1], pe.Path))
	default:
		return d.println(fmt.Sprintf("Cannot move %s to %s - %v", cmd.Operands[0], cmd.Operands[1], pe.Err))
	}
}

func (d *Dispatcher) println(line string) error {
	if _, err := fmt.Fprintln(d.out, line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
