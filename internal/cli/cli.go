// Package cli implements the gamepulse batch commands: building sentiment
// series, extracting scoring plays, analyzing games and fetching comments.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	service "github.com/okian/gamepulse/internal/app"
	"github.com/okian/gamepulse/internal/config"
	"github.com/okian/gamepulse/pkg/logger"
)

const logFilePermission = 0o600

// ErrUsage reports a command line that names no known command or has the
// wrong arguments.
var ErrUsage = errors.New("usage")

// Env is what a command runs against.
type Env struct {
	Config  *config.Config
	Service *service.Service
	Stdout  io.Writer
	Log     logger.Logger
}

type command struct {
	name string
	run  func(ctx context.Context, env *Env, args []string) error
}

var commands = []command{
	{name: "analyze", run: analyze},
	{name: "series", run: series},
	{name: "extract", run: extract},
	{name: "summary", run: summary},
	{name: "fetch", run: fetch},
}

// Run dispatches args[0] to its command.
func Run(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		ShowHelp(env.Stdout)
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			started := time.Now()
			err := c.run(ctx, env, args[1:])
			env.Log.Debug(ctx, "command finished",
				logger.String("command", c.name),
				logger.Duration("took", time.Since(started)),
				logger.Bool("ok", err == nil),
			)
			return err
		}
	}
	return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
}

// SetupLogging initializes the global logger on stderr and, when logFile is
// set, appends to that file as well. The returned func closes the file.
func SetupLogging(cfg *config.Config, logFile string) (func() error, error) {
	out := io.Writer(os.Stderr)
	closeFn := func() error { return nil }
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, file)
		closeFn = file.Close
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(out)); err != nil {
		_ = closeFn()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	return closeFn, nil
}

// ShowHelp prints usage information.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `gamepulse
=========

Crowd sentiment over a game, compared with score predictions.

Usage:
  gamepulse [-log file] <command> [arguments]

Commands:
  analyze [export.json]
        Analyze one export against the scoring plays, or every export in
        the store when no file is given. Prints a summary of the run.
  series -records file [-feed file -game n] [-key name]
        Build the windowed sentiment series from labelled records. With a
        feed and game index the series is mapped onto game time. Saves the
        export under -key, or prints it.
  extract [live_scores.json] [scoring_plays.json]
        Extract the scoring play of every scoring drive from a
        play-by-play feed.
  summary [scoring_plays.json]
        Print each game with its final score and scoring plays.
  fetch -post id [-out file]
        Collect every comment of a discussion thread.
  help
        Show this help message.

Configuration comes from GAMEPULSE_* environment variables and the YAML
file named by GAMEPULSE_CONFIG.

Examples:
  gamepulse extract jsons/live_scores.json Data/scoring_plays.json
  gamepulse series -records jsons/lsu_comments.json -key LSUvOleMiss
  gamepulse analyze exports/LSUvOleMiss.json
  gamepulse analyze
`)
}
