package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	service "github.com/okian/gamepulse/internal/app"
	"github.com/okian/gamepulse/internal/domain/plays"
	"github.com/okian/gamepulse/pkg/logger"
)

const (
	defaultFeedFile = "live_scores.json"
	filePermission  = 0o644
)

// ErrNoInput reports an input file that was missing, malformed or empty.
var ErrNoInput = errors.New("no usable input")

func analyze(ctx context.Context, env *Env, args []string) error {
	switch len(args) {
	case 0:
		sum, err := env.Service.AnalyzeAll(ctx)
		if err != nil {
			return err
		}
		_, err = sum.WriteTo(env.Stdout)
		return err
	case 1:
	default:
		return fmt.Errorf("%w: analyze takes at most one export file", ErrUsage)
	}

	path := args[0]
	exp := service.LoadExport(ctx, env.Log, path)
	games := env.Service.ScoringPlays(ctx)
	if len(games) == 0 {
		games = plays.LoadScoringPlays(ctx, env.Log, env.Config.ScoringFile)
	}

	sum := service.Summary{Failed: map[string]error{}}
	_, err := env.Service.Analyze(ctx, path, exp, games)
	if err != nil {
		sum.Failed[path] = err
	} else {
		sum.Succeeded = append(sum.Succeeded, path)
	}
	if _, werr := sum.WriteTo(env.Stdout); werr != nil {
		return werr
	}
	return err
}

func series(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("series", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		recordsFile = fs.String("records", "", "labelled records JSON")
		feedFile    = fs.String("feed", "", "play-by-play feed JSON")
		gameIndex   = fs.Int("game", -1, "game index in the feed")
		key         = fs.String("key", "", "export name to save under")
	)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *recordsFile == "" {
		return fmt.Errorf("%w: series needs -records", ErrUsage)
	}

	req := service.SeriesRequest{
		Records:   service.LoadRecords(ctx, env.Log, *recordsFile),
		GameIndex: *gameIndex,
	}
	if *feedFile != "" {
		req.Feed = plays.LoadFeed(ctx, env.Log, *feedFile)
	}
	exp, err := env.Service.BuildSeries(ctx, req)
	if err != nil {
		return err
	}

	if *key == "" {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(exp)
	}
	if err := env.Service.SaveExport(ctx, *key, exp); err != nil {
		return err
	}
	_, err = fmt.Fprintf(env.Stdout, "Saved export %s with %d window(s).\n", *key, len(exp.Times))
	return err
}

func extract(ctx context.Context, env *Env, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("%w: extract takes an input and an output file", ErrUsage)
	}
	in := filepath.Join(env.Config.DataDir, defaultFeedFile)
	out := env.Config.ScoringFile
	if len(args) > 0 {
		in = args[0]
	}
	if len(args) > 1 {
		out = args[1]
	}

	feed := plays.LoadFeed(ctx, env.Log, in)
	if len(feed) == 0 {
		return fmt.Errorf("%w: %s", ErrNoInput, in)
	}
	games, err := env.Service.Extract(ctx, feed)
	if err != nil {
		return err
	}
	if err := plays.SaveScoringPlays(out, games); err != nil {
		return err
	}

	for _, g := range games {
		env.Log.Info(ctx, "game extracted",
			logger.Int("game", g.GameNumber),
			logger.String("away", g.AwayTeam),
			logger.String("home", g.HomeTeam),
			logger.Int("scoring_plays", len(g.ScoringPlays)),
		)
	}
	_, err = fmt.Fprintf(env.Stdout, "Extracted %d game(s) from %s to %s.\n", len(games), in, out)
	return err
}

func summary(ctx context.Context, env *Env, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("%w: summary takes one scoring plays file", ErrUsage)
	}
	path := env.Config.ScoringFile
	if len(args) == 1 {
		path = args[0]
	}
	return plays.WriteSummary(env.Stdout, plays.LoadScoringPlays(ctx, env.Log, path))
}

func fetch(ctx context.Context, env *Env, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		postID  = fs.String("post", "", "discussion thread ID")
		outFile = fs.String("out", "", "file to write comments to")
	)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *postID == "" {
		return fmt.Errorf("%w: fetch needs -post", ErrUsage)
	}

	comments, err := env.Service.Fetch(ctx, *postID)
	if err != nil {
		return err
	}
	doc, err := json.MarshalIndent(comments, "", "  ")
	if err != nil {
		return fmt.Errorf("encode comments: %w", err)
	}
	if *outFile == "" {
		_, err = fmt.Fprintf(env.Stdout, "%s\n", doc)
		return err
	}
	if err := os.WriteFile(*outFile, doc, filePermission); err != nil {
		return fmt.Errorf("write comments: %w", err)
	}
	_, err = fmt.Fprintf(env.Stdout, "Saved %d comment(s) to %s.\n", len(comments), *outFile)
	return err
}
