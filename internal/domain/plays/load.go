package plays

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/gamepulse/internal/domain/gametime"
	"github.com/okian/gamepulse/pkg/logger"
)

// LoadFeed reads a play-by-play feed from path. A missing or malformed file
// is logged and yields nil.
func LoadFeed(ctx context.Context, log logger.Logger, path string) []json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(ctx, "failed to read play-by-play feed", logger.String("path", path), logger.Error(err))
		return nil
	}
	games, err := ParseFeed(data)
	if err != nil {
		log.Error(ctx, "failed to parse play-by-play feed", logger.String("path", path), logger.Error(err))
		return nil
	}
	return games
}

// LoadScoringPlays reads extractor output from path. A missing or malformed
// file is logged and yields nil.
func LoadScoringPlays(ctx context.Context, log logger.Logger, path string) []GameScoring {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(ctx, "failed to read scoring plays", logger.String("path", path), logger.Error(err))
		return nil
	}
	var games []GameScoring
	if err := json.Unmarshal(data, &games); err != nil {
		log.Error(ctx, "failed to parse scoring plays", logger.String("path", path), logger.Error(err))
		return nil
	}
	return games
}

// SaveScoringPlays writes extractor output as indented JSON.
func SaveScoringPlays(path string, games []GameScoring) error {
	if games == nil {
		games = []GameScoring{}
	}
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scoring plays: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("write scoring plays: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write scoring plays: %w", err)
	}
	return nil
}

// BuildTimeline collects the wall-clock samples of one game in the feed.
// Plays without a wall clock, with an unreadable one, or not strictly later
// than the previous sample are left out. Malformed drives and plays are
// skipped with a warning.
func BuildTimeline(ctx context.Context, log logger.Logger, games []json.RawMessage, index int) (*gametime.Timeline, error) {
	if index < 0 || index >= len(games) {
		return nil, fmt.Errorf("%w: %d of %d", ErrGameIndex, index, len(games))
	}
	var g Game
	if err := json.Unmarshal(games[index], &g); err != nil {
		return nil, fmt.Errorf("%w: game %d: %w", ErrMalformedFeed, index, err)
	}
	var drives []json.RawMessage
	if err := json.Unmarshal(g.Drives, &drives); err != nil && len(g.Drives) > 0 {
		return nil, fmt.Errorf("%w: game %d drives: %w", ErrMalformedFeed, index, err)
	}

	tl := gametime.NewTimeline()
	skipped := 0
	for di, rawDrive := range drives {
		var d Drive
		if err := json.Unmarshal(rawDrive, &d); err != nil {
			log.Warn(ctx, "skipping malformed drive",
				logger.Int("game", index), logger.Int("drive", di), logger.Error(err))
			continue
		}
		var rawPlays []json.RawMessage
		if err := json.Unmarshal(d.Plays, &rawPlays); err != nil {
			log.Warn(ctx, "skipping drive with malformed plays",
				logger.Int("game", index), logger.Int("drive", di), logger.Error(err))
			continue
		}
		for pi, rawPlay := range rawPlays {
			p, ok := decodePlay(rawPlay)
			if !ok {
				log.Warn(ctx, "skipping malformed play",
					logger.Int("game", index), logger.Int("drive", di), logger.Int("play", pi))
				skipped++
				continue
			}
			if p.WallClock == nil {
				log.Debug(ctx, "skipping play without wall clock",
					logger.Int("game", index), logger.Int("drive", di), logger.Int("play", pi))
				skipped++
				continue
			}
			wall, err := time.Parse(time.RFC3339, *p.WallClock)
			if err != nil {
				log.Debug(ctx, "skipping unreadable wall clock",
					logger.Int("game", index), logger.Int("drive", di), logger.Int("play", pi),
					logger.String("wall_clock", *p.WallClock))
				skipped++
				continue
			}
			if !tl.Add(gametime.Sample{Wall: wall, Period: p.Period, Clock: p.Clock}) {
				log.Debug(ctx, "skipping sample not after the previous one",
					logger.Int("game", index), logger.Int("drive", di), logger.Int("play", pi),
					logger.String("wall_clock", *p.WallClock))
				skipped++
			}
		}
	}
	log.Debug(ctx, "timeline samples collected",
		logger.Int("game", index),
		logger.Int("samples", tl.Len()),
		logger.Int("skipped_plays", skipped),
	)
	return tl, nil
}

// WriteSummary prints each game as "away at home", the final score, and a
// numbered list of scoring plays.
func WriteSummary(w io.Writer, games []GameScoring) error {
	if len(games) == 0 {
		_, err := fmt.Fprintln(w, "No games found.")
		return err
	}
	var errs []error
	write := func(format string, args ...any) {
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			errs = append(errs, err)
		}
	}
	for i, g := range games {
		home, away := g.FinalScore()
		write("%s at %s\n%d - %d\n\n", g.AwayTeam, g.HomeTeam, away, home)
		if len(g.ScoringPlays) == 0 {
			write("No scoring plays found.\n")
		}
		for n, p := range g.ScoringPlays {
			write("%2d. %s\n", n+1, p.PlayText)
			write("    %-20s %d-%d\n\n", p.Clock, p.AwayScore, p.HomeScore)
		}
		if i < len(games)-1 {
			write("\n\n")
		}
	}
	return errors.Join(errs...)
}
