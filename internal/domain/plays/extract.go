package plays

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/gamepulse/internal/domain/gametime"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

var (
	scoringResults = []string{"Touchdown", "Field Goal", "Safety"}
	scoringPlays   = []string{"Touchdown", "Field Goal", "Safety", "FG"}
	adminPlays     = []string{"End of Game", "End of Half", "End of Quarter", "Timeout", "Kickoff", "Penalty"}
)

// Extractor finds the scoring play of every scoring drive.
type Extractor struct {
	log logger.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithExtractorLogger sets the logger.
func WithExtractorLogger(l logger.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.log = l
	}
}

// NewExtractor creates an Extractor.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = logger.Get().Named("extractor")
	}
	return e
}

// Extract walks every game of the feed. Games without exactly two teams or
// without both a home and an away side are skipped, as are drives and
// plays that do not decode. Game numbers are 1-based positions in the feed.
func (e *Extractor) Extract(ctx context.Context, games []json.RawMessage) []GameScoring {
	var out []GameScoring
	for i, raw := range games {
		number := i + 1
		var g Game
		if err := json.Unmarshal(raw, &g); err != nil {
			e.log.Warn(ctx, "game is not an object, skipping", logger.Int("game", number))
			metrics.RecordGameSkipped()
			continue
		}
		home, away, ok := teams(g.Teams)
		if !ok {
			e.log.Warn(ctx, "game has no home and away teams, skipping", logger.Int("game", number))
			metrics.RecordGameSkipped()
			continue
		}
		var drives []json.RawMessage
		if err := json.Unmarshal(g.Drives, &drives); err != nil && len(g.Drives) > 0 {
			e.log.Warn(ctx, "drives is not a list, skipping game", logger.Int("game", number))
			metrics.RecordGameSkipped()
			continue
		}

		gs := GameScoring{GameNumber: number, HomeTeam: home, AwayTeam: away, ScoringPlays: []ScoringPlay{}}
		for j, rawDrive := range drives {
			if sp, ok := e.drive(ctx, number, j+1, rawDrive); ok {
				gs.ScoringPlays = append(gs.ScoringPlays, sp)
			}
		}
		metrics.RecordScoringEvents(len(gs.ScoringPlays))
		e.log.Info(ctx, "scoring plays extracted",
			logger.Int("game", number),
			logger.String("away", away),
			logger.String("home", home),
			logger.Int("scoring_plays", len(gs.ScoringPlays)),
		)
		out = append(out, gs)
	}
	return out
}

func (e *Extractor) drive(ctx context.Context, game, number int, raw json.RawMessage) (ScoringPlay, bool) {
	fields := []logger.Field{logger.Int("game", game), logger.Int("drive", number)}
	var d Drive
	if err := json.Unmarshal(raw, &d); err != nil {
		e.log.Warn(ctx, "drive is not an object, skipping", fields...)
		metrics.RecordDriveSkipped("malformed")
		return ScoringPlay{}, false
	}
	if !containsAny(d.Result, scoringResults) {
		return ScoringPlay{}, false
	}
	var rawPlays []json.RawMessage
	if err := json.Unmarshal(d.Plays, &rawPlays); err != nil && len(d.Plays) > 0 {
		e.log.Warn(ctx, "plays is not a list, skipping drive", fields...)
		metrics.RecordDriveSkipped("malformed")
		return ScoringPlay{}, false
	}
	if len(rawPlays) == 0 {
		e.log.Warn(ctx, "scoring drive has no plays, skipping", fields...)
		metrics.RecordDriveSkipped("no_plays")
		return ScoringPlay{}, false
	}

	p, ok := pickScoringPlay(rawPlays)
	if !ok {
		e.log.Warn(ctx, "scoring play is not an object, skipping drive", fields...)
		metrics.RecordDriveSkipped("malformed")
		return ScoringPlay{}, false
	}
	gt := gametime.FromClock(p.Period, p.Clock)
	return ScoringPlay{
		PlayType:  p.PlayType,
		PlayText:  p.PlayText,
		Clock:     gametime.Label(p.Clock, p.Period),
		HomeScore: p.HomeScore,
		AwayScore: p.AwayScore,
		GameTime:  &gt,
	}, true
}

// pickScoringPlay scans plays from the end. The first non-administrative
// play naming a score wins; failing that, the last non-administrative play;
// failing that, the drive's last play.
func pickScoringPlay(raws []json.RawMessage) (Play, bool) {
	var candidate *Play
	for i := len(raws) - 1; i >= 0; i-- {
		p, ok := decodePlay(raws[i])
		if !ok {
			continue
		}
		if containsAny(p.PlayType, adminPlays) || containsAny(p.PlayText, adminPlays) {
			continue
		}
		if containsAny(p.PlayType, scoringPlays) || containsAny(p.PlayText, scoringPlays) {
			return p, true
		}
		if candidate == nil {
			candidate = &p
		}
	}
	if candidate != nil {
		return *candidate, true
	}
	return decodePlay(raws[len(raws)-1])
}

func decodePlay(raw json.RawMessage) (Play, bool) {
	p := Play{PlayType: unknown, PlayText: unknown, Clock: unknown, Period: 1}
	if err := json.Unmarshal(raw, &p); err != nil {
		return Play{}, false
	}
	return p, true
}

func teams(raw json.RawMessage) (home, away string, ok bool) {
	var raws []json.RawMessage
	if err := json.Unmarshal(raw, &raws); err != nil || len(raws) != 2 {
		return "", "", false
	}
	var hasHome, hasAway bool
	for _, raw := range raws {
		t := Team{Team: unknown}
		if err := json.Unmarshal(raw, &t); err != nil {
			continue
		}
		switch t.HomeAway {
		case "home":
			home, hasHome = t.Team, true
		case "away":
			away, hasAway = t.Team, true
		}
	}
	return home, away, hasHome && hasAway
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ParseFeed splits a play-by-play feed into raw games.
func ParseFeed(data []byte) ([]json.RawMessage, error) {
	var games []json.RawMessage
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedFeed, err)
	}
	return games, nil
}
