// Package plays reads play-by-play game feeds, extracts the play that
// scored on each scoring drive, and builds live clock timelines.
package plays

import (
	"encoding/json"

	"github.com/okian/gamepulse/internal/domain/gametime"
	"github.com/okian/gamepulse/internal/domain/model"
)

const unknown = "Unknown"

// Game is one entry of a play-by-play feed. Teams and drives are kept raw
// so a malformed entry can be skipped without losing the whole game.
type Game struct {
	Teams  json.RawMessage `json:"teams"`
	Drives json.RawMessage `json:"drives"`
}

// Team is one side of a game.
type Team struct {
	HomeAway string `json:"homeAway"`
	Team     string `json:"team"`
}

// Drive is one possession.
type Drive struct {
	Result string          `json:"result"`
	Plays  json.RawMessage `json:"plays"`
}

// Play is one snap or administrative event.
type Play struct {
	PlayType  string  `json:"playType"`
	PlayText  string  `json:"playText"`
	Clock     string  `json:"clock"`
	Period    int     `json:"period"`
	HomeScore int     `json:"homeScore"`
	AwayScore int     `json:"awayScore"`
	WallClock *string `json:"wallClock"`
}

// GameScoring is the extractor output for one game.
type GameScoring struct {
	GameNumber   int           `json:"game_number"`
	HomeTeam     string        `json:"home_team"`
	AwayTeam     string        `json:"away_team"`
	ScoringPlays []ScoringPlay `json:"scoring_plays"`
}

// ScoringPlay is the play credited with a drive's points.
type ScoringPlay struct {
	PlayType  string `json:"play_type"`
	PlayText  string `json:"play_text"`
	Clock     string `json:"clock"` // "11:01 1st"
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
	// GameTime is the real value, past 60 in overtime. It is absent in
	// files written before it was recorded.
	GameTime *float64 `json:"game_time,omitempty"`
}

// Event converts the play to a scoring event on the prediction axis, where
// every overtime play sits at the end of regulation. The clock label is
// authoritative; GameTime is used only when there is no label.
func (p ScoringPlay) Event() model.ScoringEvent {
	gt := gametime.ParseGameTime(p.Clock)
	if p.Clock == "" && p.GameTime != nil {
		gt = *p.GameTime
	}
	return model.ScoringEvent{
		GameTime:  gt,
		HomeScore: p.HomeScore,
		AwayScore: p.AwayScore,
		PlayType:  p.PlayType,
		PlayText:  p.PlayText,
		Clock:     p.Clock,
	}
}

// Events converts every scoring play, in file order.
func (g GameScoring) Events() []model.ScoringEvent {
	events := make([]model.ScoringEvent, 0, len(g.ScoringPlays))
	for _, p := range g.ScoringPlays {
		events = append(events, p.Event())
	}
	return events
}

// FinalScore is the score after the last scoring play, or 0-0.
func (g GameScoring) FinalScore() (home, away int) {
	if len(g.ScoringPlays) == 0 {
		return 0, 0
	}
	last := g.ScoringPlays[len(g.ScoringPlays)-1]
	return last.HomeScore, last.AwayScore
}

// FindGame returns the first game played between away and home.
func FindGame(games []GameScoring, away, home string) (GameScoring, bool) {
	for _, g := range games {
		if g.AwayTeam == away && g.HomeTeam == home {
			return g, true
		}
	}
	return GameScoring{}, false
}
