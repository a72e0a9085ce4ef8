// Package model contains domain models passed between pipeline stages.
package model

import "time"

// SentimentRecord is one labelled comment.
type SentimentRecord struct {
	Time       time.Time // wall-clock instant the comment was posted
	Text       string    // comment body
	Prediction float64   // model output in [0,1]; 0.5 is neutral
}

// PlayClock is a period plus the "M:SS" time remaining in it.
type PlayClock struct {
	Period int
	Clock  string
}

// ScoringEvent is the play that put points on the board for one drive.
type ScoringEvent struct {
	GameTime  float64 // continuous game minutes, 15*period - remaining
	HomeScore int
	AwayScore int
	PlayType  string
	PlayText  string
	Clock     string // "11:01 1st", "3:12 OT"
}

// Total returns the combined score after the event.
func (e ScoringEvent) Total() int { return e.HomeScore + e.AwayScore }

// WindowedScore is one step of the sliding window.
type WindowedScore struct {
	Time       float64 // game minutes in live mode, unix seconds otherwise
	Raw        float64
	Normalized float64
	Count      int // records inside the window
}

// Prediction is a final-score estimate made at a point in game time.
type Prediction struct {
	GameTime  float64
	Predicted float64
}

// Highlight is a unique comment observed inside a mapped window.
type Highlight struct {
	Text       string
	Prediction float64
	GameTime   float64
}
