package predict

import (
	"fmt"
	"strings"
)

// Report is the analysis output. The arrays are parallel and indexed like
// Time; prediction entries are null where the predictor is undefined.
type Report struct {
	AwayTeam            string     `json:"away_team"`
	HomeTeam            string     `json:"home_team"`
	FinalScore          int        `json:"final_score"`
	Time                []float64  `json:"time"`
	TotalScore          []int      `json:"total_score"`
	RawPrediction       []*float64 `json:"raw_prediction"`
	SentimentPrediction []*float64 `json:"sentiment_prediction"`
	RawError            []*float64 `json:"raw_error"`
	SentimentError      []*float64 `json:"sentiment_error"`
	SentimentMean       []*float64 `json:"sentiment_mean"`
	SentimentSamples    []int      `json:"sentiment_samples"`
}

// NewReport flattens a Result into parallel arrays with prediction errors
// measured against the final score.
func NewReport(away, home string, r Result) Report {
	rep := Report{
		AwayTeam:   away,
		HomeTeam:   home,
		FinalScore: r.FinalScore,
	}
	final := float64(r.FinalScore)
	for _, p := range r.Points {
		rep.Time = append(rep.Time, p.GameTime)
		rep.TotalScore = append(rep.TotalScore, p.TotalScore)
		rep.RawPrediction = append(rep.RawPrediction, p.Pace)
		rep.SentimentPrediction = append(rep.SentimentPrediction, p.Sentiment)
		rep.RawError = append(rep.RawError, diff(p.Pace, final))
		rep.SentimentError = append(rep.SentimentError, diff(p.Sentiment, final))
		rep.SentimentMean = append(rep.SentimentMean, p.SentimentMean)
		rep.SentimentSamples = append(rep.SentimentSamples, p.SentimentSamples)
	}
	return rep
}

// Key names the report after its teams: game_analysis_<away>_<home>.
func (r Report) Key() string {
	return fmt.Sprintf("game_analysis_%s_%s", slug(r.AwayTeam), slug(r.HomeTeam))
}

func slug(team string) string {
	return strings.ReplaceAll(strings.ToLower(team), " ", "_")
}

func diff(v *float64, final float64) *float64 {
	if v == nil {
		return nil
	}
	d := *v - final
	return &d
}
