package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/okian/gamepulse/internal/domain/model"
	"github.com/okian/gamepulse/pkg/logger"
	"github.com/okian/gamepulse/pkg/metrics"
)

// Labeler turns raw comment documents into sentiment records.
type Labeler interface {
	Label(ctx context.Context, docs []json.RawMessage) []model.SentimentRecord
}

// rawRecord accepts both labelled records and fetched comments that an
// external model has annotated with a prediction.
type rawRecord struct {
	Timestamp  *float64 `json:"timestamp"`
	CreatedUTC *float64 `json:"created_utc"`
	Text       *string  `json:"text"`
	BodyHTML   *string  `json:"body_html"`
	Prediction *float64 `json:"prediction"`
}

// PassThroughLabeler keeps the prediction already present on each
// document. Documents without a time or a prediction in [0,1] are skipped.
type PassThroughLabeler struct {
	log logger.Logger
}

// NewPassThroughLabeler creates a PassThroughLabeler.
func NewPassThroughLabeler(log logger.Logger) *PassThroughLabeler {
	if log == nil {
		log = logger.Get().Named("labeler")
	}
	return &PassThroughLabeler{log: log}
}

// Label implements Labeler.
func (l *PassThroughLabeler) Label(ctx context.Context, docs []json.RawMessage) []model.SentimentRecord {
	out := make([]model.SentimentRecord, 0, len(docs))
	for i, doc := range docs {
		rec, reason := decodeRecord(doc)
		if reason != "" {
			metrics.RecordRecordSkipped(reason)
			l.log.Debug(ctx, "record skipped", logger.Int("index", i), logger.String("reason", reason))
			continue
		}
		out = append(out, rec)
	}
	if skipped := len(docs) - len(out); skipped > 0 {
		l.log.Warn(ctx, "records skipped", logger.Int("skipped", skipped), logger.Int("kept", len(out)))
	}
	return out
}

func decodeRecord(doc json.RawMessage) (model.SentimentRecord, string) {
	var r rawRecord
	if err := json.Unmarshal(doc, &r); err != nil {
		return model.SentimentRecord{}, "malformed"
	}
	ts := r.Timestamp
	if ts == nil {
		ts = r.CreatedUTC
	}
	if ts == nil || math.IsNaN(*ts) || math.IsInf(*ts, 0) {
		return model.SentimentRecord{}, "no_timestamp"
	}
	if r.Prediction == nil || *r.Prediction < 0 || *r.Prediction > 1 {
		return model.SentimentRecord{}, "bad_prediction"
	}
	text := ""
	switch {
	case r.Text != nil:
		text = *r.Text
	case r.BodyHTML != nil:
		text = *r.BodyHTML
	}
	sec, frac := math.Modf(*ts)
	return model.SentimentRecord{
		Time:       time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC(),
		Text:       text,
		Prediction: *r.Prediction,
	}, ""
}

// LoadRecords reads a JSON array of record documents. A missing or
// malformed file is logged and yields nil.
func LoadRecords(ctx context.Context, log logger.Logger, path string) []json.RawMessage {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error(ctx, "cannot read records", logger.String("path", path), logger.Error(err))
		return nil
	}
	docs, err := DecodeRecords(data)
	if err != nil {
		log.Error(ctx, "cannot parse records", logger.String("path", path), logger.Error(err))
		return nil
	}
	return docs
}

// DecodeRecords splits a JSON array into its documents.
func DecodeRecords(data []byte) ([]json.RawMessage, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: records: %w", ErrMalformedInput, err)
	}
	return docs, nil
}
