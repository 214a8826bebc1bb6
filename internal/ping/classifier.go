package ping

import (
	"log/slog"
)

// Outcome is the simulated server behaviour chosen for a submitted record.
type Outcome int

const (
	Accept Outcome = iota + 1 // acknowledge and cache the record
	Reject                    // answer with an error
	Hang                      // never answer
)

// Draws are taken from [1, 100]; the upper bounds below are inclusive.
const (
	drawMin     = 1
	drawMax     = 100
	acceptUpper = 60
	rejectUpper = 80
)

func (o Outcome) String() string {
	switch o {
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	case Hang:
		return "hang"
	default:
		return "unknown"
	}
}

// OutcomeFor maps a draw from [1, 100] to its outcome.
func OutcomeFor(draw int) Outcome {
	switch {
	case draw <= acceptUpper:
		return Accept
	case draw <= rejectUpper:
		return Reject
	default:
		return Hang
	}
}

// Recorder observes classifier decisions.
type Recorder interface {
	RecordOutcome(Outcome)
	RecordInvalid()
	SetCacheLength(int)
}

type nopRecorder struct{}

func (nopRecorder) RecordOutcome(Outcome) {}
func (nopRecorder) RecordInvalid()        {}
func (nopRecorder) SetCacheLength(int)    {}

// Classifier decides how the server treats each submitted record and feeds
// accepted records into its cache.
type Classifier struct {
	cache    *Cache
	source   Source
	recorder Recorder
	logger   *slog.Logger
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) ClassifierOption {
	return func(c *Classifier) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) ClassifierOption {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClassifier returns a Classifier writing accepted records to cache.
// A nil source falls back to NewRandSource.
func NewClassifier(cache *Cache, source Source, opts ...ClassifierOption) *Classifier {
	if source == nil {
		source = NewRandSource()
	}
	c := &Classifier{
		cache:    cache,
		source:   source,
		recorder: nopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the cache accepted records are written to.
func (c *Classifier) Cache() *Cache {
	return c.cache
}

// Classify draws an outcome for payload. On Accept the payload is validated
// and cached; an invalid payload returns Accept together with an
// ErrValidation error. Reject and Hang never touch the cache.
func (c *Classifier) Classify(payload any) (Outcome, error) {
	outcome := OutcomeFor(c.source.IntRange(drawMin, drawMax))

	switch outcome {
	case Accept:
		rec, err := ParseRecord(payload)
		if err != nil {
			c.recorder.RecordInvalid()
			return outcome, err
		}
		if c.cache.Insert(rec) {
			c.logger.Info("applied ping record",
				"pingId", rec.PingID,
				"deliveryAttempt", rec.DeliveryAttempt,
				"date", rec.Date,
				"responseTime", rec.ResponseTime,
			)
		} else {
			c.logger.Debug("ignored duplicate ping record", "pingId", rec.PingID)
		}
		c.recorder.SetCacheLength(c.cache.Len())
	case Reject:
		c.logger.Debug("rejecting ping record")
	case Hang:
		c.logger.Debug("withholding reply")
	}

	c.recorder.RecordOutcome(outcome)
	return outcome, nil
}
