package learning

import (
	"time"

	"github.com/rcliao/signal-memory/internal/keywords"
	"github.com/rcliao/signal-memory/internal/store"
)

const (
	DefaultSnapshotKey     = "learning_snapshot"
	DefaultRetrainEvery    = 50
	DefaultMaxInteractions = 500
	DefaultMaxResponses    = 5
	DefaultTrainingDelay   = 2 * time.Second
	DefaultAccuracyStep    = 0.01
	DefaultAccuracyCeiling = 0.95
	DefaultVersion         = "1.0.0"
)

// Options holds the tunables of the learning loop.
type Options struct {
	// SnapshotKey is the KV key the snapshot is stored under.
	SnapshotKey string
	// RetrainEvery triggers a retrain when the log length is a multiple of it.
	RetrainEvery int
	// MaxInteractions caps the sliding interaction log.
	MaxInteractions int
	// MaxResponses caps each keyword's response history.
	MaxResponses int
	// TrainingDelay is the simulated retraining latency. Must be > 0.
	TrainingDelay time.Duration
	// AccuracyStep is added per retrain, up to AccuracyCeiling.
	AccuracyStep    float64
	AccuracyCeiling float64
	// InitialVersion is used when no valid snapshot exists.
	InitialVersion string
}

// DefaultOptions returns the default learning options.
func DefaultOptions() Options {
	return Options{
		SnapshotKey:     DefaultSnapshotKey,
		RetrainEvery:    DefaultRetrainEvery,
		MaxInteractions: DefaultMaxInteractions,
		MaxResponses:    DefaultMaxResponses,
		TrainingDelay:   DefaultTrainingDelay,
		AccuracyStep:    DefaultAccuracyStep,
		AccuracyCeiling: DefaultAccuracyCeiling,
		InitialVersion:  DefaultVersion,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SnapshotKey == "" {
		o.SnapshotKey = d.SnapshotKey
	}
	if o.RetrainEvery <= 0 {
		o.RetrainEvery = d.RetrainEvery
	}
	if o.MaxInteractions <= 0 {
		o.MaxInteractions = d.MaxInteractions
	}
	if o.MaxResponses <= 0 {
		o.MaxResponses = d.MaxResponses
	}
	if o.TrainingDelay <= 0 {
		o.TrainingDelay = d.TrainingDelay
	}
	if o.AccuracyStep <= 0 {
		o.AccuracyStep = d.AccuracyStep
	}
	if o.AccuracyCeiling <= 0 || o.AccuracyCeiling > 1 {
		o.AccuracyCeiling = d.AccuracyCeiling
	}
	if _, err := parseVersion(o.InitialVersion); err != nil {
		o.InitialVersion = d.InitialVersion
	}
	return o
}

// Option configures a Controller.
type Option func(*Controller)

// WithOptions sets the learning options. Zero fields keep their defaults.
func WithOptions(o Options) Option {
	return func(c *Controller) {
		c.opts = o
	}
}

// WithJournal persists the interaction log so it survives restarts.
func WithJournal(j store.Journal) Option {
	return func(c *Controller) {
		c.journal = j
	}
}

// WithExtractor overrides the keyword extractor.
func WithExtractor(e *keywords.Extractor) Option {
	return func(c *Controller) {
		c.extractor = e
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}
