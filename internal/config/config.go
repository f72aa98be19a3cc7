// Package config provides configuration loading for signal-memory.
package config

import (
	"fmt"
	"time"

	"github.com/rcliao/signal-memory/internal/keywords"
	"github.com/rcliao/signal-memory/internal/learning"
	"github.com/rcliao/signal-memory/internal/logging"
	"github.com/rcliao/signal-memory/internal/severity"
)

// Config is the full signal-memory configuration.
type Config struct {
	DB       string         `koanf:"db"`
	Log      logging.Config `koanf:"log"`
	Learning LearningConfig `koanf:"learning"`
	Keywords KeywordsConfig `koanf:"keywords"`
	Severity SeverityConfig `koanf:"severity"`
}

// LearningConfig mirrors learning.Options.
type LearningConfig struct {
	SnapshotKey     string        `koanf:"snapshot_key"`
	RetrainEvery    int           `koanf:"retrain_every"`
	MaxInteractions int           `koanf:"max_interactions"`
	MaxResponses    int           `koanf:"max_responses"`
	TrainingDelay   time.Duration `koanf:"training_delay"`
	AccuracyStep    float64       `koanf:"accuracy_step"`
	AccuracyCeiling float64       `koanf:"accuracy_ceiling"`
	InitialVersion  string        `koanf:"initial_version"`
	// Journal persists the interaction log next to the snapshot.
	Journal bool `koanf:"journal"`
}

// KeywordsConfig configures keyword extraction.
type KeywordsConfig struct {
	MinLength   int      `koanf:"min_length"`
	Punctuation string   `koanf:"punctuation"`
	StopWords   []string `koanf:"stop_words"`
}

// SeverityConfig lists the phrases per tier.
type SeverityConfig struct {
	High   []string `koanf:"high"`
	Medium []string `koanf:"medium"`
	Low    []string `koanf:"low"`
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	l := c.Learning
	if l.RetrainEvery <= 0 {
		return fmt.Errorf("learning.retrain_every must be > 0, got %d", l.RetrainEvery)
	}
	if l.MaxInteractions <= 0 {
		return fmt.Errorf("learning.max_interactions must be > 0, got %d", l.MaxInteractions)
	}
	if l.MaxResponses <= 0 {
		return fmt.Errorf("learning.max_responses must be > 0, got %d", l.MaxResponses)
	}
	if l.TrainingDelay <= 0 || l.TrainingDelay > time.Minute {
		return fmt.Errorf("learning.training_delay must be in (0, 1m], got %s", l.TrainingDelay)
	}
	if l.AccuracyStep <= 0 {
		return fmt.Errorf("learning.accuracy_step must be > 0, got %v", l.AccuracyStep)
	}
	if l.AccuracyCeiling <= 0 || l.AccuracyCeiling > 1 {
		return fmt.Errorf("learning.accuracy_ceiling must be in (0, 1], got %v", l.AccuracyCeiling)
	}
	if c.Keywords.MinLength <= 0 {
		return fmt.Errorf("keywords.min_length must be > 0, got %d", c.Keywords.MinLength)
	}
	return nil
}

// LearningOptions converts the learning section.
func (c *Config) LearningOptions() learning.Options {
	l := c.Learning
	return learning.Options{
		SnapshotKey:     l.SnapshotKey,
		RetrainEvery:    l.RetrainEvery,
		MaxInteractions: l.MaxInteractions,
		MaxResponses:    l.MaxResponses,
		TrainingDelay:   l.TrainingDelay,
		AccuracyStep:    l.AccuracyStep,
		AccuracyCeiling: l.AccuracyCeiling,
		InitialVersion:  l.InitialVersion,
	}
}

// KeywordOptions converts the keywords section.
func (c *Config) KeywordOptions() keywords.Options {
	opts := keywords.Options{
		MinLength:   c.Keywords.MinLength,
		Punctuation: c.Keywords.Punctuation,
		StopWords:   c.Keywords.StopWords,
	}
	if len(opts.StopWords) == 0 {
		opts.StopWords = keywords.DefaultStopWords
	}
	return opts
}

// PhraseTable converts the severity section. Empty yields the default table.
func (c *Config) PhraseTable() severity.PhraseTable {
	s := c.Severity
	if len(s.High)+len(s.Medium)+len(s.Low) == 0 {
		return severity.DefaultPhrases
	}
	return severity.TableFromLists(s.High, s.Medium, s.Low)
}
