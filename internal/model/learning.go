package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// InteractionRecord is one user/assistant exchange fed to the learner.
type InteractionRecord struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	UserMessage string          `json:"userMessage"`
	AIResponse  string          `json:"aiResponse"`
	ContextRef  json.RawMessage `json:"contextRef,omitempty"`
	Mode        string          `json:"mode,omitempty"`
}

// PatternRecord is the learned response history for a keyword.
type PatternRecord struct {
	Keyword         string    `json:"-"`
	Count           int       `json:"count"`
	RecentResponses []string  `json:"recentResponses"`
	LastUsedAt      time.Time `json:"lastUsedAt"`
}

// ModelState is the versioned state advanced by each retrain cycle.
type ModelState struct {
	Version          string     `json:"version"`
	LastTrainingDate *time.Time `json:"lastTrainingDate,omitempty"`
	AccuracyScore    float64    `json:"accuracyScore"`
	IsTraining       bool       `json:"isTraining"`
}

// Stats summarizes the learner for display.
type Stats struct {
	LearningDataPoints int        `json:"learningDataPoints"`
	PatternCount       int        `json:"patternCount"`
	Version            string     `json:"version"`
	LastTrainingDate   *time.Time `json:"lastTrainingDate,omitempty"`
	AccuracyScore      float64    `json:"accuracyScore"`
	IsTraining         bool       `json:"isTraining"`
}

// PatternEntry serializes as a [keyword, record] pair.
type PatternEntry struct {
	Keyword string
	Record  PatternRecord
}

func (e PatternEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{e.Keyword, e.Record})
}

func (e *PatternEntry) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("pattern entry: expected [keyword, record], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &e.Keyword); err != nil {
		return fmt.Errorf("pattern entry keyword: %w", err)
	}
	if err := json.Unmarshal(pair[1], &e.Record); err != nil {
		return fmt.Errorf("pattern entry %q: %w", e.Keyword, err)
	}
	e.Record.Keyword = e.Keyword
	return nil
}

// Snapshot is the persisted learner record.
type Snapshot struct {
	Patterns         []PatternEntry `json:"patterns"`
	Version          string         `json:"version"`
	LastTrainingDate *time.Time     `json:"lastTrainingDate,omitempty"`
	AccuracyScore    float64        `json:"accuracyScore"`
}
