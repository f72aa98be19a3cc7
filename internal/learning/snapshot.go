package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rcliao/signal-memory/internal/model"
	"github.com/rcliao/signal-memory/internal/store"
)

// Load restores the snapshot and, when a journal is configured, the
// interaction log. Any failure leaves a default, empty state in place; the
// error is logged and returned for callers that care.
func (c *Controller) Load(ctx context.Context) error {
	if c.journal != nil {
		recs, err := c.journal.Recent(ctx, c.opts.MaxInteractions)
		if err != nil {
			c.logger.Warn("journal load failed, starting with empty log", zap.Error(err))
		} else {
			c.mu.Lock()
			c.log = recs
			c.mu.Unlock()
		}
	}

	data, err := c.kv.Get(ctx, c.opts.SnapshotKey)
	if errors.Is(err, store.ErrNotFound) {
		c.logger.Info("no snapshot found, starting fresh", zap.String("key", c.opts.SnapshotKey))
		c.reset()
		return nil
	}
	if err != nil {
		c.logger.Warn("snapshot load failed, using defaults", zap.Error(err))
		c.reset()
		return fmt.Errorf("load snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.logger.Warn("snapshot decode failed, using defaults", zap.Error(err))
		c.reset()
		return fmt.Errorf("decode snapshot: %w", err)
	}

	c.apply(snap)
	c.logger.Info("snapshot loaded",
		zap.String("version", snap.Version),
		zap.Int("patterns", len(snap.Patterns)),
	)
	return nil
}

// Save writes the current snapshot through the KV port.
func (c *Controller) Save(ctx context.Context) error {
	data, err := json.Marshal(c.Export())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.kv.Set(ctx, c.opts.SnapshotKey, data); err != nil {
		c.logger.Warn("snapshot save failed", zap.Error(err))
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Export returns the persisted view of the learner.
func (c *Controller) Export() model.Snapshot {
	patterns := c.patterns.Export()

	c.mu.Lock()
	defer c.mu.Unlock()

	return model.Snapshot{
		Patterns:         patterns,
		Version:          c.state.Version,
		LastTrainingDate: copyTime(c.state.LastTrainingDate),
		AccuracyScore:    c.state.AccuracyScore,
	}
}

// Import replaces the learner's memory and model state with snap and saves it.
func (c *Controller) Import(ctx context.Context, snap model.Snapshot) error {
	if _, err := parseVersion(snap.Version); err != nil {
		return err
	}
	if snap.AccuracyScore < 0 || snap.AccuracyScore > c.opts.AccuracyCeiling {
		return fmt.Errorf("accuracy %v outside [0, %v]", snap.AccuracyScore, c.opts.AccuracyCeiling)
	}
	c.apply(snap)
	return c.Save(ctx)
}

// apply installs snap, repairing values that would break invariants.
func (c *Controller) apply(snap model.Snapshot) {
	c.patterns.Import(snap.Patterns)

	version := snap.Version
	if _, err := parseVersion(version); err != nil {
		c.logger.Warn("snapshot has invalid version, using initial", zap.String("version", version))
		version = c.opts.InitialVersion
	}

	accuracy := snap.AccuracyScore
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > c.opts.AccuracyCeiling {
		accuracy = c.opts.AccuracyCeiling
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Version = version
	c.state.AccuracyScore = accuracy
	c.state.LastTrainingDate = copyTime(snap.LastTrainingDate)
}

func (c *Controller) reset() {
	c.patterns.Import(nil)

	c.mu.Lock()
	defer c.mu.Unlock()
	training := c.state.IsTraining
	c.state = c.defaultState()
	c.state.IsTraining = training
}
