package learning

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
)

// Retrain starts a retrain cycle in the background and returns a channel
// closed when it completes. If a cycle is already in flight (or the
// controller is closed) nothing is started: started is false and done is
// the in-flight cycle's channel, or an already closed one.
//
// A started cycle always runs to completion; ctx only carries values to the
// snapshot write and is never used to abort it.
func (c *Controller) Retrain(ctx context.Context) (done <-chan struct{}, started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.training != nil {
		c.logger.Debug("retrain already in flight, skipping")
		return c.training, false
	}
	if c.closed {
		ch := make(chan struct{})
		close(ch)
		return ch, false
	}

	ch := make(chan struct{})
	c.training = ch
	c.state.IsTraining = true

	go c.runRetrain(context.WithoutCancel(ctx), ch)
	return ch, true
}

func (c *Controller) runRetrain(ctx context.Context, done chan struct{}) {
	start := time.Now()
	defer close(done)
	defer func() {
		c.mu.Lock()
		c.state.IsTraining = false
		c.training = nil
		c.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("retrain panicked", zap.Any("panic", r))
		}
	}()

	timer := time.NewTimer(c.opts.TrainingDelay)
	<-timer.C

	c.mu.Lock()
	prev := c.state.Version
	next, err := bumpPatch(prev)
	if err != nil {
		c.logger.Error("invalid model version, resetting", zap.String("version", prev), zap.Error(err))
		next = c.opts.InitialVersion
	}
	c.state.Version = next
	c.state.AccuracyScore = nextAccuracy(c.state.AccuracyScore, c.opts.AccuracyStep, c.opts.AccuracyCeiling)
	trainedAt := c.now()
	c.state.LastTrainingDate = &trainedAt
	accuracy := c.state.AccuracyScore
	c.mu.Unlock()

	if err := c.Save(ctx); err != nil {
		c.logger.Error("retrain snapshot save failed", zap.String("version", next), zap.Error(err))
	}

	c.logger.Info("retrain complete",
		zap.String("version", next),
		zap.Float64("accuracy", accuracy),
		zap.Duration("duration", time.Since(start)),
	)
}

// Wait blocks until no retrain is in flight.
func (c *Controller) Wait() {
	_ = c.WaitContext(context.Background())
}

// WaitContext is Wait bounded by ctx.
func (c *Controller) WaitContext(ctx context.Context) error {
	c.mu.Lock()
	ch := c.training
	c.mu.Unlock()

	if ch == nil {
		return nil
	}
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// nextAccuracy adds step to cur without exceeding ceiling or decreasing.
func nextAccuracy(cur, step, ceiling float64) float64 {
	next := math.Round((cur+step)*1e6) / 1e6
	if next > ceiling {
		next = ceiling
	}
	if next < cur {
		return cur
	}
	return next
}

func parseVersion(v string) (*semver.Version, error) {
	sv, err := semver.StrictNewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("parse version %q: %w", v, err)
	}
	return sv, nil
}

// bumpPatch increments the PATCH segment of a MAJOR.MINOR.PATCH version.
func bumpPatch(v string) (string, error) {
	sv, err := parseVersion(v)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d.%d.%d", sv.Major(), sv.Minor(), sv.Patch()+1), nil
}
