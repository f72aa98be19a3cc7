// Package learning records conversational interactions into pattern memory,
// retrains a versioned model state on a fixed cadence and serves suggestions.
package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/rcliao/signal-memory/internal/keywords"
	"github.com/rcliao/signal-memory/internal/model"
	"github.com/rcliao/signal-memory/internal/pattern"
	"github.com/rcliao/signal-memory/internal/store"
)

// Interaction is one exchange supplied by the chat layer.
type Interaction struct {
	UserMessage string
	AIResponse  string
	// ContextRef is opaque caller data, kept verbatim.
	ContextRef json.RawMessage
	Mode       string
}

// Controller owns the interaction log, the pattern memory and the model state.
//
// Thread Safety: all methods are safe for concurrent use. At most one retrain
// cycle runs at a time; a Retrain call made while one is in flight is a no-op.
type Controller struct {
	kv        store.KV
	journal   store.Journal
	extractor *keywords.Extractor
	patterns  *pattern.Memory
	logger    *zap.Logger
	opts      Options
	now       func() time.Time

	// mu protects everything below.
	mu       sync.Mutex
	log      []model.InteractionRecord
	state    model.ModelState
	training chan struct{} // non-nil while a retrain is in flight
	closed   bool
	entropy  io.Reader
}

// New creates a Controller persisting through kv. Call Load to restore a
// previous snapshot and Close to wait for in-flight work on shutdown.
func New(kv store.KV, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		kv:      kv,
		logger:  logger,
		opts:    DefaultOptions(),
		now:     func() time.Time { return time.Now().UTC() },
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.opts = c.opts.withDefaults()
	if c.extractor == nil {
		c.extractor = keywords.New(keywords.DefaultOptions())
	}
	c.patterns = pattern.NewMemory(
		pattern.WithMaxResponses(c.opts.MaxResponses),
		pattern.WithClock(c.now),
	)
	c.state = c.defaultState()

	return c
}

func (c *Controller) defaultState() model.ModelState {
	return model.ModelState{Version: c.opts.InitialVersion}
}

// RecordInteraction appends the exchange to the log, teaches every keyword of
// the user message (repeats included) the response, and starts a retrain in
// the background when the log length reaches a multiple of RetrainEvery.
// Faults are logged, never returned; the result reports success.
func (c *Controller) RecordInteraction(ctx context.Context, in Interaction) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("record interaction panicked", zap.Any("panic", r))
			ok = false
		}
	}()

	rec, n, err := c.appendLog(in)
	if err != nil {
		c.logger.Warn("record interaction rejected", zap.Error(err))
		return false
	}

	for _, kw := range c.extractor.Extract(in.UserMessage) {
		c.patterns.Record(kw, in.AIResponse)
	}

	if c.journal != nil {
		if err := c.journal.Append(ctx, rec, c.opts.MaxInteractions); err != nil {
			c.logger.Warn("journal append failed", zap.String("id", rec.ID), zap.Error(err))
		}
	}

	if n%c.opts.RetrainEvery == 0 {
		c.logger.Debug("retrain threshold reached", zap.Int("interactions", n))
		c.Retrain(context.WithoutCancel(ctx))
	}

	return true
}

func (c *Controller) appendLog(in Interaction) (model.InteractionRecord, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return model.InteractionRecord{}, 0, fmt.Errorf("controller closed")
	}

	now := c.now()
	rec := model.InteractionRecord{
		ID:          ulid.MustNew(ulid.Timestamp(now), c.entropy).String(),
		Timestamp:   now,
		UserMessage: in.UserMessage,
		AIResponse:  in.AIResponse,
		ContextRef:  in.ContextRef,
		Mode:        in.Mode,
	}

	c.log = append(c.log, rec)
	if over := len(c.log) - c.opts.MaxInteractions; over > 0 {
		c.log = append([]model.InteractionRecord(nil), c.log[over:]...)
	}
	return rec, len(c.log), nil
}

// Interactions returns a copy of the current log, oldest first.
func (c *Controller) Interactions() []model.InteractionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.InteractionRecord(nil), c.log...)
}

// Suggest returns the most recent response taught to the best matching
// keyword of userMessage. It never blocks on a retrain.
func (c *Controller) Suggest(userMessage string) (string, bool) {
	rec, ok := c.patterns.BestMatch(c.extractor.Extract(userMessage))
	if !ok || len(rec.RecentResponses) == 0 {
		return "", false
	}
	return rec.RecentResponses[0], true
}

// Pattern returns the learned record for keyword.
func (c *Controller) Pattern(keyword string) (model.PatternRecord, bool) {
	return c.patterns.Get(keyword)
}

// Stats reports the learner's size and model state.
func (c *Controller) Stats() model.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return model.Stats{
		LearningDataPoints: len(c.log),
		PatternCount:       c.patterns.Len(),
		Version:            c.state.Version,
		LastTrainingDate:   copyTime(c.state.LastTrainingDate),
		AccuracyScore:      c.state.AccuracyScore,
		IsTraining:         c.state.IsTraining,
	}
}

// State returns a copy of the model state.
func (c *Controller) State() model.ModelState {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.LastTrainingDate = copyTime(s.LastTrainingDate)
	return s
}

// Close rejects further interactions and waits for an in-flight retrain.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	return c.WaitContext(ctx)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
