package learning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rcliao/signal-memory/internal/model"
	"github.com/rcliao/signal-memory/internal/store"
)

func newTestController(t *testing.T, kv store.KV, opts ...Option) (*Controller, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	base := []Option{WithOptions(Options{TrainingDelay: time.Millisecond})}
	c := New(kv, zap.New(core), append(base, opts...)...)
	t.Cleanup(func() { c.Close(context.Background()) })
	return c, logs
}

func record(t *testing.T, c *Controller, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		ok := c.RecordInteraction(context.Background(), Interaction{
			UserMessage: fmt.Sprintf("status of order %d", i),
			AIResponse:  fmt.Sprintf("order %d ships friday", i),
		})
		require.True(t, ok)
	}
}

type failingKV struct {
	getErr error
	setErr error
}

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.getErr }
func (f failingKV) Set(context.Context, string, []byte) error { return f.setErr }

type panicJournal struct{}

func (panicJournal) Append(context.Context, model.InteractionRecord, int) error {
	panic("disk on fire")
}
func (panicJournal) Recent(context.Context, int) ([]model.InteractionRecord, error) { return nil, nil }

func TestRecordInteraction_TeachesKeywords(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore())

	ok := c.RecordInteraction(context.Background(), Interaction{
		UserMessage: "Steel delivery delayed, steel order pending",
		AIResponse:  "Contact the steel supplier",
		ContextRef:  json.RawMessage(`{"order":"PO-1"}`),
		Mode:        "chat",
	})
	require.True(t, ok)

	logged := c.Interactions()
	require.Len(t, logged, 1)
	assert.NotEmpty(t, logged[0].ID)
	assert.Equal(t, "chat", logged[0].Mode)
	assert.JSONEq(t, `{"order":"PO-1"}`, string(logged[0].ContextRef))

	// "steel" appears twice in the message and is recorded twice.
	rec, ok := c.Pattern("steel")
	require.True(t, ok)
	assert.Equal(t, 2, rec.Count)
	assert.Equal(t, []string{"Contact the steel supplier", "Contact the steel supplier"}, rec.RecentResponses)

	st := c.Stats()
	assert.Equal(t, 1, st.LearningDataPoints)
	assert.Equal(t, 5, st.PatternCount)
}

func TestRecordInteraction_SlidingWindow(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore(), WithOptions(Options{
		TrainingDelay:   time.Millisecond,
		MaxInteractions: 10,
	}))

	record(t, c, 12)

	logged := c.Interactions()
	require.Len(t, logged, 10)
	assert.Equal(t, "status of order 2", logged[0].UserMessage)
	assert.Equal(t, "status of order 11", logged[9].UserMessage)
}

func TestRetrain_FiresOnFiftiethInteraction(t *testing.T) {
	kv := store.NewMemoryStore()
	c, _ := newTestController(t, kv, WithOptions(Options{TrainingDelay: 20 * time.Millisecond}))

	record(t, c, 49)
	c.Wait()
	assert.Equal(t, DefaultVersion, c.State().Version)
	assert.False(t, c.State().IsTraining)
	_, err := kv.Get(context.Background(), DefaultSnapshotKey)
	assert.ErrorIs(t, err, store.ErrNotFound)

	record(t, c, 1)
	c.Wait()

	st := c.State()
	assert.Equal(t, "1.0.1", st.Version)
	assert.InDelta(t, 0.01, st.AccuracyScore, 1e-9)
	require.NotNil(t, st.LastTrainingDate)
	assert.False(t, st.IsTraining)

	_, err = kv.Get(context.Background(), DefaultSnapshotKey)
	assert.NoError(t, err)
}

func TestRetrain_ReentrantCallIsNoop(t *testing.T) {
	c, logs := newTestController(t, store.NewMemoryStore(), WithOptions(Options{TrainingDelay: 50 * time.Millisecond}))

	done, started := c.Retrain(context.Background())
	require.True(t, started)
	assert.True(t, c.State().IsTraining)

	again, startedAgain := c.Retrain(context.Background())
	assert.False(t, startedAgain)

	<-done
	<-again
	c.Wait()

	assert.Equal(t, "1.0.1", c.State().Version)
	assert.False(t, c.State().IsTraining)
	assert.Equal(t, 1, logs.FilterMessage("retrain complete").Len())
}

func TestRetrain_AccuracyBoundedAndMonotonic(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore())

	prev := c.State().AccuracyScore
	require.Zero(t, prev)
	for i := 0; i < 200; i++ {
		done, started := c.Retrain(context.Background())
		require.True(t, started, "cycle %d", i)
		<-done

		acc := c.State().AccuracyScore
		assert.GreaterOrEqual(t, acc, prev, "cycle %d", i)
		assert.LessOrEqual(t, acc, DefaultAccuracyCeiling, "cycle %d", i)
		prev = acc
	}

	st := c.State()
	assert.Equal(t, DefaultAccuracyCeiling, st.AccuracyScore)
	assert.Equal(t, "1.0.200", st.Version)
}

func TestRetrain_SaveFailureClearsTraining(t *testing.T) {
	c, logs := newTestController(t, failingKV{getErr: store.ErrNotFound, setErr: errors.New("read-only")})

	done, started := c.Retrain(context.Background())
	require.True(t, started)
	<-done

	assert.False(t, c.State().IsTraining)
	assert.Equal(t, "1.0.1", c.State().Version)
	assert.Equal(t, 1, logs.FilterMessage("retrain snapshot save failed").Len())

	_, started = c.Retrain(context.Background())
	assert.True(t, started)
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	a, _ := newTestController(t, kv)

	record(t, a, 7)
	require.True(t, a.RecordInteraction(ctx, Interaction{UserMessage: "resin resin shortage", AIResponse: "reorder resin"}))
	done, _ := a.Retrain(ctx)
	<-done

	b, _ := newTestController(t, kv)
	require.NoError(t, b.Load(ctx))

	want := a.Export()
	got := b.Export()
	assert.Equal(t, want.Patterns, got.Patterns)
	assert.Equal(t, want.Version, got.Version)
	assert.Equal(t, want.AccuracyScore, got.AccuracyScore)
	require.NotNil(t, got.LastTrainingDate)
	assert.True(t, want.LastTrainingDate.Equal(*got.LastTrainingDate))

	s, ok := b.Suggest("any resin left?")
	assert.True(t, ok)
	assert.Equal(t, "reorder resin", s)
}

func TestSnapshotFormat(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	fixed := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)
	c, _ := newTestController(t, kv, WithClock(func() time.Time { return fixed }))

	require.True(t, c.RecordInteraction(ctx, Interaction{UserMessage: "pallet", AIResponse: "Dock 4"}))
	require.NoError(t, c.Save(ctx))

	data, err := kv.Get(ctx, DefaultSnapshotKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"patterns": [["pallet", {"count": 1, "recentResponses": ["Dock 4"], "lastUsedAt": "2026-05-04T03:02:01Z"}]],
		"version": "1.0.0",
		"accuracyScore": 0
	}`, string(data))
}

func TestLoad_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing snapshot", func(t *testing.T) {
		c, _ := newTestController(t, store.NewMemoryStore())
		assert.NoError(t, c.Load(ctx))
		assert.Equal(t, DefaultVersion, c.State().Version)
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		kv := store.NewMemoryStore()
		kv.Set(ctx, DefaultSnapshotKey, []byte("{not json"))
		c, logs := newTestController(t, kv)
		c.patterns.Record("stale", "x")

		assert.Error(t, c.Load(ctx))
		assert.Equal(t, DefaultVersion, c.State().Version)
		assert.Zero(t, c.Stats().PatternCount)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("store error", func(t *testing.T) {
		c, _ := newTestController(t, failingKV{getErr: errors.New("io")})
		assert.Error(t, c.Load(ctx))
		assert.Equal(t, DefaultVersion, c.State().Version)
	})

	t.Run("invalid values repaired", func(t *testing.T) {
		kv := store.NewMemoryStore()
		kv.Set(ctx, DefaultSnapshotKey, []byte(`{"patterns":[],"version":"banana","accuracyScore":7}`))
		c, _ := newTestController(t, kv)

		require.NoError(t, c.Load(ctx))
		assert.Equal(t, DefaultVersion, c.State().Version)
		assert.Equal(t, DefaultAccuracyCeiling, c.State().AccuracyScore)
	})
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	c, _ := newTestController(t, kv)

	err := c.Import(ctx, model.Snapshot{Version: "nope"})
	assert.Error(t, err)

	snap := model.Snapshot{
		Patterns: []model.PatternEntry{{Keyword: "crane", Record: model.PatternRecord{Count: 3, RecentResponses: []string{"Bay 2"}}}},
		Version:  "2.4.9",
	}
	require.NoError(t, c.Import(ctx, snap))
	assert.Equal(t, "2.4.9", c.State().Version)

	s, ok := c.Suggest("Where is the crane?")
	assert.True(t, ok)
	assert.Equal(t, "Bay 2", s)

	_, err = kv.Get(ctx, DefaultSnapshotKey)
	assert.NoError(t, err)
}

func TestSuggest(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(t, store.NewMemoryStore())

	_, ok := c.Suggest("")
	assert.False(t, ok)

	c.RecordInteraction(ctx, Interaction{UserMessage: "forklift battery", AIResponse: "charge overnight"})
	c.RecordInteraction(ctx, Interaction{UserMessage: "forklift brakes", AIResponse: "call maintenance"})

	s, ok := c.Suggest("the forklift again")
	require.True(t, ok)
	assert.Equal(t, "call maintenance", s)

	before, _ := c.Pattern("forklift")
	c.Suggest("forklift")
	after, _ := c.Pattern("forklift")
	assert.Equal(t, before, after)

	_, ok = c.Suggest("unrelated words entirely")
	assert.False(t, ok)
}

func TestJournalRestoresLog(t *testing.T) {
	ctx := context.Background()
	ms := store.NewMemoryStore()

	a, _ := newTestController(t, ms, WithJournal(ms))
	record(t, a, 3)

	b, _ := newTestController(t, ms, WithJournal(ms))
	require.NoError(t, b.Load(ctx))
	assert.Equal(t, 3, b.Stats().LearningDataPoints)
	assert.Equal(t, a.Interactions(), b.Interactions())
}

func TestRecordInteraction_RecoversFromPanic(t *testing.T) {
	c, logs := newTestController(t, store.NewMemoryStore(), WithJournal(panicJournal{}))

	ok := c.RecordInteraction(context.Background(), Interaction{UserMessage: "hello there", AIResponse: "hi"})
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("record interaction panicked").Len())
}

func TestClose(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore(), WithOptions(Options{TrainingDelay: 20 * time.Millisecond}))

	_, started := c.Retrain(context.Background())
	require.True(t, started)

	require.NoError(t, c.Close(context.Background()))
	assert.False(t, c.State().IsTraining)
	assert.Equal(t, "1.0.1", c.State().Version)

	assert.False(t, c.RecordInteraction(context.Background(), Interaction{UserMessage: "late order"}))
	_, started = c.Retrain(context.Background())
	assert.False(t, started)
}

func TestConcurrentRecordAndSuggest(t *testing.T) {
	c, _ := newTestController(t, store.NewMemoryStore())
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.RecordInteraction(ctx, Interaction{
					UserMessage: fmt.Sprintf("conveyor belt worker%d", w),
					AIResponse:  fmt.Sprintf("tension belt %d-%d", w, i),
				})
			}
		}(w)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c.Suggest("conveyor")
				c.Stats()
			}
		}()
	}
	wg.Wait()
	c.Wait()

	st := c.Stats()
	assert.Equal(t, 200, st.LearningDataPoints)
	assert.False(t, st.IsTraining)

	rec, ok := c.Pattern("conveyor")
	require.True(t, ok)
	assert.Equal(t, 200, rec.Count)
	assert.Len(t, rec.RecentResponses, DefaultMaxResponses)

	sv, err := parseVersion(st.Version)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sv.Patch(), uint64(1))
	assert.LessOrEqual(t, sv.Patch(), uint64(4))
}
