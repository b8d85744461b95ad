package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

func ptrF(v float64) *float64 { return &v }
func ptrI(v int) *int         { return &v }

func appendTurn(text string) func(*State) error {
	return func(s *State) error {
		s.History = append(s.History, shipping.Turn{Seq: s.NextSeq(), Text: text, At: time.Now()})
		return nil
	}
}

func TestGetCreatesLazily(t *testing.T) {
	s := NewStore(DefaultConfig())

	_, err := s.Lookup("a")
	require.ErrorIs(t, err, ErrNotFound)

	st := s.Get("a")
	assert.Empty(t, st.History)
	assert.Equal(t, shipping.SatisfactionUnknown, st.Satisfaction)

	_, err = s.Lookup("a")
	require.NoError(t, err)
}

func TestUpdateCommits(t *testing.T) {
	s := NewStore(DefaultConfig())
	ctx := context.Background()

	st, err := s.Update(ctx, "a", appendTurn("hello"))
	require.NoError(t, err)
	require.Len(t, st.History, 1)
	assert.Equal(t, 1, st.History[0].Seq)

	st, err = s.Update(ctx, "a", appendTurn("again"))
	require.NoError(t, err)
	require.Len(t, st.History, 2)
	assert.Equal(t, 2, st.History[1].Seq)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := NewStore(DefaultConfig())
	ctx := context.Background()

	_, err := s.Update(ctx, "a", func(st *State) error {
		st.LastRecommendation = &shipping.Recommendation{Service: shipping.TwoDay, CostUSD: 40}
		return nil
	})
	require.NoError(t, err)

	boom := errors.New("timeout")
	prev, err := s.Update(ctx, "a", func(st *State) error {
		st.LastRecommendation.CostUSD = 999
		st.History = append(st.History, shipping.Turn{Seq: 1, Text: "half"})
		st.PendingClarification = "weight"
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 40.0, prev.LastRecommendation.CostUSD)

	got := s.Get("a")
	assert.Equal(t, 40.0, got.LastRecommendation.CostUSD)
	assert.Empty(t, got.History)
	assert.Empty(t, got.PendingClarification)
}

func TestUpdatePanicDiscardsOnlyThatSession(t *testing.T) {
	s := NewStore(DefaultConfig())
	ctx := context.Background()
	_, _ = s.Update(ctx, "good", appendTurn("hi"))
	_, _ = s.Update(ctx, "bad", appendTurn("hi"))

	_, err := s.Update(ctx, "bad", func(*State) error { panic("corrupt map") })
	require.ErrorIs(t, err, ErrSessionCorrupted)

	_, err = s.Lookup("bad")
	assert.ErrorIs(t, err, ErrNotFound)
	good, err := s.Lookup("good")
	require.NoError(t, err)
	assert.Len(t, good.History, 1)
}

func TestHistoryCapped(t *testing.T) {
	s := NewStore(Config{MaxHistory: 3, TTL: time.Hour})
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.Update(ctx, "a", appendTurn("t"))
		require.NoError(t, err)
	}
	st := s.Get("a")
	require.Len(t, st.History, 3)
	assert.Equal(t, 3, st.History[0].Seq)
	assert.Equal(t, 6, st.NextSeq())
}

func TestPerSessionSerialization(t *testing.T) {
	s := NewStore(DefaultConfig())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _, _ = s.Update(ctx, "a", appendTurn("x")) }()
		go func() { defer wg.Done(); _, _ = s.Update(ctx, "b", appendTurn("y")) }()
	}
	wg.Wait()

	a := s.Get("a")
	assert.Len(t, a.History, 20)
	assert.Equal(t, 51, a.NextSeq())
	assert.Equal(t, 51, s.Get("b").NextSeq())
}

func TestUpdateHonoursContextWhileWaiting(t *testing.T) {
	s := NewStore(DefaultConfig())
	started := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _ = s.Update(context.Background(), "a", func(*State) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Update(ctx, "a", appendTurn("late"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	close(release)
}

func TestMutatorSeesCopy(t *testing.T) {
	s := NewStore(DefaultConfig())
	ctx := context.Background()
	_, err := s.Update(ctx, "a", func(st *State) error {
		st.LastRows = []shipping.RateRow{{Zone: 2, WeightLb: 1, Prices: map[string]float64{"TwoDay": 10}}}
		return nil
	})
	require.NoError(t, err)

	got := s.Get("a")
	got.LastRows[0].Prices["TwoDay"] = 1
	assert.Equal(t, 10.0, s.Get("a").LastRows[0].Prices["TwoDay"])
}

func TestCleanupExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(Config{TTL: 30 * time.Minute, MaxHistory: 20}).WithClock(func() time.Time { return now })
	_, _ = s.Update(context.Background(), "old", appendTurn("x"))

	now = now.Add(10 * time.Minute)
	_, _ = s.Update(context.Background(), "fresh", appendTurn("y"))

	now = now.Add(25 * time.Minute)
	assert.Equal(t, 1, s.Cleanup())
	_, err := s.Lookup("old")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Lookup("fresh")
	assert.NoError(t, err)
}

func TestEndAndStats(t *testing.T) {
	s := NewStore(DefaultConfig())
	ctx := context.Background()
	_, _ = s.Update(ctx, "a", func(st *State) error {
		st.History = append(st.History, shipping.Turn{Seq: 1})
		st.LastRecommendation = &shipping.Recommendation{Service: shipping.TwoDay}
		return nil
	})
	_, _ = s.Update(ctx, "b", func(st *State) error {
		st.History = append(st.History, shipping.Turn{Seq: 1}, shipping.Turn{Seq: 2})
		st.PendingClarification = "destination"
		return nil
	})

	assert.Equal(t, Stats{Sessions: 2, Turns: 3, WithRecommendation: 1, AwaitingClarification: 1}, s.Stats())
	assert.True(t, s.End("a"))
	assert.False(t, s.End("a"))
	assert.Equal(t, 1, s.Stats().Sessions)
}

func TestSnapshotFields(t *testing.T) {
	s := NewStore(DefaultConfig())
	_, err := s.Update(context.Background(), "a", func(st *State) error {
		st.LastParameters = &shipping.ShippingParameters{
			Destination: &shipping.LocationRef{RawText: "Bostun", CorrectedText: "Boston", Zone: ptrI(7)},
			WeightLb:    ptrF(20),
			Urgency:     shipping.UrgencyOvernight,
		}
		st.Satisfaction = shipping.SatisfactionUnsure
		return nil
	})
	require.NoError(t, err)

	raw, err := s.Snapshot("a")
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	for _, k := range []string{"history", "lastParameters", "satisfaction"} {
		assert.Contains(t, m, k)
	}
	assert.Equal(t, "unsure", m["satisfaction"])

	var back State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, 7, *back.LastParameters.Destination.Zone)
	assert.Equal(t, "Boston", back.LastParameters.Destination.CorrectedText)
}

func TestSummary(t *testing.T) {
	st := State{
		LastRecommendation: &shipping.Recommendation{Service: "ExpressSaver", CostUSD: 21.3},
		LastParameters: &shipping.ShippingParameters{
			Destination: &shipping.LocationRef{RawText: "Los Angels", CorrectedText: "Los Angeles", State: "CA"},
			WeightLb:    ptrF(15),
		},
	}
	assert.Equal(t, "recommended ExpressSaver at $21.30 to Los Angeles, CA for 15 lb", st.Summary())
	assert.Empty(t, State{}.Summary())
}
