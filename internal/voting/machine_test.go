package voting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"menukiosk/pkg/dates"
	"menukiosk/pkg/models"
)

type fakeSender struct {
	mu     sync.Mutex
	calls  []models.VoteRequest
	result *models.Menu
	err    error
}

func (f *fakeSender) SubmitVote(_ context.Context, req models.VoteRequest) (*models.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	return f.result, f.err
}

func (f *fakeSender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func at(h, m, s int) time.Time {
	return time.Date(2025, time.August, 17, h, m, s, 0, time.Local)
}

func todayMenu(now time.Time) *models.Menu {
	return &models.Menu{
		ID:       "m-1",
		Fecha:    dates.TodayAPI(now),
		MainDish: "Pollo a la plancha",
		Side:     "Arroz",
		Beverage: "Jugo",
		Likes:    4,
		Dislikes: 1,
	}
}

func newTestMachine(sender VoteSender, now time.Time) *Machine {
	m := NewMachine(11, 24, sender, nil)
	m.Tick(now)
	m.SetToday(todayMenu(now))
	return m
}

func TestWindowClassification(t *testing.T) {
	cases := []struct {
		h, m int
		want Mode
	}{
		{10, 59, ModeClosedWaiting},
		{11, 0, ModeOpenVoting},
		{15, 30, ModeOpenVoting},
		{23, 59, ModeOpenVoting},
		{0, 0, ModeClosedWaiting},
		{5, 0, ModeClosedWaiting},
	}
	for _, tc := range cases {
		now := at(tc.h, tc.m, 0)
		m := newTestMachine(&fakeSender{err: errors.New("down")}, now)
		assert.Equal(t, tc.want, m.Snapshot(now).Mode, "%02d:%02d", tc.h, tc.m)
	}
}

func TestClosedSnapshotCarriesCountdown(t *testing.T) {
	now := at(8, 30, 0)
	m := newTestMachine(&fakeSender{}, now)
	snap := m.Snapshot(now)
	assert.Equal(t, ModeClosedWaiting, snap.Mode)
	assert.Equal(t, "02:30:00", snap.Countdown)

	open := m.Snapshot(at(12, 0, 0))
	assert.Empty(t, open.Countdown, "no countdown while open")
}

func TestSubmitIsOptimistic(t *testing.T) {
	// The backend is down; the screen must flip to the voted state anyway.
	now := at(12, 0, 0)
	m := newTestMachine(&fakeSender{err: errors.New("backend down")}, now)

	require.NoError(t, m.Submit(now, RatingLike))

	snap := m.Snapshot(now)
	assert.Equal(t, ModeOpenVoted, snap.Mode)
	assert.Equal(t, RatingLike, snap.Marker)
	assert.True(t, snap.Celebration)
	assert.False(t, snap.Sadness)
	assert.Equal(t, CooldownTicks, snap.Cooldown)

	// Counts stay at last known values, never rolled back.
	assert.Equal(t, 5, snap.Votes.Total)
}

func TestCooldownFreesScreenAfterFiveTicks(t *testing.T) {
	now := at(12, 0, 0)
	m := newTestMachine(&fakeSender{err: errors.New("down")}, now)
	require.NoError(t, m.Submit(now, RatingDislike))

	for i := 1; i <= CooldownTicks; i++ {
		now = now.Add(time.Second)
		m.Tick(now)
		if i < CooldownTicks {
			assert.Equal(t, ModeOpenVoted, m.Snapshot(now).Mode, "tick %d", i)
		}
	}

	snap := m.Snapshot(now)
	assert.Equal(t, ModeOpenVoting, snap.Mode)
	assert.Empty(t, snap.Marker)
	assert.False(t, snap.Celebration)
	assert.False(t, snap.Sadness)
}

func TestSubmitPreconditions(t *testing.T) {
	now := at(12, 0, 0)

	m := NewMachine(11, 24, &fakeSender{}, nil)
	m.Tick(now)
	assert.ErrorIs(t, m.Submit(now, RatingLike), ErrNoMenu)

	closed := at(9, 0, 0)
	m = newTestMachine(&fakeSender{}, closed)
	assert.ErrorIs(t, m.Submit(closed, RatingLike), ErrNotOpen)

	m = newTestMachine(&fakeSender{err: errors.New("down")}, now)
	require.NoError(t, m.Submit(now, RatingLike))
	assert.ErrorIs(t, m.Submit(now, RatingDislike), ErrAlreadyVoted)
}

func TestReconcileFromSubmissionResponse(t *testing.T) {
	now := at(12, 0, 0)
	authoritative := todayMenu(now)
	authoritative.Likes = 9
	authoritative.Dislikes = 3
	sender := &fakeSender{result: authoritative}

	m := newTestMachine(sender, now)
	require.NoError(t, m.Submit(now, RatingLike))

	require.Eventually(t, func() bool {
		return m.Snapshot(now).Votes.Likes == 9
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 12, m.Snapshot(now).Votes.Total)
	assert.Equal(t, 1, sender.callCount())
}

func TestApplyAuthoritativeIgnoresOtherDays(t *testing.T) {
	now := at(12, 0, 0)
	m := newTestMachine(&fakeSender{}, now)

	stale := *todayMenu(now)
	stale.Fecha = "1/1/2020"
	stale.Likes = 99
	m.ApplyAuthoritative(stale)

	assert.Equal(t, 4, m.Snapshot(now).Votes.Likes, "other-day push must not mutate state")
}

func TestApplyAuthoritativeRequiresPinnedDay(t *testing.T) {
	now := at(12, 0, 0)
	m := NewMachine(11, 24, &fakeSender{}, nil)

	// No Tick yet, so the machine has no notion of "today".
	m.ApplyAuthoritative(*todayMenu(now))

	assert.Nil(t, m.Snapshot(now).Menu, "push before the first tick is dropped")
	assert.Zero(t, m.Snapshot(now).Votes.Total)
}

func TestApplyAuthoritativeLastWriteWins(t *testing.T) {
	now := at(12, 0, 0)
	m := newTestMachine(&fakeSender{}, now)

	first := *todayMenu(now)
	first.Likes = 10
	m.ApplyAuthoritative(first)

	second := *todayMenu(now)
	second.Likes = 7
	m.ApplyAuthoritative(second)

	assert.Equal(t, 7, m.Snapshot(now).Votes.Likes)
}

func TestDayRolloverClearsState(t *testing.T) {
	now := at(23, 59, 59)
	m := newTestMachine(&fakeSender{err: errors.New("down")}, now)
	require.NoError(t, m.Submit(now, RatingLike))

	midnight := now.Add(time.Second)
	changed := m.Tick(midnight)
	assert.True(t, changed, "tick across midnight reports a day change")

	snap := m.Snapshot(midnight)
	assert.Nil(t, snap.Menu, "yesterday's menu is discarded before the reload lands")
	assert.Zero(t, snap.Votes.Total)
	assert.Equal(t, ModeClosedWaiting, snap.Mode)
	assert.Empty(t, snap.Marker)

	assert.False(t, m.Tick(midnight.Add(time.Second)), "same day, no further change")
}
