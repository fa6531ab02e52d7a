package news

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/watchlist/internal/external/events"
	"github.com/wonny/watchlist/internal/external/ft"
	"github.com/wonny/watchlist/internal/testutil"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type fakeHeadlines struct {
	calls int
	err   error
	items []ft.Headline
}

func (f *fakeHeadlines) Search(_ context.Context, _ string, count int) ([]ft.Headline, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if count < len(f.items) {
		return f.items[:count], nil
	}
	return f.items, nil
}

type fakeActions struct {
	calls   int
	actions []events.Action
}

func (f *fakeActions) Actions(context.Context, string) ([]events.Action, error) {
	f.calls++
	return f.actions, nil
}

func setup() (*Service, *fakeHeadlines, *fakeActions, *testutil.Clock) {
	h := &fakeHeadlines{items: []ft.Headline{
		{Title: "A", PublishedAt: "2025-04-15T04:30:00Z", Source: "https://ft.com/a"},
		{Title: "B", PublishedAt: "not a date"},
	}}
	a := &fakeActions{actions: []events.Action{
		{Type: "Dividend", Date: time.Date(2025, 5, 30, 0, 0, 0, 0, time.UTC), Details: "Rs 22"},
	}}
	clock := testutil.NewClock(time.Date(2025, 4, 15, 10, 0, 0, 0, ist))
	s := NewService(h, a, Options{
		Location:  ist,
		NewsTTL:   5 * time.Minute,
		EventsTTL: time.Hour,
		Clock:     clock.Now,
	})
	return s, h, a, clock
}

func TestRecentNews(t *testing.T) {
	s, h, _, clock := setup()
	ctx := context.Background()

	items, err := s.RecentNews(ctx, "INFY", 0)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].PublishedAt)
	assert.Equal(t, 10, items[0].PublishedAt.Hour())
	assert.Equal(t, ist, items[0].PublishedAt.Location())
	assert.Nil(t, items[1].PublishedAt)

	_, err = s.RecentNews(ctx, "INFY", DefaultCount)
	require.NoError(t, err)
	assert.Equal(t, 1, h.calls)

	// different count is a different key
	_, err = s.RecentNews(ctx, "INFY", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, h.calls)

	clock.Advance(5 * time.Minute)
	_, err = s.RecentNews(ctx, "INFY", DefaultCount)
	require.NoError(t, err)
	assert.Equal(t, 3, h.calls)
}

func TestRecentNews_ErrorNotCached(t *testing.T) {
	s, h, _, _ := setup()
	h.err = errors.New("boom")

	_, err := s.RecentNews(context.Background(), "INFY", 5)
	assert.Error(t, err)

	h.err = nil
	items, err := s.RecentNews(context.Background(), "INFY", 5)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, h.calls)
}

func TestNewsAndEvents(t *testing.T) {
	s, h, a, clock := setup()
	ctx := context.Background()

	b, err := s.NewsAndEvents(ctx, "INFY", 5)
	require.NoError(t, err)
	assert.Len(t, b.News, 2)
	require.Len(t, b.Events, 1)
	assert.Equal(t, ist, b.Events[0].Date.Location())

	// bundle expires with the news TTL, events keep their own hour
	clock.Advance(6 * time.Minute)
	_, err = s.NewsAndEvents(ctx, "INFY", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, h.calls)
	assert.Equal(t, 1, a.calls)

	assert.Len(t, s.Stats(), 3)
}
