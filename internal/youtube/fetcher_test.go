package youtube

import (
	"Unbewohnte/YTCS/internal/inference"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedSource serves a fixed number of items per page regardless of the
// requested size, like an upstream that ignores maxResults.
type pagedSource struct {
	pageSize int
	total    int
	failAt   int // 1-based page number that fails, 0 never
	requests []int64
	tokens   []string
}

func (s *pagedSource) ListPage(_ context.Context, videoID string, pageToken string, maxResults int64) (*Page, error) {
	s.requests = append(s.requests, maxResults)
	s.tokens = append(s.tokens, pageToken)
	pageNo := len(s.requests)

	if pageNo == s.failAt {
		return nil, errors.New("quotaExceeded")
	}

	start := (pageNo - 1) * s.pageSize
	page := &Page{}
	for i := start; i < start+s.pageSize && i < s.total; i++ {
		page.Items = append(page.Items, Item{
			Author:      fmt.Sprintf("user%d", i),
			Text:        fmt.Sprintf("comment %d on %s", i, videoID),
			LikeCount:   int64(i),
			PublishedAt: fmt.Sprintf("2024-01-01T00:00:%02dZ", i%60),
		})
	}
	if start+s.pageSize < s.total {
		page.NextPageToken = fmt.Sprintf("token-%d", pageNo)
	}

	return page, nil
}

type countingScorer struct {
	calls   int
	failOn  string
	results map[string]float64
}

func (c *countingScorer) Classify(_ context.Context, text string) inference.Result {
	c.calls++
	if c.failOn != "" && strings.Contains(text, c.failOn) {
		return inference.Result{Polarity: 0.0, Degraded: true, Err: errors.New("boom")}
	}
	if polarity, ok := c.results[text]; ok {
		return inference.Result{Polarity: polarity}
	}
	return inference.Result{Polarity: 0.5, Label: "4 stars"}
}

func TestFetchStopsMidPageAtCap(t *testing.T) {
	source := &pagedSource{pageSize: 10, total: 1000}
	scorer := &countingScorer{}

	records, err := NewFetcher(source, scorer, 100, nil).Fetch(context.Background(), "vid", 15)
	require.NoError(t, err)

	assert.Len(t, records, 15)
	assert.Len(t, source.requests, 2)
	assert.Equal(t, []int64{15, 5}, source.requests)
	assert.Equal(t, []string{"", "token-1"}, source.tokens)
	// surplus of the second page is never classified
	assert.Equal(t, 15, scorer.calls)
	assert.Equal(t, "user14", records[14].Author)
}

func TestFetchNeverExceedsMax(t *testing.T) {
	for _, limit := range []int{0, 1, 7, 10, 11, 99, 100, 101, 250} {
		source := &pagedSource{pageSize: 10, total: 120}
		records, err := NewFetcher(source, &countingScorer{}, 100, nil).Fetch(context.Background(), "vid", limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(records), limit)
		assert.Equal(t, min(limit, 120), len(records))
	}
}

func TestFetchZeroMaxMakesNoRequest(t *testing.T) {
	source := &pagedSource{pageSize: 10, total: 10}
	records, err := NewFetcher(source, &countingScorer{}, 100, nil).Fetch(context.Background(), "vid", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.Empty(t, source.requests)
}

func TestFetchTerminatesWithoutToken(t *testing.T) {
	source := &pagedSource{pageSize: 100, total: 250}
	records, err := NewFetcher(source, &countingScorer{}, 100, nil).Fetch(context.Background(), "vid", 1_000_000)
	require.NoError(t, err)
	assert.Len(t, records, 250)
	assert.Len(t, source.requests, 3)
}

func TestFetchPageSizeCapped(t *testing.T) {
	source := &pagedSource{pageSize: 100, total: 500}
	_, err := NewFetcher(source, &countingScorer{}, 500, nil).Fetch(context.Background(), "vid", 230)
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 100, 30}, source.requests)

	source = &pagedSource{pageSize: 20, total: 500}
	_, err = NewFetcher(source, &countingScorer{}, 20, nil).Fetch(context.Background(), "vid", 50)
	require.NoError(t, err)
	assert.Equal(t, []int64{20, 20, 10}, source.requests)
}

func TestFetchKeepsPartialResultsOnPageError(t *testing.T) {
	source := &pagedSource{pageSize: 10, total: 100, failAt: 3}
	records, err := NewFetcher(source, &countingScorer{}, 10, nil).Fetch(context.Background(), "vid", 100)

	require.Error(t, err)
	assert.ErrorContains(t, err, "quotaExceeded")
	assert.Len(t, records, 20)
	assert.Len(t, source.requests, 3)
}

func TestFetchClassificationFailureIsContained(t *testing.T) {
	source := &pagedSource{pageSize: 5, total: 5}
	scorer := &countingScorer{failOn: "comment 2 "}

	records, err := NewFetcher(source, scorer, 100, nil).Fetch(context.Background(), "vid", 10)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, 5, scorer.calls)

	for i, record := range records {
		if i == 2 {
			assert.Equal(t, 0.0, record.Polarity)
			assert.True(t, record.ClassificationFailed)
			continue
		}
		assert.Equal(t, 0.5, record.Polarity)
		assert.False(t, record.ClassificationFailed)
	}
}

func TestFetchBuildsRecords(t *testing.T) {
	source := &pagedSource{pageSize: 3, total: 3}
	records, err := NewFetcher(source, &countingScorer{}, 100, nil).Fetch(context.Background(), "abc123", 3)
	require.NoError(t, err)

	assert.Equal(t, "abc123", records[1].VideoID)
	assert.Equal(t, "user1", records[1].Author)
	assert.Equal(t, "comment 1 on abc123", records[1].Text)
	assert.Equal(t, int64(1), records[1].LikeCount)
	assert.Equal(t, "2024-01-01T00:00:01Z", records[1].PublishedAt)
}

type negativeLikesSource struct{}

func (negativeLikesSource) ListPage(context.Context, string, string, int64) (*Page, error) {
	return &Page{Items: []Item{{Author: "x", Text: "y", LikeCount: -3}}}, nil
}

func TestFetchClampsLikeCount(t *testing.T) {
	records, err := NewFetcher(negativeLikesSource{}, &countingScorer{}, 100, nil).Fetch(context.Background(), "vid", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(0), records[0].LikeCount)
}
