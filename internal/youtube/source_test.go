package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

const commentThreadsResponse = `{
  "nextPageToken": "QURTSl9p",
  "items": [
    {"snippet": {"topLevelComment": {"snippet": {
      "authorDisplayName": "@joão",
      "textDisplay": "Muito bom! 👍",
      "likeCount": 12,
      "publishedAt": "2024-03-01T12:00:00Z"
    }}}},
    {"snippet": {}},
    {"snippet": {"topLevelComment": {"snippet": {
      "authorDisplayName": "",
      "textDisplay": "meh",
      "publishedAt": "2024-03-02T12:00:00Z"
    }}}}
  ]
}`

func TestAPISourceListPage(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(commentThreadsResponse))
	}))
	defer server.Close()

	service, err := ytapi.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithAPIKey("test-key"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	source := &APISource{service: service}
	page, err := source.ListPage(context.Background(), "vid42", "CAUQAA", 15)
	require.NoError(t, err)

	assert.Equal(t, []string{"vid42"}, query["videoId"])
	assert.Equal(t, []string{"CAUQAA"}, query["pageToken"])
	assert.Equal(t, []string{"15"}, query["maxResults"])
	assert.Equal(t, []string{"plainText"}, query["textFormat"])

	assert.Equal(t, "QURTSl9p", page.NextPageToken)
	require.Len(t, page.Items, 2)
	assert.Equal(t, Item{Author: "@joão", Text: "Muito bom! 👍", LikeCount: 12, PublishedAt: "2024-03-01T12:00:00Z"}, page.Items[0])
	assert.Equal(t, int64(0), page.Items[1].LikeCount)
}

func TestAPISourceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "commentsDisabled"}}`))
	}))
	defer server.Close()

	service, err := ytapi.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithAPIKey("test-key"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	_, err = (&APISource{service: service}).ListPage(context.Background(), "vid", "", 100)
	assert.ErrorContains(t, err, "commentsDisabled")
}

func TestNewAPISourceNeedsCredentials(t *testing.T) {
	_, err := NewAPISource(context.Background(), Config{})
	assert.Error(t, err)
}
