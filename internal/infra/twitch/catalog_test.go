package twitch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pek0hara/video-frame-capture/internal/domain/port"
)

func newStubHelix(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/users", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "stub-client", r.Header.Get("Client-ID"))
		assert.Equal(t, "Bearer stub-token", r.Header.Get("Authorization"))
		if r.URL.Query().Get("login") != "streamer" {
			fmt.Fprint(w, `{"data":[]}`)
			return
		}
		fmt.Fprint(w, `{"data":[{"id":"42"}]}`)
	})
	mux.HandleFunc("/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "42", r.URL.Query().Get("user_id"))
		assert.Equal(t, "archive", r.URL.Query().Get("type"))
		fmt.Fprint(w, `{"data":[
			{"id":"300","title":"newest","url":"https://t.tv/300","created_at":"2024-03-03T00:00:00Z"},
			{"id":"200","title":"middle","url":"https://t.tv/200","created_at":"2024-02-02T00:00:00Z"},
			{"id":"100","title":"oldest","url":"https://t.tv/100","created_at":"2024-01-01T00:00:00Z"}
		]}`)
	})
	return httptest.NewServer(mux)
}

func TestCatalogUserID(t *testing.T) {
	srv := newStubHelix(t)
	defer srv.Close()

	catalog := NewCatalogWithBaseURL("stub-client", "stub-token", srv.URL)

	id, err := catalog.UserID(context.Background(), "streamer")
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	_, err = catalog.UserID(context.Background(), "nobody")
	assert.Error(t, err)
}

func TestCatalogRecentVideos(t *testing.T) {
	srv := newStubHelix(t)
	defer srv.Close()

	catalog := NewCatalogWithBaseURL("stub-client", "stub-token", srv.URL)

	videos, err := catalog.RecentVideos(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "300", videos[0].ID)
	assert.Equal(t, "oldest", videos[2].Title)
}

type memLedger struct {
	done map[string]bool
}

func (l *memLedger) IsProcessed(_ context.Context, videoID string) (bool, error) {
	return l.done[videoID], nil
}

func (l *memLedger) MarkProcessed(_ context.Context, videoID string) error {
	l.done[videoID] = true
	return nil
}

func TestSelectorPicksOldestUnprocessed(t *testing.T) {
	srv := newStubHelix(t)
	defer srv.Close()

	catalog := NewCatalogWithBaseURL("stub-client", "stub-token", srv.URL)
	ledger := &memLedger{done: map[string]bool{"100": true}}
	selector := NewSelector(catalog, ledger, "streamer", zap.NewNop())

	video, ok, err := selector.SelectVideo(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "200", video.ID)
}

func TestSelectorNothingNew(t *testing.T) {
	srv := newStubHelix(t)
	defer srv.Close()

	catalog := NewCatalogWithBaseURL("stub-client", "stub-token", srv.URL)
	ledger := &memLedger{done: map[string]bool{"100": true, "200": true, "300": true}}
	selector := NewSelector(catalog, ledger, "streamer", zap.NewNop())

	_, ok, err := selector.SelectVideo(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

var _ port.VideoSelector = (*Selector)(nil)
