package twitch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pek0hara/video-frame-capture/internal/domain/port"
)

const defaultBaseURL = "https://api.twitch.tv/helix"

// recentVideoLimit matches the newest-five listing the poller works through.
const recentVideoLimit = 5

// Catalog is a minimal helix API client covering user lookup and archive
// listing.
type Catalog struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	token      string
}

func NewCatalog(clientID, token string) *Catalog {
	return &Catalog{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    defaultBaseURL,
		clientID:   clientID,
		token:      token,
	}
}

// NewCatalogWithBaseURL exists for tests pointing at a stub server.
func NewCatalogWithBaseURL(clientID, token, baseURL string) *Catalog {
	c := NewCatalog(clientID, token)
	c.baseURL = baseURL
	return c
}

type userResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

type videoResponse struct {
	Data []struct {
		ID        string    `json:"id"`
		Title     string    `json:"title"`
		URL       string    `json:"url"`
		CreatedAt time.Time `json:"created_at"`
	} `json:"data"`
}

func (c *Catalog) UserID(ctx context.Context, login string) (string, error) {
	var resp userResponse
	query := url.Values{"login": []string{login}}
	if err := c.get(ctx, "/users", query, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("twitch user %q not found", login)
	}
	return resp.Data[0].ID, nil
}

func (c *Catalog) RecentVideos(ctx context.Context, userID string) ([]port.CatalogVideo, error) {
	var resp videoResponse
	query := url.Values{
		"user_id": []string{userID},
		"type":    []string{"archive"},
		"sort":    []string{"time"},
		"first":   []string{fmt.Sprintf("%d", recentVideoLimit)},
	}
	if err := c.get(ctx, "/videos", query, &resp); err != nil {
		return nil, err
	}

	videos := make([]port.CatalogVideo, 0, len(resp.Data))
	for _, v := range resp.Data {
		if v.ID == "" {
			continue
		}
		videos = append(videos, port.CatalogVideo{
			ID:        v.ID,
			Title:     v.Title,
			URL:       v.URL,
			CreatedAt: v.CreatedAt,
		})
	}
	return videos, nil
}

func (c *Catalog) get(ctx context.Context, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build helix request: %w", err)
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("helix request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("helix request %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode helix response %s: %w", path, err)
	}
	return nil
}
