// Package github implements the release source against the GitHub releases
// API. It contains no decision logic; upgrade-path decisions belong to the
// engine.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jjgreer/appup/internal/engine"
	"github.com/jjgreer/appup/internal/version"
)

const defaultBaseURL = "https://api.github.com"

// Client fetches releases and assets for one repository.
type Client struct {
	owner   string
	repo    string
	token   string // optional, required for private repositories
	baseURL string
	client  *http.Client
}

// NewClient creates a release client for owner/repo.
func NewClient(owner, repo string) *Client {
	return &Client{
		owner:   owner,
		repo:    repo,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken sets a bearer token for authentication.
func (c *Client) WithToken(token string) *Client {
	c.token = token
	return c
}

// WithBaseURL overrides the API base URL (for testing).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

type apiRelease struct {
	TagName     string    `json:"tag_name"`
	Body        string    `json:"body"`
	Prerelease  bool      `json:"prerelease"`
	Draft       bool      `json:"draft"`
	PublishedAt time.Time `json:"published_at"`
	Assets      []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// ListReleases returns the repository's releases, newest first, as reported
// by the API. Drafts and releases with unparseable tags are dropped.
func (c *Client) ListReleases(ctx context.Context) ([]engine.Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=100", c.baseURL, c.owner, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &engine.NetworkError{Op: "list releases", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &engine.NetworkError{Op: "list releases", Status: resp.StatusCode}
	}

	var raw []apiRelease
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &engine.NetworkError{Op: "list releases", Err: fmt.Errorf("decoding response: %w", err)}
	}

	releases := make([]engine.Release, 0, len(raw))
	for _, r := range raw {
		if r.Draft {
			continue
		}
		v, err := version.Parse(r.TagName)
		if err != nil {
			continue
		}
		name, url := pickAsset(r)
		releases = append(releases, engine.Release{
			Version:     v,
			AssetName:   name,
			AssetURL:    url,
			Notes:       r.Body,
			Prerelease:  r.Prerelease,
			PublishedAt: r.PublishedAt,
		})
	}
	return releases, nil
}

// pickAsset chooses the release's package archive: the first zip asset, or
// the first asset when none is a zip.
func pickAsset(r apiRelease) (name, url string) {
	for _, a := range r.Assets {
		if strings.HasSuffix(a.Name, ".zip") {
			return a.Name, a.BrowserDownloadURL
		}
	}
	if len(r.Assets) > 0 {
		return r.Assets[0].Name, r.Assets[0].BrowserDownloadURL
	}
	return "", ""
}

// FetchAsset opens the release's asset for streaming.
func (c *Client) FetchAsset(ctx context.Context, rel engine.Release) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rel.AssetURL, nil)
	if err != nil {
		return nil, 0, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, &engine.NetworkError{Op: "fetch asset", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, &engine.NetworkError{Op: "fetch asset", Status: resp.StatusCode}
	}
	return resp.Body, resp.ContentLength, nil
}
