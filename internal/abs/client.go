// Package abs is a client for the Audiobookshelf REST API, limited to the
// read-only surface the bridge needs: library listing, paginated item
// listing and single-item fetches. Every call takes the API key of the
// user on whose behalf the request runs.
package abs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultPageSize    = 100
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Client interfaces with the Audiobookshelf API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Audiobookshelf API client for the given base URL,
// e.g. "http://localhost:13378".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Status is the response of the unauthenticated /status endpoint
type Status struct {
	App           string `json:"app"`
	ServerVersion string `json:"serverVersion"`
	IsInit        bool   `json:"isInit"`
}

// Library represents one Audiobookshelf library
type Library struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
}

type librariesResponse struct {
	Libraries []Library `json:"libraries"`
}

// LibraryItem is one item of a library listing. AddedAt and UpdatedAt are
// epoch seconds.
type LibraryItem struct {
	ID        string `json:"id"`
	LibraryID string `json:"libraryId"`
	AddedAt   int64  `json:"addedAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Media     Media  `json:"media"`
}

// Media carries the ebook format and descriptive metadata of an item
type Media struct {
	EbookFormat string       `json:"ebookFormat"`
	CoverPath   string       `json:"coverPath"`
	Metadata    ItemMetadata `json:"metadata"`
}

// ItemMetadata is the descriptive metadata of an item
type ItemMetadata struct {
	Title         string `json:"title"`
	AuthorName    string `json:"authorName"`
	SeriesName    string `json:"seriesName"`
	Description   string `json:"description"`
	Language      string `json:"language"`
	PublishedDate string `json:"publishedDate"`
}

// ItemsPage is one page of a library item listing
type ItemsPage struct {
	Results []LibraryItem `json:"results"`
	Total   int           `json:"total"`
	Limit   int           `json:"limit"`
	Page    int           `json:"page"`
}

// GetStatus checks server reachability; no auth required.
func (c *Client) GetStatus(ctx context.Context) (*Status, error) {
	var status Status
	if err := c.getJSON(ctx, "/status", "", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetLibraries lists all libraries visible to the API key.
func (c *Client) GetLibraries(ctx context.Context, apiKey string) ([]Library, error) {
	var resp librariesResponse
	if err := c.getJSON(ctx, "/api/libraries", apiKey, &resp); err != nil {
		return nil, err
	}
	return resp.Libraries, nil
}

// ListLibraryItems fetches one page of items for a library, including media
// metadata so titles and formats are populated.
func (c *Client) ListLibraryItems(ctx context.Context, apiKey, libraryID string, limit, page int) (*ItemsPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("page", strconv.Itoa(page))
	q.Set("include", "media,media.metadata")

	var result ItemsPage
	path := fmt.Sprintf("/api/libraries/%s/items?%s", url.PathEscape(libraryID), q.Encode())
	if err := c.getJSON(ctx, path, apiKey, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListEbookItems walks every book library the key can see and returns all
// items, preserving upstream listing order. Podcast and audiobook-only
// libraries are skipped.
func (c *Client) ListEbookItems(ctx context.Context, apiKey string) ([]LibraryItem, error) {
	libraries, err := c.GetLibraries(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	var items []LibraryItem
	for _, lib := range libraries {
		if lib.MediaType != "book" {
			continue
		}
		for page := 0; ; page++ {
			result, err := c.ListLibraryItems(ctx, apiKey, lib.ID, defaultPageSize, page)
			if err != nil {
				return nil, err
			}
			items = append(items, result.Results...)
			// A short page against the requested size means the listing
			// is exhausted; the echoed limit field is not trusted.
			if len(result.Results) < defaultPageSize {
				break
			}
		}
	}
	return items, nil
}

// GetItem fetches a single library item with its media metadata.
func (c *Client) GetItem(ctx context.Context, apiKey, itemID string) (*LibraryItem, error) {
	var item LibraryItem
	path := fmt.Sprintf("/api/items/%s?include=media,media.metadata", url.PathEscape(itemID))
	if err := c.getJSON(ctx, path, apiKey, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CoverURL builds the public cover URL for an item without performing a
// request.
func (c *Client) CoverURL(itemID string) string {
	return fmt.Sprintf("%s/api/items/%s/cover", c.baseURL, url.PathEscape(itemID))
}

// EbookURL builds the ebook file download URL for an item.
func (c *Client) EbookURL(itemID string) string {
	return fmt.Sprintf("%s/api/items/%s/ebook", c.baseURL, url.PathEscape(itemID))
}

// EbookDownloadURL builds an ebook URL carrying the API key as a query
// token, for clients that cannot attach an Authorization header.
func (c *Client) EbookDownloadURL(itemID, apiKey string) string {
	return c.EbookURL(itemID) + "?token=" + url.QueryEscape(apiKey)
}

// CoverDownloadURL is CoverURL with the API key as a query token.
func (c *Client) CoverDownloadURL(itemID, apiKey string) string {
	return c.CoverURL(itemID) + "?token=" + url.QueryEscape(apiKey)
}

// getJSON performs a GET with retries on rate limits and server errors and
// decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path, apiKey string, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = c.doGetJSON(ctx, path, apiKey, out)
		if lastErr == nil {
			return nil
		}

		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doGetJSON(ctx context.Context, path, apiKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrInvalidAPIKey
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if err == ErrRateLimited {
		return true
	}
	if _, ok := err.(*ServerError); ok {
		return true
	}
	return false
}
