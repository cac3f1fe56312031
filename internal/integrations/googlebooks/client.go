// Package googlebooks reads volume metadata from the Google Books API.
package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	booksdomain "book-club-go/internal/domain/books"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1"
	defaultTimeout = 10 * time.Second
	unknownTitle   = "Unknown title"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string   `json:"title"`
	Authors             []string `json:"authors"`
	Description         string   `json:"description"`
	PageCount           int      `json:"pageCount"`
	ImageLinks          struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
}

type searchResponse struct {
	Items []volume `json:"items"`
}

func (c *Client) Search(ctx context.Context, query string, limit int) ([]booksdomain.Metadata, error) {
	params := url.Values{}
	params.Set("q", query)
	if limit > 0 {
		params.Set("maxResults", strconv.Itoa(limit))
	}
	c.addKey(params)

	var payload searchResponse
	if err := c.get(ctx, c.baseURL+"/volumes?"+params.Encode(), &payload); err != nil {
		return nil, err
	}

	results := make([]booksdomain.Metadata, 0, len(payload.Items))
	for _, item := range payload.Items {
		results = append(results, toMetadata(item))
	}
	return results, nil
}

func (c *Client) Find(ctx context.Context, externalID string) (*booksdomain.Metadata, error) {
	params := url.Values{}
	c.addKey(params)

	endpoint := c.baseURL + "/volumes/" + url.PathEscape(externalID)
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	var payload volume
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	metadata := toMetadata(payload)
	if metadata.ExternalID == "" {
		metadata.ExternalID = externalID
	}
	return &metadata, nil
}

func (c *Client) addKey(params url.Values) {
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
}

func (c *Client) get(ctx context.Context, endpoint string, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return booksdomain.ErrCatalogBookNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("google books: unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("google books: decode: %w", err)
	}
	return nil
}

func toMetadata(item volume) booksdomain.Metadata {
	info := item.VolumeInfo

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = unknownTitle
	}

	cover := info.ImageLinks.Thumbnail
	if cover == "" {
		cover = info.ImageLinks.SmallThumbnail
	}

	return booksdomain.Metadata{
		ExternalID:  item.ID,
		Title:       title,
		Authors:     info.Authors,
		Description: info.Description,
		PageCount:   info.PageCount,
		CoverURL:    cover,
		ISBN:        extractISBN(info),
	}
}

// extractISBN prefers ISBN_13 over ISBN_10.
func extractISBN(info volumeInfo) string {
	var isbn10 string
	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			if isbn10 == "" {
				isbn10 = id.Identifier
			}
		}
	}
	return isbn10
}
