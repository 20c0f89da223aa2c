package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Position is the coordinate pair served by the latest-position endpoint.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Sink receives each successfully fetched sample (a map marker update or
// equivalent).
type Sink interface {
	Update(p Position)
}

type Fetcher interface {
	Fetch(ctx context.Context) (Position, error)
}

// HTTPFetcher polls a latest-position endpoint over HTTP with a bounded
// client timeout.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFetcher{url: url, client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (Position, error) {
	var p Position
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return p, err
	}
	res, err := f.client.Do(req)
	if err != nil {
		return p, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return p, fmt.Errorf("unexpected status %s", res.Status)
	}
	err = json.NewDecoder(res.Body).Decode(&p)
	return p, err
}
