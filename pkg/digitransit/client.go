// Package digitransit is the client for the regional transit data GraphQL
// service. All timetable style queries go through the query cache; the
// service is rate limited upstream and the cache exists to respect that.
package digitransit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nysselive/nysselive/pkg/config"
	"github.com/nysselive/nysselive/pkg/querycache"
	"github.com/nysselive/nysselive/pkg/stats"
)

const requestTimeout = 30 * time.Second

type Client struct {
	endpoint   string
	apiKey     string
	feedID     string
	httpClient *http.Client
	cache      *querycache.Cache
	collector  *stats.Collector
}

// NewClient builds a client. cache and collector may be nil, in which case
// every query goes straight to the upstream.
func NewClient(cfg config.DigitransitConfig, cache *querycache.Cache, collector *stats.Collector) *Client {
	return &Client{
		endpoint:   cfg.URL,
		apiKey:     cfg.APIKey,
		feedID:     cfg.FeedID,
		httpClient: &http.Client{Timeout: requestTimeout},
		cache:      cache,
		collector:  collector,
	}
}

func (c *Client) FeedID() string {
	return c.feedID
}

// Query sends a raw GraphQL document and returns the envelope's data field.
func (c *Client) Query(ctx context.Context, query string) (json.RawMessage, error) {
	raw, err := c.post(ctx, "application/graphql", strings.NewReader(query))
	if err != nil {
		return nil, err
	}

	return decodeEnvelope(raw)
}

// Passthrough forwards a frontend supplied JSON request body untouched and
// returns the upstream response as is.
func (c *Client) Passthrough(ctx context.Context, body []byte) ([]byte, error) {
	return c.post(ctx, "application/json", strings.NewReader(string(body)))
}

func (c *Client) post(ctx context.Context, contentType string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Digitransit-Subscription-Key", c.apiKey)

	if c.collector != nil {
		c.collector.UpstreamRequests.WithLabelValues("digitransit").Inc()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.collector != nil {
			c.collector.UpstreamFailures.WithLabelValues("digitransit").Inc()
		}
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.collector != nil {
			c.collector.UpstreamFailures.WithLabelValues("digitransit").Inc()
		}
		return nil, fmt.Errorf("digitransit returned %s: %s", resp.Status, raw)
	}

	return raw, nil
}

func decodeEnvelope(raw []byte) (json.RawMessage, error) {
	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Errors) > 0 {
		return nil, fmt.Errorf("digitransit query error: %s", envelope.Errors[0].Message)
	}

	return envelope.Data, nil
}

// cachedQuery routes a query through the cache under the given class.
func (c *Client) cachedQuery(ctx context.Context, class querycache.Class, key string, query string) (json.RawMessage, error) {
	if c.cache == nil {
		return c.Query(ctx, query)
	}

	data, err := c.cache.GetOrFetch(ctx, class, key, func(ctx context.Context) ([]byte, error) {
		return c.Query(ctx, query)
	})
	if err != nil {
		return nil, err
	}

	return json.RawMessage(data), nil
}
