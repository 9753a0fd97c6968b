package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	maxBodyBytes  = 32 << 20
	maxErrorBytes = 512
	startTimeForm = "2006-01-02T15:04:05"
)

// Query holds the parameters of a single feed request.
type Query struct {
	MinMagnitude float64
	Limit        int
	StartTime    *time.Time // nil leaves the feed's default window
}

// Feed is a successfully fetched response. Features are left raw so the
// transformer can drop bad records one at a time.
type Feed struct {
	Features    []gjson.Result
	Title       string
	GeneratedAt time.Time
}

// Client queries the USGS FDSN event service in GeoJSON format.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		logger:  logger,
	}
}

// Fetch issues one GET against the feed. It never retries.
func (c *Client) Fetch(ctx context.Context, q Query) (Feed, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Feed{}, fmt.Errorf("%w: waiting for rate limiter: %w", ErrTransport, err)
	}

	u, err := c.queryURL(q)
	if err != nil {
		return Feed{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Feed{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	c.logger.Debug("fetching feed", "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Feed{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return Feed{}, &StatusError{
			Code:   resp.StatusCode,
			Status: http.StatusText(resp.StatusCode),
			Body:   string(bytes.TrimSpace(body)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Feed{}, fmt.Errorf("%w: error reading resp.Body: %w", ErrTransport, err)
	}

	return parseFeed(body)
}

func (c *Client) queryURL(q Query) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid feed url %q: %w", c.baseURL, err)
	}

	params := u.Query()
	params.Set("format", "geojson")
	params.Set("orderby", "time")
	params.Set("minmagnitude", strconv.FormatFloat(q.MinMagnitude, 'f', -1, 64))
	params.Set("limit", strconv.Itoa(q.Limit))
	if q.StartTime != nil {
		params.Set("starttime", q.StartTime.UTC().Format(startTimeForm))
	}
	u.RawQuery = params.Encode()

	return u.String(), nil
}

func parseFeed(body []byte) (Feed, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Feed{}, fmt.Errorf("%w: empty response body", ErrMalformed)
	}
	if !gjson.ValidBytes(body) {
		return Feed{}, fmt.Errorf("%w: response is not valid JSON", ErrMalformed)
	}

	features := gjson.GetBytes(body, "features")
	if !features.IsArray() {
		return Feed{}, fmt.Errorf("%w: response has no features array", ErrMalformed)
	}

	feed := Feed{
		Features: features.Array(),
		Title:    gjson.GetBytes(body, "metadata.title").String(),
	}
	if generated := gjson.GetBytes(body, "metadata.generated"); generated.Type == gjson.Number {
		feed.GeneratedAt = time.UnixMilli(generated.Int()).UTC()
	}

	return feed, nil
}
