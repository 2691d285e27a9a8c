package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/nivo-observations/internal/observability"
)

// DefaultBaseURL is the public Open-Meteo elevation endpoint (Copernicus DEM, 90 m).
// Non-commercial use only.
const DefaultBaseURL = "https://api.open-meteo.com/v1/elevation"

// Client implements domain.ElevationProvider using the Open-Meteo elevation API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo elevation client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Elevation returns the terrain elevation at (lat, lon) rounded to whole meters.
func (c *Client) Elevation(ctx context.Context, lat, lon float64) (int, bool, error) {
	params := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', 6, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', 6, 64)},
	}

	start := time.Now()
	meters, ok, err := c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	c.metrics.ElevationAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.ElevationRequests.WithLabelValues("error").Inc()
	case !ok:
		c.metrics.ElevationRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.ElevationRequests.WithLabelValues("success").Inc()
	}
	if err != nil {
		c.logger.Debug("elevation request failed", "lat", lat, "lon", lon, "error", err)
	}
	return meters, ok, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (int, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, false, fmt.Errorf("elevation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return 0, false, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return 0, false, fmt.Errorf("decode response: %w", err)
	}

	if len(r.Elevation) == 0 || r.Elevation[0] == nil || math.IsNaN(*r.Elevation[0]) {
		return 0, false, nil
	}
	return int(math.Round(*r.Elevation[0])), true, nil
}

// Open-Meteo API response type. Points without data come back as null.
type response struct {
	Elevation []*float64 `json:"elevation"`
}
