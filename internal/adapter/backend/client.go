// Package backend is the transport gateway to the hazard feed backend. Every
// failure is normalized into a *Error; nothing panics past this boundary.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/hazard-map-overlay/internal/domain"
	"github.com/couchcryptid/hazard-map-overlay/internal/observability"
	"github.com/tidwall/gjson"
)

// EndpointWeather is the point-query endpoint. Layer endpoints are owned by
// their layer profiles.
const EndpointWeather = "/api/weather"

// WeatherLabel is the source label used for point-query errors.
const WeatherLabel = "Weather"

// maxLoggedBody caps the raw body attached to error logs.
const maxLoggedBody = 512

// Client fetches JSON payloads from the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a gateway for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

// FetchArray requests endpoint and returns the elements of its JSON array
// payload. label names the source in error messages and logs.
func (c *Client) FetchArray(ctx context.Context, endpoint string, params url.Values, label string) ([]json.RawMessage, error) {
	body, err := c.get(ctx, endpoint, params, label)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, c.fail(&Error{Source: label, Kind: KindMalformed, Status: http.StatusOK,
			Message: label + " payload malformed: invalid JSON"}, body)
	}
	payload := gjson.ParseBytes(body)
	if !payload.IsArray() {
		return nil, c.fail(&Error{Source: label, Kind: KindMalformed, Status: http.StatusOK,
			Message: label + " payload malformed: not an array"}, body)
	}

	records := make([]json.RawMessage, 0, len(payload.Array()))
	payload.ForEach(func(_, v gjson.Result) bool {
		records = append(records, json.RawMessage(v.Raw))
		return true
	})

	c.metrics.BackendRequests.WithLabelValues(label, "success").Inc()
	return records, nil
}

// FetchWeather requests current conditions at a coordinate.
func (c *Client) FetchWeather(ctx context.Context, lat, lon float64) (domain.WeatherReport, error) {
	params := url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
	body, err := c.get(ctx, EndpointWeather, params, WeatherLabel)
	if err != nil {
		return domain.WeatherReport{}, err
	}

	payload := gjson.ParseBytes(body)
	if !gjson.ValidBytes(body) || !payload.IsObject() {
		return domain.WeatherReport{}, c.fail(&Error{Source: WeatherLabel, Kind: KindMalformed, Status: http.StatusOK,
			Message: WeatherLabel + " payload malformed: not an object"}, body)
	}
	if msg := payload.Get("error"); msg.Exists() && msg.String() != "" {
		return domain.WeatherReport{}, c.fail(&Error{Source: WeatherLabel, Kind: KindHTTP, Status: http.StatusOK,
			Message: msg.String()}, body)
	}

	var report domain.WeatherReport
	if err := json.Unmarshal(body, &report); err != nil {
		return domain.WeatherReport{}, c.fail(&Error{Source: WeatherLabel, Kind: KindMalformed, Status: http.StatusOK,
			Message: fmt.Sprintf("%s payload malformed: %v", WeatherLabel, err)}, body)
	}

	c.metrics.BackendRequests.WithLabelValues(WeatherLabel, "success").Inc()
	return report, nil
}

// get performs the request and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, label string) ([]byte, error) {
	start := time.Now()
	defer func() {
		c.metrics.BackendDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	}()

	fullURL := c.baseURL + endpoint
	if q := encodeParams(params); q != "" {
		fullURL += "?" + q
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, c.fail(&Error{Source: label, Kind: KindTransport, Message: transportMessage(label, err)}, nil)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(&Error{Source: label, Kind: KindTransport, Message: transportMessage(label, err)}, nil)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&Error{Source: label, Kind: KindTransport, Status: resp.StatusCode,
			Message: transportMessage(label, err)}, nil)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(&Error{Source: label, Kind: KindHTTP, Status: resp.StatusCode,
			Message: httpErrorMessage(label, resp.Status, body)}, body)
	}
	return body, nil
}

// fail logs and counts a normalized error before handing it back.
func (c *Client) fail(e *Error, body []byte) *Error {
	c.logger.Error("backend request failed",
		"source", e.Source,
		"kind", e.Kind,
		"status", e.Status,
		"error", e.Message,
		"body", truncateBody(body),
	)
	c.metrics.BackendRequests.WithLabelValues(e.Source, string(e.Kind)).Inc()
	return e
}

// encodeParams drops empty values before encoding.
func encodeParams(params url.Values) string {
	clean := url.Values{}
	for key, values := range params {
		for _, v := range values {
			if strings.TrimSpace(v) != "" {
				clean.Add(key, v)
			}
		}
	}
	return clean.Encode()
}

// httpErrorMessage prefers the JSON "error" field. Any other JSON body gets
// the status line alone; a non-JSON body is appended as text.
func httpErrorMessage(label, status string, body []byte) string {
	if gjson.ValidBytes(body) {
		if msg := gjson.GetBytes(body, "error"); msg.Type == gjson.String && strings.TrimSpace(msg.Str) != "" {
			return msg.Str
		}
		return fmt.Sprintf("%s API error (%s)", label, status)
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return fmt.Sprintf("%s API error (%s): %s", label, status, text)
	}
	return fmt.Sprintf("%s API error (%s)", label, status)
}

func transportMessage(label string, err error) string {
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return label + " request failed (network error)"
}

func truncateBody(body []byte) string {
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
