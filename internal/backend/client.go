package backend

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

	"pvfacade/internal/classifier"
	"pvfacade/internal/logger"
	"pvfacade/internal/models"
)

// DefaultTimeout bounds every backend request client-side.
// Expiry surfaces as a network-kind FetchError, retried on the next poll tick.
const DefaultTimeout = 10 * time.Second

// Client talks to the measurement backend's REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient builds a Client for the given base URL. A zero timeout falls
// back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        log,
	}
}

// snapshotPayload is the wire shape of GET /realtime/facades/{id}.
type snapshotPayload struct {
	FacadeID   string                    `json:"facade_id"`
	FacadeType string                    `json:"facade_type"`
	Data       map[string]rawSensorValue `json:"data"`
}

type rawSensorValue struct {
	Value      float64 `json:"value"`
	Ts         string  `json:"ts"`
	DeviceID   string  `json:"device_id"`
	FacadeType string  `json:"facade_type"`
}

// FetchSnapshot retrieves and decodes the latest snapshot for one facade.
// Every key of the response's data mapping is classified into a typed channel.
// It performs no shared-state mutation; the realtime store applies the result.
func (c *Client) FetchSnapshot(ctx context.Context, facadeID string) (models.FacadeSnapshot, error) {
	body, err := c.get(ctx, "/realtime/facades/"+url.PathEscape(facadeID), nil)
	if err != nil {
		return models.FacadeSnapshot{}, err
	}

	var payload snapshotPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.FacadeSnapshot{}, NewFetchError(KindMalformed, 0, "decode snapshot", err)
	}
	if payload.Data == nil {
		return models.FacadeSnapshot{}, NewFetchError(KindMalformed, 0, "snapshot missing data field", nil)
	}

	snap := models.FacadeSnapshot{
		FacadeID:   facadeID,
		FacadeType: models.FacadeType(payload.FacadeType),
		Readings:   make(map[string]models.SensorReading, len(payload.Data)),
	}
	for key, raw := range payload.Data {
		ts, err := time.Parse(time.RFC3339, raw.Ts)
		if err != nil {
			return models.FacadeSnapshot{}, NewFetchError(KindMalformed, 0,
				fmt.Sprintf("bad timestamp for sensor %q", key), err)
		}
		snap.Readings[key] = models.SensorReading{
			ChannelKey: key,
			Channel:    classifier.Classify(key),
			Value:      raw.Value,
			Timestamp:  ts.UTC(),
			DeviceID:   raw.DeviceID,
			FacadeType: models.FacadeType(raw.FacadeType),
		}
	}
	return snap, nil
}

// FetchAnomalies relays the backend's statistical anomaly report.
// Bounds on limit/hours are enforced server-side; only type coercion happens here.
func (c *Client) FetchAnomalies(ctx context.Context, limit int, facadeType string, hours int) (models.AnomalyReport, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if facadeType != "" {
		q.Set("facade_type", facadeType)
	}
	if hours > 0 {
		q.Set("hours", strconv.Itoa(hours))
	}

	body, err := c.get(ctx, "/alerts/anomalies", q)
	if err != nil {
		return models.AnomalyReport{}, err
	}

	var report models.AnomalyReport
	if err := json.Unmarshal(body, &report); err != nil {
		return models.AnomalyReport{}, NewFetchError(KindMalformed, 0, "decode anomaly report", err)
	}
	return report, nil
}

// get performs one GET and maps every failure onto the FetchError taxonomy.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, NewFetchError(KindNetwork, 0, "build request", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewFetchError(KindNetwork, 0, "request "+path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewFetchError(KindNetwork, resp.StatusCode, "read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := kindForStatus(resp.StatusCode)
		if c.log != nil {
			c.log.Infow("backend_non_2xx", "path", path, "status", resp.StatusCode)
		}
		return nil, NewFetchError(kind, resp.StatusCode,
			fmt.Sprintf("backend returned %d for %s", resp.StatusCode, path), nil)
	}
	return body, nil
}
