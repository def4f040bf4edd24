package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/csvio"
	"merch-forecast/internal/domain"
	"merch-forecast/internal/dto"
)

// Client calls the prediction API on behalf of the frontend. Predict
// retries server-side and network failures with exponential backoff;
// validation rejections come back immediately as an *APIError.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retries    int
	interval   time.Duration
}

// NewClient builds a client for the API at baseURL. retries counts the
// extra attempts after the first call.
func NewClient(baseURL string, timeout time.Duration, retries int, interval time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		retries:    retries,
		interval:   interval,
	}
}

// APIError is an error response the API sent deliberately.
type APIError struct {
	StatusCode     int
	Message        string
	MissingColumns []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned %d: %s", e.StatusCode, e.Message)
}

// Predict sends the batch as a CSV body and returns the decoded response.
// CSV keeps the column order and cell text exactly as uploaded.
func (c *Client) Predict(ctx context.Context, table *domain.Table) (*dto.PredictResponse, error) {
	payload := &bytes.Buffer{}
	if err := csvio.Write(payload, table); err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	body := payload.Bytes()

	var out *dto.PredictResponse
	operation := func() error {
		resp, err := c.do(ctx, http.MethodPost, "/api/v1/predict", "text/csv", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var decoded dto.PredictResponse
			if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
				return backoff.Permanent(fmt.Errorf("decode prediction response: %w", err))
			}
			out = &decoded
			return nil
		}

		apiErr := decodeAPIError(resp)
		if resp.StatusCode >= 500 {
			return apiErr
		}
		return backoff.Permanent(apiErr)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.interval

	notify := func(err error, next time.Duration) {
		log.WithError(err).WithField("retry_in", next).Warn("prediction api call failed, retrying")
	}

	err := backoff.RetryNotify(operation,
		backoff.WithContext(backoff.WithMaxRetries(policy, uint64(c.retries)), ctx),
		notify)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
			return nil, apiErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamDown, err)
	}
	return out, nil
}

// Health probes the API readiness endpoint. The decoded body comes back
// for any HTTP status; err is non-nil only when the API is unreachable.
func (c *Client) Health(ctx context.Context) (*dto.HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/healthz", "", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamDown, err)
	}
	defer resp.Body.Close()

	var decoded dto.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode health response: %w", err)
	}
	return &decoded, nil
}

// ModelInfo fetches the loaded bundle description.
func (c *Client) ModelInfo(ctx context.Context) (*dto.ModelInfoResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/v1/model-info", "", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var decoded dto.ModelInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode model info response: %w", err)
	}
	return &decoded, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create api request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	log.WithFields(log.Fields{
		"method": method,
		"url":    url,
	}).Debug("calling prediction api")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api request: %w", err)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	var decoded dto.ErrorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&decoded); err == nil && decoded.Message != "" {
		apiErr.Message = decoded.Message
		apiErr.MissingColumns = decoded.MissingColumns
	}
	return apiErr
}
