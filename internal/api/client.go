package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/bnovate/bactocloud-dl/internal/config"
	"github.com/bnovate/bactocloud-dl/internal/filter"
	"github.com/bnovate/bactocloud-dl/internal/httpclient"
	"github.com/bnovate/bactocloud-dl/internal/models"
)

// pageSize is the measurement page size for POST /api/v1/data/list.
const pageSize = 100

// maxPages caps pagination so a misbehaving API cannot loop us forever.
const maxPages = 1000

// retryLogger implements the retryablehttp.LeveledLogger interface,
// forwarding retry warnings and errors to zerolog.
type retryLogger struct{}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	log.Warn().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{})  {}
func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Client is the BactoCloud API client. All methods are synchronous and
// safe for use from a single worker goroutine.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new API client from the given configuration.
// Transient failures (network errors, 429, 5xx) are retried with
// exponential backoff; auth failures are not.
func NewClient(cfg *config.Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("API base URL is empty")
	}

	baseClient, err := httpclient.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = baseClient
	retryClient.RetryMax = 4
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 15 * time.Second
	retryClient.Logger = &retryLogger{}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
	}, nil
}

// doRequest performs an HTTP request with authentication headers.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

// getJSON performs a GET and decodes the 2xx response body into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return responseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Authenticate verifies the API key by listing devices. A nil return
// means the key is valid and carries the device-view scope.
func (c *Client) Authenticate(ctx context.Context) error {
	_, err := c.ListDevices(ctx)
	return err
}

// ListDevices returns the organization's physical devices. Virtual
// devices are excluded; they never carry measurement payloads.
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	if err := c.getJSON(ctx, "/api/v1/device?no_virtual=true", &devices); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return devices, nil
}

// dataListRequest is the body of POST /api/v1/data/list.
type dataListRequest struct {
	DeviceIDs []string `json:"deviceIDs"`
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	PageSize  int      `json:"pageSize"`
	Page      int      `json:"page"`
}

// dataListResponse is the envelope of POST /api/v1/data/list.
type dataListResponse struct {
	Data []models.Measurement `json:"data"`
}

// ListMeasurements queries measurements for the given device IDs within
// the date range, following pagination until the last page.
func (c *Client) ListMeasurements(ctx context.Context, deviceIDs []string, r filter.DateRange) ([]models.Measurement, error) {
	var all []models.Measurement

	for page := 1; page <= maxPages; page++ {
		body := dataListRequest{
			DeviceIDs: deviceIDs,
			StartDate: r.Start.UTC().Format(time.RFC3339),
			EndDate:   r.End.UTC().Format(time.RFC3339),
			PageSize:  pageSize,
			Page:      page,
		}

		resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/data/list", body)
		if err != nil {
			return nil, fmt.Errorf("failed to list measurements: %w", err)
		}

		var result dataListResponse
		if resp.StatusCode != http.StatusOK {
			err := responseError(resp)
			resp.Body.Close()
			return nil, fmt.Errorf("failed to list measurements: %w", err)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to decode measurement list: %w", err)
		}
		resp.Body.Close()

		all = append(all, result.Data...)
		if len(result.Data) < pageSize {
			break
		}
	}

	return all, nil
}

// FetchFile downloads the binary payload for a measurement's file ID.
func (c *Client) FetchFile(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/data/file/"+url.PathEscape(fileID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch file %s: %w", fileID, responseError(resp))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", fileID, err)
	}
	return data, nil
}
