// Package bungie probes the platform API for its operational status.
package bungie

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/clanwarfare/snapshot/internal/platform/logging"
)

const (
	defaultBaseURL = "https://www.bungie.net/Platform"

	milestonesPath = "/Destiny2/Milestones/"
)

// Platform API error codes the snapshot cares about.
const (
	// StatusOperational is the platform's success code.
	StatusOperational = 1
	// StatusDisabled is the platform's maintenance code, also the
	// default reported when the probe is skipped.
	StatusDisabled = 5
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	Logger     *logging.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger,
	}
}

type milestonesEnvelope struct {
	ErrorCode   int    `json:"ErrorCode"`
	ErrorStatus string `json:"ErrorStatus"`
}

// Status probes the milestones endpoint and returns the platform's
// self-reported error code. The payload body is irrelevant beyond the
// envelope, so large responses are discarded early.
func (c *Client) Status(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+milestonesPath, nil)
	if err != nil {
		return 0, crerr.Wrap(err, "build status request")
	}
	req.Header.Set("accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, crerr.Wrap(err, "probe platform status")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, crerr.Wrap(err, "read status response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("platform status=%d", resp.StatusCode)
	}

	var envelope milestonesEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return 0, crerr.Wrap(err, "decode status envelope")
	}

	c.logger.DebugContext(ctx, "platform status probe",
		"code", envelope.ErrorCode, "status", envelope.ErrorStatus)
	return envelope.ErrorCode, nil
}
