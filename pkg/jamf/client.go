/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package jamf pkg/jamf/client.go is a read-only Jamf Pro API client that
// supplies device inventory and health facts.
package jamf

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/mfreeman451/fleetradar/pkg/metrics"
	"github.com/mfreeman451/fleetradar/pkg/models"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout           = 30 * time.Second
	defaultRequestsPerSecond = 20
	defaultBurst             = 10
	defaultRetryDelay        = 500 * time.Millisecond
	defaultMaxRetryDelay     = 5 * time.Second
	defaultPageSize          = 100

	// tokens are replaced this long before they expire
	tokenRefreshMargin = 5 * time.Minute

	maxErrorBody = 512
)

const (
	opToken          = "token"
	opListDevices    = "list devices"
	opDeviceDetail   = "device detail"
	opManagementData = "management data"
	opCommands       = "mdm commands"
)

// Client talks to a single Jamf Pro tenant. It is safe for concurrent use;
// all requests share one OAuth token and one rate limiter.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	config       Config
	logger       *zap.Logger
	metrics      *metrics.Metrics
	now          func() time.Time

	tokenMu     sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithMetrics records upstream request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithClock replaces time.Now for token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, logger *zap.Logger, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errMissingBaseURL
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errMissingCredentials
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", errInvalidBaseURL, cfg.BaseURL)
	}

	cfg = cfg.withDefaults()

	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	c := &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		config:       cfg,
		logger:       logger,
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (cfg Config) withDefaults() Config {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = defaultRequestsPerSecond
	}

	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}

	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}

	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = defaultMaxRetryDelay
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}

	return cfg
}

// ListDevices pages through the computer inventory.
func (c *Client) ListDevices(ctx context.Context) ([]models.DeviceBasicInfo, error) {
	var devices []models.DeviceBasicInfo

	for page := 0; ; page++ {
		query := url.Values{
			"section":   {"GENERAL"},
			"page":      {strconv.Itoa(page)},
			"page-size": {strconv.Itoa(c.config.PageSize)},
		}

		var resp inventoryPage
		if err := c.getJSON(ctx, opListDevices, "", "/api/v1/computers-inventory", query, &resp); err != nil {
			return nil, err
		}

		for i := range resp.Results {
			devices = append(devices, resp.Results[i].basicInfo())
		}

		if len(resp.Results) == 0 || len(devices) >= resp.TotalCount {
			break
		}
	}

	c.logger.Debug("Listed devices", zap.Int("count", len(devices)))

	return devices, nil
}

// GetDeviceDetail collects the facts needed to evaluate one device. The
// inventory record is fetched first so an unknown device fails fast; the
// policy and command lookups then run in parallel.
func (c *Client) GetDeviceDetail(ctx context.Context, deviceID string) (*models.DeviceFacts, error) {
	var detail inventoryComputer

	path := "/api/v1/computers-inventory-detail/" + url.PathEscape(deviceID)
	if err := c.getJSON(ctx, opDeviceDetail, deviceID, path, nil, &detail); err != nil {
		return nil, err
	}

	facts := &models.DeviceFacts{
		DeviceBasicInfo:  detail.basicInfo(),
		GroupMemberships: detail.groupNames(),
	}

	if facts.ID == "" {
		facts.ID = deviceID
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		failed, err := c.hasFailedPolicies(gctx, deviceID)
		if err != nil {
			return err
		}

		facts.HasFailedPolicies = failed

		return nil
	})

	var commands []mdmCommand

	g.Go(func() error {
		var err error

		commands, err = c.commands(gctx, deviceID)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	facts.HasFailedCommands, facts.PendingCommands = splitCommands(commands)

	return facts, nil
}

// hasFailedPolicies reports whether any policy failed on the device. Devices
// without management data have no policy history.
func (c *Client) hasFailedPolicies(ctx context.Context, deviceID string) (bool, error) {
	var data managementData

	path := "/api/v2/computers/" + url.PathEscape(deviceID) + "/management-data"

	err := c.getJSON(ctx, opManagementData, deviceID, path, nil, &data)
	if errors.Is(err, models.ErrDeviceNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	for _, p := range data.Policies {
		if p.Failed {
			return true, nil
		}
	}

	return false, nil
}

func (c *Client) commands(ctx context.Context, deviceID string) ([]mdmCommand, error) {
	var commands []mdmCommand

	for page := 0; ; page++ {
		query := url.Values{
			"filter":    {"clientManagementId==" + deviceID},
			"page":      {strconv.Itoa(page)},
			"page-size": {strconv.Itoa(c.config.PageSize)},
		}

		var resp commandsPage

		err := c.getJSON(ctx, opCommands, deviceID, "/api/v2/mdm/commands", query, &resp)
		if errors.Is(err, models.ErrDeviceNotFound) {
			return commands, nil
		}

		if err != nil {
			return nil, err
		}

		commands = append(commands, resp.Results...)

		if len(resp.Results) == 0 || len(commands) >= resp.TotalCount {
			return commands, nil
		}
	}
}

func splitCommands(commands []mdmCommand) (hasFailed bool, pending []models.PendingCommand) {
	pending = []models.PendingCommand{}

	for _, cmd := range commands {
		switch cmd.Status {
		case commandFailed:
			hasFailed = true
		case commandPending, commandInProgress:
			pc := models.PendingCommand{
				UUID:   cmd.UUID,
				Name:   cmd.Name,
				Status: cmd.Status,
			}

			if issued := parseTime(cmd.DateIssued); issued != nil {
				pc.IssuedAt = *issued
			}

			pending = append(pending, pc)
		}
	}

	return hasFailed, pending
}

// getJSON issues a GET and decodes the body into out, retrying transient
// failures with backoff.
func (c *Client) getJSON(ctx context.Context, op, deviceID, path string, query url.Values, out any) error {
	return retry.Do(func() error {
		return c.doJSON(ctx, op, deviceID, path, query, out)
	},
		retry.Context(ctx),
		retry.Attempts(uint(c.config.MaxRetries)+1),
		retry.Delay(c.config.RetryDelay),
		retry.MaxDelay(c.config.MaxRetryDelay),
		retry.RetryIf(isRetryable),
		retry.LastErrorOnly(true),
	)
}

func (c *Client) doJSON(ctx context.Context, op, deviceID, path string, query url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	if err = c.limiter.Wait(ctx); err != nil {
		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, Err: err}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, Err: fmt.Errorf("%w: %w", errBuildRequest, err)}
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(op, 0, time.Since(start))

		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, Retryable: ctx.Err() == nil, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("Failed to close response body", zap.Error(err))
		}
	}()

	c.metrics.UpstreamRequest(op, resp.StatusCode, time.Since(start))

	if err := c.checkStatus(op, deviceID, resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, Err: fmt.Errorf("%w: %w", errDecodeResponse, err)}
	}

	return nil
}

// checkStatus maps an HTTP status onto the error taxonomy.
func (c *Client) checkStatus(op, deviceID string, resp *http.Response) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}

	cause := fmt.Errorf("%w: %s", errUnexpectedStatus, readSnippet(resp.Body))

	switch {
	case code == http.StatusUnauthorized:
		c.resetToken()

		return &models.UpstreamAuthError{StatusCode: code, Err: cause}
	case code == http.StatusForbidden:
		return &models.UpstreamAuthError{StatusCode: code, Err: cause}
	case code == http.StatusNotFound:
		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, StatusCode: code, Err: models.ErrDeviceNotFound}
	case code == http.StatusTooManyRequests, code >= http.StatusInternalServerError:
		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, StatusCode: code, Retryable: true, Err: cause}
	default:
		return &models.UpstreamFetchError{Op: op, DeviceID: deviceID, StatusCode: code, Err: cause}
	}
}

// accessToken returns the cached token or fetches a new one. The lock is
// held across the fetch so concurrent callers share a single token request.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry.Add(-tokenRefreshMargin)) {
		return c.token, nil
	}

	tok, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	c.token = tok.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(tok.ExpiresIn) * time.Second)

	c.logger.Debug("Obtained Jamf access token", zap.Time("expires_at", c.tokenExpiry))

	return c.token, nil
}

func (c *Client) resetToken() {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	c.token = ""
	c.tokenExpiry = time.Time{}
}

func (c *Client) fetchToken(ctx context.Context) (*tokenResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &models.UpstreamFetchError{Op: opToken, Err: err}
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &models.UpstreamFetchError{Op: opToken, Err: fmt.Errorf("%w: %w", errBuildRequest, err)}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.UpstreamRequest(opToken, 0, time.Since(start))

		return nil, &models.UpstreamFetchError{Op: opToken, Retryable: ctx.Err() == nil, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("Failed to close token response body", zap.Error(err))
		}
	}()

	c.metrics.UpstreamRequest(opToken, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, &models.UpstreamAuthError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%w: %s", errTokenRejected, readSnippet(resp.Body)),
		}
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, &models.UpstreamAuthError{Err: fmt.Errorf("%w: %w", errDecodeResponse, err)}
	}

	if tok.AccessToken == "" {
		return nil, &models.UpstreamAuthError{Err: errEmptyToken}
	}

	return &tok, nil
}

func isRetryable(err error) bool {
	var fetchErr *models.UpstreamFetchError

	return errors.As(err, &fetchErr) && fetchErr.Retryable
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))

	return strings.TrimSpace(string(b))
}

func (ic *inventoryComputer) basicInfo() models.DeviceBasicInfo {
	return models.DeviceBasicInfo{
		ID:                  ic.ID,
		Name:                ic.General.Name,
		SerialNumber:        ic.General.SerialNumber,
		Model:               ic.General.ModelIdentifier,
		OSVersion:           ic.General.OperatingSystemVersion,
		LastContactTime:     parseTime(ic.General.LastContactTime),
		LastInventoryUpdate: parseTime(ic.General.LastInventoryUpdateTimestamp),
	}
}

func (ic *inventoryComputer) groupNames() []string {
	names := make([]string, 0, len(ic.GroupMemberships))

	for _, g := range ic.GroupMemberships {
		if g.GroupName != "" {
			names = append(names, g.GroupName)
		}
	}

	return names
}

// parseTime accepts Jamf's ISO-8601 timestamps. Unparseable values are
// treated as unknown.
func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}

	t = t.UTC()

	return &t
}
