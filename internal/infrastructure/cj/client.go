package cj

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

	"github.com/cjfeed/backend/internal/domain"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Endpoint names used in errors, logs and metrics
const (
	EndpointQuery  = "query"
	EndpointDetail = "detail"
)

// AccessTokenHeader carries the CJ access token on every request
const AccessTokenHeader = "CJ-Access-Token"

const (
	queryPath  = "/v1/product/query"
	detailPath = "/v1/product/detail"

	// maxErrorBody bounds how much of a failed response ends up in the logs
	maxErrorBody = 512
)

// UpstreamRecorder receives one observation per CJ API call
type UpstreamRecorder interface {
	ObserveUpstream(endpoint string, status int, elapsed time.Duration)
}

// ClientConfig holds the settings needed to talk to CJ
type ClientConfig struct {
	AccessToken       string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client handles communication with the CJdropshipping product API
type Client struct {
	httpClient  *http.Client
	accessToken string
	baseURL     string
	rateLimiter *rate.Limiter
	logger      *zap.Logger
	recorder    UpstreamRecorder
}

// NewClient creates a new CJ API client. An empty access token is accepted;
// every call then fails with domain.ErrMissingCredential before touching the network.
func NewClient(cfg ClientConfig, logger *zap.Logger, recorder UpstreamRecorder) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	// CJ enforces a per-second quota per account; zero means no pacing
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		accessToken: cfg.AccessToken,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      logger.Named("cj"),
		recorder:    recorder,
	}
}

// envelope is the wrapper CJ puts around every response payload
type envelope struct {
	Code    interface{} `json:"code"`
	Result  *bool       `json:"result"`
	Message interface{} `json:"message"`
	Data    interface{} `json:"data"`
}

// CheckCredentials reports whether the client has an access token to send
func (c *Client) CheckCredentials() error {
	if c.accessToken == "" {
		return domain.ErrMissingCredential
	}
	return nil
}

// SearchProducts runs one keyword search and returns the records found.
// A non-success status is returned as *domain.UpstreamError.
func (c *Client) SearchProducts(ctx context.Context, keyword string, pageNum, pageSize int) ([]domain.RawProduct, error) {
	params := url.Values{}
	params.Set("keyWords", keyword)
	params.Set("pageNum", strconv.Itoa(pageNum))
	params.Set("pageSize", strconv.Itoa(pageSize))

	env, err := c.get(ctx, EndpointQuery, queryPath, params)
	if err != nil {
		return nil, err
	}

	products := extractList(env.Data)
	c.logger.Debug("search completed",
		zap.String("keyword", keyword),
		zap.Int("page_num", pageNum),
		zap.Int("page_size", pageSize),
		zap.Int("count", len(products)),
	)
	return products, nil
}

// GetProductDetail fetches a single product by CJ id. It returns (nil, nil)
// when the response carries no product object, and *domain.UpstreamError
// for a non-success status.
func (c *Client) GetProductDetail(ctx context.Context, id string) (domain.RawProduct, error) {
	params := url.Values{}
	params.Set("pid", id)
	params.Set("id", id)

	env, err := c.get(ctx, EndpointDetail, detailPath, params)
	if err != nil {
		return nil, err
	}

	data, ok := env.Data.(map[string]interface{})
	if !ok {
		c.logger.Debug("detail response has no product object", zap.String("id", id))
		return nil, nil
	}
	return domain.RawProduct(data), nil
}

// get executes a GET request against path and decodes the CJ envelope
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) (*envelope, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cjfeed/1.0")
	req.Header.Set(AccessTokenHeader, c.accessToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, start)
		c.logger.Warn("request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()
	c.observe(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("non-success status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, &domain.UpstreamError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}

	// CJ reports some failures in the body of a 200; the payload is still used as-is
	if env.Result != nil && !*env.Result {
		c.logger.Warn("CJ reported an unsuccessful result",
			zap.String("endpoint", endpoint),
			zap.String("code", cast.ToString(env.Code)),
			zap.String("message", cast.ToString(env.Message)),
		)
	}

	return &env, nil
}

func (c *Client) observe(endpoint string, status int, start time.Time) {
	if c.recorder != nil {
		c.recorder.ObserveUpstream(endpoint, status, time.Since(start))
	}
}

// extractList pulls the product list out of a search payload: data.list,
// else data itself, else nothing. Entries that are not objects are dropped.
func extractList(data interface{}) []domain.RawProduct {
	candidate := data
	if m, ok := data.(map[string]interface{}); ok {
		if list, ok := m["list"]; ok && isPresent(list) {
			candidate = list
		}
	}

	list, ok := candidate.([]interface{})
	if !ok {
		return []domain.RawProduct{}
	}

	products := make([]domain.RawProduct, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]interface{}); ok {
			products = append(products, domain.RawProduct(m))
		}
	}
	return products
}
