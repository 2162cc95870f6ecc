package solana

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// ---------------------------------------------------------------------------
// Live Chain Client — indexing provider REST API with rate limiting & retry
// ---------------------------------------------------------------------------

const (
	circuitBreakerThreshold = 10 // open after 10 consecutive errors
	circuitBreakerCooldown  = 30 * time.Second
)

// LiveClient talks to a real chain-indexing provider.
type LiveClient struct {
	config ClientConfig
	http   *resty.Client

	// Rate limiter (token bucket).
	limiter       chan struct{}
	limiterCancel context.CancelFunc

	// Circuit breaker.
	consecutiveErrors atomic.Int64
	circuitOpenUntil  atomic.Int64 // unix nanos, 0 = closed

	// Stats.
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewLiveClient creates a live chain data client.
func NewLiveClient(config ClientConfig) *LiveClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 2
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 500 * time.Millisecond
	}
	if config.RateLimitRPS == 0 {
		config.RateLimitRPS = 10
	}

	httpClient := resty.New().
		SetBaseURL(config.Endpoint).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")
	if config.APIKey != "" {
		httpClient.SetQueryParam("api-key", config.APIKey)
	}

	bucketSize := int(config.RateLimitRPS)
	if bucketSize < 1 {
		bucketSize = 1
	}
	limiter := make(chan struct{}, bucketSize)
	for i := 0; i < bucketSize; i++ {
		limiter <- struct{}{}
	}

	limiterCtx, limiterCancel := context.WithCancel(context.Background())

	client := &LiveClient{
		config:        config,
		http:          httpClient,
		limiter:       limiter,
		limiterCancel: limiterCancel,
	}

	// Refill tokens at configured RPS.
	go func() {
		interval := time.Duration(float64(time.Second) / config.RateLimitRPS)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-limiterCtx.Done():
				return
			case <-ticker.C:
				select {
				case client.limiter <- struct{}{}:
				default: // bucket full
				}
			}
		}
	}()

	return client
}

// Close shuts down the client.
func (c *LiveClient) Close() {
	c.limiterCancel()
}

// get performs a rate-limited GET with bounded linear-backoff retries.
func (c *LiveClient) get(ctx context.Context, path string, query map[string]string, out any) error {
	if until := c.circuitOpenUntil.Load(); until != 0 {
		if time.Now().UnixNano() < until {
			return fmt.Errorf("provider: circuit breaker open for %s", path)
		}
		c.circuitOpenUntil.Store(0)
		c.consecutiveErrors.Store(0)
		log.Info().Msg("provider: circuit breaker closed (cooldown elapsed)")
	}

	select {
	case <-c.limiter:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.requestCount.Add(1)

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Linear backoff between retries.
			wait := time.Duration(attempt) * c.config.RetryBackoff
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req := c.http.R().
			SetContext(ctx).
			SetQueryParams(query)
		if out != nil {
			// Decode as JSON even when the provider omits or mangles the
			// Content-Type header; resty skips unmarshalling otherwise.
			req.SetResult(out).ForceContentType("application/json")
		}
		resp, err := req.Get(path)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.IsError() {
			lastErr = fmt.Errorf("provider: %s returned %d", path, resp.StatusCode())
			// 4xx is not retryable; only rate limits and server errors are.
			if resp.StatusCode() < 500 && resp.StatusCode() != 429 {
				break
			}
			continue
		}

		c.consecutiveErrors.Store(0)
		return nil
	}

	c.errorCount.Add(1)
	if c.consecutiveErrors.Add(1) >= circuitBreakerThreshold {
		c.circuitOpenUntil.Store(time.Now().Add(circuitBreakerCooldown).UnixNano())
		log.Warn().
			Int64("consecutive_errors", c.consecutiveErrors.Load()).
			Msg("provider: circuit breaker OPENED")
	}
	return lastErr
}

// --- Interface implementation ---

func (c *LiveClient) GetTransactionHistory(ctx context.Context, address Pubkey, limit int) ([]Transaction, error) {
	if err := ValidateAddress(string(address)); err != nil {
		return nil, err
	}
	var txs []Transaction
	path := fmt.Sprintf("/v0/addresses/%s/transactions", address)
	if err := c.get(ctx, path, map[string]string{"limit": strconv.Itoa(limit)}, &txs); err != nil {
		return nil, fmt.Errorf("get transaction history: %w", err)
	}
	return txs, nil
}

func (c *LiveClient) GetTokenBalances(ctx context.Context, address Pubkey) ([]Balance, error) {
	if err := ValidateAddress(string(address)); err != nil {
		return nil, err
	}
	var balances []Balance
	path := fmt.Sprintf("/v0/addresses/%s/balances", address)
	if err := c.get(ctx, path, nil, &balances); err != nil {
		return nil, fmt.Errorf("get token balances: %w", err)
	}
	return balances, nil
}

func (c *LiveClient) GetAccountInfo(ctx context.Context, address Pubkey) (*AccountInfo, error) {
	if err := ValidateAddress(string(address)); err != nil {
		return nil, err
	}
	var info AccountInfo
	path := fmt.Sprintf("/v0/accounts/%s", address)
	if err := c.get(ctx, path, nil, &info); err != nil {
		return nil, fmt.Errorf("get account info: %w", err)
	}
	return &info, nil
}

func (c *LiveClient) GetSignaturesForAddress(ctx context.Context, address Pubkey, limit int) ([]SignatureInfo, error) {
	if err := ValidateAddress(string(address)); err != nil {
		return nil, err
	}
	var sigs []SignatureInfo
	path := fmt.Sprintf("/v0/addresses/%s/signatures", address)
	if err := c.get(ctx, path, map[string]string{"limit": strconv.Itoa(limit)}, &sigs); err != nil {
		return nil, fmt.Errorf("get signatures: %w", err)
	}
	return sigs, nil
}

func (c *LiveClient) GetTransactionDetail(ctx context.Context, sig Signature) (*Transaction, error) {
	var tx Transaction
	path := fmt.Sprintf("/v0/transactions/%s", sig)
	if err := c.get(ctx, path, nil, &tx); err != nil {
		return nil, fmt.Errorf("get transaction detail: %w", err)
	}
	return &tx, nil
}

func (c *LiveClient) Health(ctx context.Context) error {
	return c.get(ctx, "/v0/health", nil, nil)
}

// ClientStats reports request counters.
type ClientStats struct {
	Requests int64 `json:"requests"`
	Errors   int64 `json:"errors"`
}

// Stats returns request counters.
func (c *LiveClient) Stats() ClientStats {
	return ClientStats{
		Requests: c.requestCount.Load(),
		Errors:   c.errorCount.Load(),
	}
}
