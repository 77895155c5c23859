package blockscout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"coffee-change.backend/internal/domain/entities"
	"coffee-change.backend/pkg/logger"
	"coffee-change.backend/pkg/metrics"
)

const (
	defaultTimeout     = 10 * time.Second
	tokenTransfersPath = "/api/v2/addresses/{address}/token-transfers"
)

// Config represents Blockscout client configuration
type Config struct {
	BaseURL           string
	TokenAddress      string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxPages          int
}

// StatusError is returned when Blockscout answers with a non-2xx status
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("blockscout returned status %d", e.StatusCode)
}

// Client lists ERC-20 token transfers from a Blockscout explorer
type Client struct {
	config         Config
	http           *resty.Client
	circuitBreaker *gobreaker.CircuitBreaker
	limiter        *rate.Limiter
}

// NewClient creates a new Blockscout client
func NewClient(config Config) *Client {
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxPages < 1 {
		config.MaxPages = 1
	}
	limit := rate.Inf
	if config.RequestsPerSecond > 0 {
		limit = rate.Limit(config.RequestsPerSecond)
	}
	if config.Burst < 1 {
		config.Burst = 1
	}

	cbSettings := gobreaker.Settings{
		Name:        "blockscout",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(context.Background(), "Transfer source circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	}

	return &Client{
		config:         config,
		http:           resty.New().SetBaseURL(strings.TrimRight(config.BaseURL, "/")).SetTimeout(config.Timeout),
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		limiter:        rate.NewLimiter(limit, config.Burst),
	}
}

// ListOutgoingTransfers returns the wallet's outgoing transfers of the
// configured token, newest first, following pagination up to MaxPages.
func (c *Client) ListOutgoingTransfers(ctx context.Context, walletAddress string) ([]entities.TransferRecord, error) {
	start := time.Now()
	records, err := c.listOutgoingTransfers(ctx, walletAddress)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.TransferSourceDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return records, err
}

func (c *Client) listOutgoingTransfers(ctx context.Context, walletAddress string) ([]entities.TransferRecord, error) {
	base := map[string]string{
		"type":   "ERC-20",
		"filter": "from",
		"token":  c.config.TokenAddress,
	}

	var records []entities.TransferRecord
	params := base
	for page := 0; page < c.config.MaxPages; page++ {
		p, err := c.fetchPage(ctx, walletAddress, params)
		if err != nil {
			if page == 0 {
				return nil, err
			}
			logger.Warn(ctx, "Stopping transfer pagination early",
				zap.String("wallet", walletAddress),
				zap.Int("page", page+1),
				zap.Error(err))
			break
		}
		records = append(records, p.records()...)
		if len(p.NextPageParams) == 0 {
			break
		}
		params = mergeParams(base, p.NextPageParams)
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, walletAddress string, params map[string]string) (*transferPage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	body, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParam("address", walletAddress).
			SetQueryParams(params).
			SetHeader("Accept", "application/json").
			Get(tokenTransfersPath)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, &StatusError{StatusCode: resp.StatusCode()}
		}
		return resp.Body(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch token transfers: %w", err)
	}

	var page transferPage
	if err := json.Unmarshal(body.([]byte), &page); err != nil {
		return nil, fmt.Errorf("decode token transfers: %w", err)
	}
	return &page, nil
}

func mergeParams(base map[string]string, next map[string]json.RawMessage) map[string]string {
	out := make(map[string]string, len(base)+len(next))
	for k, v := range base {
		out[k] = v
	}
	for k, raw := range next {
		var f flexString
		if err := json.Unmarshal(raw, &f); err != nil || f.value == nil {
			continue
		}
		out[k] = *f.value
	}
	return out
}
