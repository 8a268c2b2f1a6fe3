package coinapi

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/pumprand/pump-client/internal/domain"
)

// RateLimitedClient throttles every call to the query API through a local token bucket
type RateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps inner so that it issues at most requestsPerSecond calls with the given burst.
// A non-positive rate returns inner unchanged.
func NewRateLimitedClient(inner Client, requestsPerSecond float64, burst int) Client {
	if requestsPerSecond <= 0 {
		return inner
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedClient{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

func (c *RateLimitedClient) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *RateLimitedClient) FetchCoins(ctx context.Context, limit int, maxID *int64) ([]domain.Coin, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.FetchCoins(ctx, limit, maxID)
}

func (c *RateLimitedClient) FetchCoinByID(ctx context.Context, id int64) (*domain.Coin, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.FetchCoinByID(ctx, id)
}

func (c *RateLimitedClient) FetchCoinByAddress(ctx context.Context, address string) (*domain.Coin, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	return c.inner.FetchCoinByAddress(ctx, address)
}

func (c *RateLimitedClient) CreateCoin(ctx context.Context, req CreateCoinRequest) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.inner.CreateCoin(ctx, req)
}

func (c *RateLimitedClient) UploadImage(ctx context.Context, id int64, filename string, data []byte) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", err
	}
	return c.inner.UploadImage(ctx, id, filename, data)
}

func (c *RateLimitedClient) VerifyCoin(ctx context.Context, id int64) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.inner.VerifyCoin(ctx, id)
}
