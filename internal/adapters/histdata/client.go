package histdata

// client.go — proveedor de mercado sobre un servicio HTTP de históricos.
//
// El servicio expone el mismo CSV que los fixtures locales en
// GET {base}/ohlc/{instrumento}?from=<ms>&to=<ms>. El cliente aplica rate
// limiting y retries con backoff exponencial.

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/stratsweep/internal/adapters/csvdata"
	"github.com/alejandrodnm/stratsweep/internal/domain"
	"github.com/alejandrodnm/stratsweep/internal/ports"
)

const (
	// Límite conservador: un sweep no debe tumbar el servicio de históricos.
	ohlcRatePerSec = 10
	ohlcBurst      = 5

	maxRetries    = 3
	baseRetryWait = 500 * time.Millisecond
)

// Client es el HTTP client de históricos con rate limiting y retries.
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client contra el base URL dado.
func NewClient(base string) *Client {
	return &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(ohlcRatePerSec, ohlcBurst),
	}
}

// FetchObservations descarga la serie OHLC del instrumento en [from, to).
func (c *Client) FetchObservations(ctx context.Context, instrument string, from, to time.Time) ([]domain.MarketObservation, error) {
	u := fmt.Sprintf("%s/ohlc/%s?%s", c.base, url.PathEscape(instrument), url.Values{
		"from": {fmt.Sprint(from.UnixMilli())},
		"to":   {fmt.Sprint(to.UnixMilli())},
	}.Encode())

	body, err := c.getWithRetry(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("histdata.FetchObservations: %w", err)
	}
	defer body.Close()

	obs, err := csvdata.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("histdata.FetchObservations: %w", err)
	}
	return obs, nil
}

// getWithRetry hace un GET con backoff exponencial. El caller cierra el body.
func (c *Client) getWithRetry(ctx context.Context, u string) (io.ReadCloser, error) {
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/csv")

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries {
				return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries, err)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			slog.Warn("rate limited by histdata service", "attempt", attempt+1)
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				return nil, fmt.Errorf("server error %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.sleep(ctx, attempt)
			continue
		}

		if resp.StatusCode >= 400 {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("client error %d: %s", resp.StatusCode, string(body))
		}

		return resp.Body, nil
	}
	return nil, fmt.Errorf("exhausted %d retries", maxRetries)
}

// sleep espera con backoff exponencial, respetando el contexto.
func (c *Client) sleep(ctx context.Context, attempt int) {
	wait := time.Duration(math.Pow(2, float64(attempt))) * baseRetryWait
	select {
	case <-time.After(wait):
	case <-ctx.Done():
	}
}

var _ ports.MarketProvider = (*Client)(nil)
