package signals

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aslanlabs/aslan-auto-trader/internal/httputil"
	"github.com/aslanlabs/aslan-auto-trader/internal/models"
)

// RawSignal is the upstream recommendation exactly as the signal service
// emits it. Confidence is a pointer so a missing field is distinguishable
// from an explicit zero.
type RawSignal struct {
	Action         string   `json:"action"`
	Token          string   `json:"token"`
	CounterToken   string   `json:"counter_token"`
	Amount         float64  `json:"amount"`
	Confidence     *int     `json:"confidence"`
	RiskAssessment string   `json:"risk_assessment"`
	ExpectedReturn float64  `json:"expected_return"`
	Reasoning      string   `json:"reasoning"`
	StopLoss       *float64 `json:"stop_loss"`
	TakeProfit     *float64 `json:"take_profit"`
}

// Client pulls trading recommendations from the signal service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retry      httputil.RetryConfig
	normalizer *Normalizer
}

func NewClient(baseURL string, normalizer *Normalizer) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		retry: httputil.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   2 * time.Second,
			MaxDelay:    10 * time.Second,
		},
		normalizer: normalizer,
	}
}

// Latest fetches the current recommendation and normalizes it into a
// well-formed signal. A malformed upstream payload degrades to a hold
// signal rather than an error wherever possible.
func (c *Client) Latest(ctx context.Context) (*models.TradingSignal, error) {
	resp, err := httputil.Do(ctx, c.httpClient, c.retry, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/signal/latest", nil)
	})
	if err != nil {
		return nil, fmt.Errorf("signal fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("signal service returned status %d", resp.StatusCode)
	}

	var raw RawSignal
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode signal: %w", err)
	}

	return c.normalizer.Normalize(&raw), nil
}
