package providers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weath3r-terminal/internal/market"
)

// DefaultGammaBaseURL is the Polymarket Gamma API root.
const DefaultGammaBaseURL = "https://gamma-api.polymarket.com"

// EventQuery holds the /events query parameters. Upstream support for these
// has shifted over time, so they are configuration rather than contract.
type EventQuery struct {
	Active  bool   `yaml:"active"`
	Closed  bool   `yaml:"closed"`
	Limit   int    `yaml:"limit"`
	TagSlug string `yaml:"tag_slug"`
}

// DefaultEventQuery asks for open weather events. A page of 30 is roughly
// 600 KB; much larger pages have tripped response-size limits downstream.
func DefaultEventQuery() EventQuery {
	return EventQuery{
		Active:  true,
		Closed:  false,
		Limit:   30,
		TagSlug: "weather",
	}
}

func (q EventQuery) params() map[string]string {
	p := map[string]string{
		"active": strconv.FormatBool(q.Active),
		"closed": strconv.FormatBool(q.Closed),
	}
	if q.Limit > 0 {
		p["limit"] = strconv.Itoa(q.Limit)
	}
	if q.TagSlug != "" {
		p["tag_slug"] = q.TagSlug
	}
	return p
}

// GammaConfig configures a GammaProvider.
type GammaConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
	Retry     RetryConfig
	Query     EventQuery
	Sleep     func(ctx context.Context, d time.Duration) error

	// BreakerTimeout is how long the breaker stays open. Defaults to 30s.
	BreakerTimeout time.Duration
}

// GammaProvider fetches weather events from the Polymarket Gamma API.
// It implements store.EventFetcher.
type GammaProvider struct {
	name    string
	query   EventQuery
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewGammaProvider(cfg GammaConfig) *GammaProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGammaBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	return &GammaProvider{
		name:  "gamma",
		query: cfg.Query,
		httpCfg: HTTPClientConfig{
			Client: newRestyClient(cfg.BaseURL, cfg.Timeout, cfg.UserAgent),
			Retry:  cfg.Retry,
			Sleep:  cfg.Sleep,
		},
		circuit: newCircuitBreaker("gamma", cfg.BreakerTimeout),
	}
}

func (p *GammaProvider) Name() string {
	return p.name
}

// FetchEvents returns the decoded event list. Any failure after retries is
// wrapped in market.ErrFetchFailed; a malformed body is not a failure and
// yields an empty list.
func (p *GammaProvider) FetchEvents(ctx context.Context) ([]market.Event, error) {
	params := p.query.params()

	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(params).Get("/events")
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", market.ErrFetchFailed, err)
	}

	events := market.DecodeEvents(body)

	log.Debug().
		Str("provider", p.name).
		Int("count", len(events)).
		Msg("fetched events")

	return events, nil
}
