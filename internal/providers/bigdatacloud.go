package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weath3r-terminal/internal/common"
)

const DefaultBigDataCloudURL = "https://api.bigdatacloud.net/data/reverse-geocode-client"

// BigDataCloudProvider implements weather.ReverseGeocoder using the keyless
// client-side BigDataCloud endpoint.
type BigDataCloudProvider struct {
	name    string
	url     string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

func NewBigDataCloudProvider(url string, timeout time.Duration, retry RetryConfig) *BigDataCloudProvider {
	if url == "" {
		url = DefaultBigDataCloudURL
	}
	return &BigDataCloudProvider{
		name: "bigdatacloud",
		url:  url,
		httpCfg: HTTPClientConfig{
			Client: newRestyClient("", timeout, ""),
			Retry:  retry,
		},
		circuit: newCircuitBreaker("bigdatacloud", 2*time.Minute),
	}
}

func (p *BigDataCloudProvider) Name() string {
	return p.name
}

// CityAt prefers the city, then the locality, then the principal subdivision.
func (p *BigDataCloudProvider) CityAt(ctx context.Context, lat, lon float64) (string, error) {
	body, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParams(map[string]string{
			"latitude":         strconv.FormatFloat(lat, 'f', -1, 64),
			"longitude":        strconv.FormatFloat(lon, 'f', -1, 64),
			"localityLanguage": "en",
		}).Get(p.url)
	})
	if err != nil {
		return "", err
	}

	var payload struct {
		City                 string `json:"city"`
		Locality             string `json:"locality"`
		PrincipalSubdivision string `json:"principalSubdivision"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("decode bigdatacloud response: %w", err)
	}

	return common.FirstNonEmpty(payload.City, payload.Locality, payload.PrincipalSubdivision), nil
}
