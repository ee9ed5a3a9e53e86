package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/clickpulse/internal/config"
	"github.com/clickpulse/internal/logger"
)

const (
	maxResponseBytes = 64 << 10
	userAgent        = "clickpulse-geo/1.0"
)

// 已知的服务商名称
const (
	ProviderIPAPICo  = "ipapi"
	ProviderIPAPICom = "ip-api"
	ProviderIPWhois  = "ipwhois"
	ProviderIPInfo   = "ipinfo"
)

var defaultBaseURLs = map[string]string{
	ProviderIPAPICo:  "https://ipapi.co",
	ProviderIPAPICom: "http://ip-api.com",
	ProviderIPWhois:  "https://ipwho.is",
	ProviderIPInfo:   "https://ipinfo.io",
}

// ErrLookupFailed 服务商返回失败状态
var ErrLookupFailed = errors.New("geo lookup failed")

// Provider 外部地理位置服务
type Provider interface {
	Name() string
	Lookup(ctx context.Context, ip string) (Location, error)
}

// HTTPProvider 基于 JSON HTTP 接口的服务商
type HTTPProvider struct {
	name   string
	client *http.Client
	build  func(ip string) string
	decode func(body []byte) (Location, error)
}

// Name 服务商名称
func (p *HTTPProvider) Name() string {
	return p.name
}

// Lookup 发起一次查询，不重试
func (p *HTTPProvider) Lookup(ctx context.Context, ip string) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.build(ip), nil)
	if err != nil {
		return Location{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("%w: %s status %d", ErrLookupFailed, p.name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Location{}, err
	}
	loc, err := p.decode(body)
	if err != nil {
		return Location{}, err
	}
	loc.Source = p.name
	return loc, nil
}

// NewIPAPIProvider ipapi.co
func NewIPAPIProvider(client *http.Client, baseURL string) *HTTPProvider {
	base := baseOrDefault(baseURL, ProviderIPAPICo)
	return &HTTPProvider{
		name:   ProviderIPAPICo,
		client: clientOrDefault(client),
		build: func(ip string) string {
			return fmt.Sprintf("%s/%s/json/", base, url.PathEscape(ip))
		},
		decode: func(body []byte) (Location, error) {
			var payload struct {
				Error       bool   `json:"error"`
				Reason      string `json:"reason"`
				CountryCode string `json:"country_code"`
				CountryName string `json:"country_name"`
				City        string `json:"city"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return Location{}, err
			}
			if payload.Error {
				return Location{}, fmt.Errorf("%w: %s", ErrLookupFailed, payload.Reason)
			}
			return Location{CountryCode: payload.CountryCode, CountryName: payload.CountryName, CityName: payload.City}, nil
		},
	}
}

// NewIPAPIComProvider ip-api.com
func NewIPAPIComProvider(client *http.Client, baseURL string) *HTTPProvider {
	base := baseOrDefault(baseURL, ProviderIPAPICom)
	return &HTTPProvider{
		name:   ProviderIPAPICom,
		client: clientOrDefault(client),
		build: func(ip string) string {
			return fmt.Sprintf("%s/json/%s?fields=status,message,countryCode,country,city", base, url.PathEscape(ip))
		},
		decode: func(body []byte) (Location, error) {
			var payload struct {
				Status      string `json:"status"`
				Message     string `json:"message"`
				CountryCode string `json:"countryCode"`
				Country     string `json:"country"`
				City        string `json:"city"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return Location{}, err
			}
			if !strings.EqualFold(payload.Status, "success") {
				return Location{}, fmt.Errorf("%w: %s", ErrLookupFailed, payload.Message)
			}
			return Location{CountryCode: payload.CountryCode, CountryName: payload.Country, CityName: payload.City}, nil
		},
	}
}

// NewIPWhoisProvider ipwho.is
func NewIPWhoisProvider(client *http.Client, baseURL string) *HTTPProvider {
	base := baseOrDefault(baseURL, ProviderIPWhois)
	return &HTTPProvider{
		name:   ProviderIPWhois,
		client: clientOrDefault(client),
		build: func(ip string) string {
			return fmt.Sprintf("%s/%s", base, url.PathEscape(ip))
		},
		decode: func(body []byte) (Location, error) {
			var payload struct {
				Success     bool   `json:"success"`
				Message     string `json:"message"`
				CountryCode string `json:"country_code"`
				Country     string `json:"country"`
				City        string `json:"city"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return Location{}, err
			}
			if !payload.Success {
				return Location{}, fmt.Errorf("%w: %s", ErrLookupFailed, payload.Message)
			}
			return Location{CountryCode: payload.CountryCode, CountryName: payload.Country, CityName: payload.City}, nil
		},
	}
}

// NewIPInfoProvider ipinfo.io，只返回国家代码与城市
func NewIPInfoProvider(client *http.Client, baseURL, token string) *HTTPProvider {
	base := baseOrDefault(baseURL, ProviderIPInfo)
	return &HTTPProvider{
		name:   ProviderIPInfo,
		client: clientOrDefault(client),
		build: func(ip string) string {
			target := fmt.Sprintf("%s/%s/json", base, url.PathEscape(ip))
			if token != "" {
				target += "?token=" + url.QueryEscape(token)
			}
			return target
		},
		decode: func(body []byte) (Location, error) {
			var payload struct {
				Bogon   bool   `json:"bogon"`
				Country string `json:"country"`
				City    string `json:"city"`
			}
			if err := json.Unmarshal(body, &payload); err != nil {
				return Location{}, err
			}
			if payload.Bogon {
				return Location{}, fmt.Errorf("%w: bogon address", ErrLookupFailed)
			}
			return Location{CountryCode: payload.Country, CityName: payload.City}, nil
		},
	}
}

// NewProviders 按配置顺序构造服务商列表，未知名称跳过
func NewProviders(cfg config.GeoConfig, client *http.Client) []Provider {
	client = clientOrDefault(client)
	providers := make([]Provider, 0, len(cfg.Providers))
	for _, raw := range cfg.Providers {
		name := strings.ToLower(strings.TrimSpace(raw))
		endpoint := cfg.Endpoints[name]
		switch name {
		case ProviderIPAPICo:
			providers = append(providers, NewIPAPIProvider(client, endpoint.BaseURL))
		case ProviderIPAPICom:
			providers = append(providers, NewIPAPIComProvider(client, endpoint.BaseURL))
		case ProviderIPWhois:
			providers = append(providers, NewIPWhoisProvider(client, endpoint.BaseURL))
		case ProviderIPInfo:
			providers = append(providers, NewIPInfoProvider(client, endpoint.BaseURL, endpoint.Token))
		default:
			logger.Warnw("geo_provider_unknown", "provider", raw)
		}
	}
	return providers
}

func baseOrDefault(baseURL, name string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return defaultBaseURLs[name]
	}
	return base
}

func clientOrDefault(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{}
	}
	return client
}
