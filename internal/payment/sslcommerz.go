package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	SandboxURL = "https://sandbox.sslcommerz.com"
	LiveURL    = "https://securepay.sslcommerz.com"

	initPath     = "/gwprocess/v4/api.php"
	validatePath = "/validator/api/validationserverAPI.php"
)

type SSLCommerz struct {
	storeID       string
	storePassword string
	baseURL       string
	httpClient    *http.Client
}

type Option func(*SSLCommerz)

func WithBaseURL(u string) Option {
	return func(s *SSLCommerz) { s.baseURL = strings.TrimSuffix(u, "/") }
}

func WithHTTPClient(c *http.Client) Option {
	return func(s *SSLCommerz) { s.httpClient = c }
}

func NewSSLCommerz(storeID, storePassword string, live bool, opts ...Option) *SSLCommerz {
	s := &SSLCommerz{
		storeID:       storeID,
		storePassword: storePassword,
		baseURL:       SandboxURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	if live {
		s.baseURL = LiveURL
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SSLCommerz) Init(ctx context.Context, tr TransactionRequest) (*Session, error) {
	form := tr.Values()
	form.Set("store_id", s.storeID)
	form.Set("store_passwd", s.storePassword)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+initPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var session Session
	if err := s.do(req, &session); err != nil {
		return nil, fmt.Errorf("init session: %w", err)
	}
	return &session, nil
}

func (s *SSLCommerz) Validate(ctx context.Context, valID string) (*Validation, error) {
	q := url.Values{}
	q.Set("val_id", valID)
	q.Set("store_id", s.storeID)
	q.Set("store_passwd", s.storePassword)
	q.Set("v", "1")
	q.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+validatePath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	var v Validation
	if err := s.do(req, &v); err != nil {
		return nil, fmt.Errorf("validate %s: %w", valID, err)
	}
	return &v, nil
}

func (s *SSLCommerz) do(req *http.Request, out any) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway responded with status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
