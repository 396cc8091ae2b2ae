package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"buildease/internal/pkg/logger"
)

// AddressConfig holds the address-lookup collaborator configuration
type AddressConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// AddressService searches candidate addresses by keyword through the
// external lookup collaborator. Failures degrade to an empty candidate list.
type AddressService struct {
	cfg    AddressConfig
	client *http.Client
	log    *logger.Logger
}

// NewAddressService creates a new address collaborator client
func NewAddressService(cfg AddressConfig, log *logger.Logger) *AddressService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &AddressService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// AddressCandidate is one search result
type AddressCandidate struct {
	RoadAddress string `json:"road_address"`
	LotAddress  string `json:"lot_address,omitempty"`
	ZipCode     string `json:"zip_code,omitempty"`
}

// AddressSearchResult carries the candidates plus the degraded marker
type AddressSearchResult struct {
	Candidates []AddressCandidate `json:"candidates"`
	Degraded   bool               `json:"degraded"`
}

// Search returns candidate addresses for a keyword
func (s *AddressService) Search(ctx context.Context, keyword string) *AddressSearchResult {
	if s.cfg.BaseURL == "" {
		return s.degraded(fmt.Errorf("address collaborator not configured"))
	}

	endpoint := fmt.Sprintf("%s/search?keyword=%s", s.cfg.BaseURL, url.QueryEscape(keyword))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return s.degraded(err)
	}
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return s.degraded(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return s.degraded(err)
	}
	if resp.StatusCode != http.StatusOK {
		return s.degraded(fmt.Errorf("address lookup status %d: %s", resp.StatusCode, string(body)))
	}

	var result AddressSearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return s.degraded(err)
	}
	if result.Candidates == nil {
		result.Candidates = []AddressCandidate{}
	}

	return &result
}

func (s *AddressService) degraded(err error) *AddressSearchResult {
	s.log.Warn().Err(err).Msg("address lookup degraded to fallback")
	return &AddressSearchResult{Candidates: []AddressCandidate{}, Degraded: true}
}
