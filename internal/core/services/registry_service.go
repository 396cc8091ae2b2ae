package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"buildease/internal/pkg/logger"
)

// RegistryConfig holds the business-registry collaborator configuration
type RegistryConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// RegistryService checks business registration numbers against the external
// registry. A timeout or non-2xx answer degrades to an unverified fallback
// and never fails the enclosing request.
type RegistryService struct {
	cfg    RegistryConfig
	client *http.Client
	log    *logger.Logger
}

// NewRegistryService creates a new registry collaborator client
func NewRegistryService(cfg RegistryConfig, log *logger.Logger) *RegistryService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &RegistryService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// RegistryCheckInput identifies the business to verify
type RegistryCheckInput struct {
	BusinessNumber string `json:"business_number"`
	OpenDate       string `json:"open_date"`
	Representative string `json:"representative"`
}

// RegistryResult is the verification outcome. Degraded marks a fallback
// produced after a collaborator failure; callers must not treat it as an
// authorization failure.
type RegistryResult struct {
	Valid      bool   `json:"valid"`
	StatusCode string `json:"status_code,omitempty"`
	Degraded   bool   `json:"degraded"`
}

// VerifyBusiness checks registration status and authenticity of a business
func (s *RegistryService) VerifyBusiness(ctx context.Context, input *RegistryCheckInput) *RegistryResult {
	if s.cfg.BaseURL == "" {
		return &RegistryResult{Valid: true, StatusCode: "unverified", Degraded: true}
	}

	raw, err := json.Marshal(input)
	if err != nil {
		return s.degraded(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/validate", bytes.NewReader(raw))
	if err != nil {
		return s.degraded(err)
	}
	req.Header.Set("Content-Type", "application/json")
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
		return s.degraded(fmt.Errorf("registry status %d: %s", resp.StatusCode, string(body)))
	}

	var result RegistryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return s.degraded(err)
	}

	return &result
}

func (s *RegistryService) degraded(err error) *RegistryResult {
	s.log.Warn().Err(err).Msg("registry check degraded to fallback")
	return &RegistryResult{Valid: true, StatusCode: "unverified", Degraded: true}
}
