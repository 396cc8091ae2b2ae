package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/core/domain"
	"buildease/internal/pkg/logger"
)

// AIConfig holds the AI collaborator configuration
type AIConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// AIService calls the external AI collaborator for schedule expansion and
// business-certificate extraction. A timeout or non-2xx answer degrades to a
// deterministic fallback; it never fails the enclosing request.
type AIService struct {
	cfg    AIConfig
	client *http.Client
	log    *logger.Logger
}

// NewAIService creates a new AI collaborator client
func NewAIService(cfg AIConfig, log *logger.Logger) *AIService {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &AIService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log,
	}
}

// ScheduledStage is one date-annotated entry of the advisory schedule
type ScheduledStage struct {
	Name        string `json:"name"`
	Manager     string `json:"manager,omitempty"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description,omitempty"`
}

// ScheduleProposal is the advisory alternate schedule. Degraded marks a
// fallback produced locally after a collaborator failure.
type ScheduleProposal struct {
	Stages   []ScheduledStage `json:"stages"`
	Degraded bool             `json:"degraded"`
}

type scheduleRequest struct {
	Model     string          `json:"model,omitempty"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date,omitempty"`
	Stages    []scheduleInput `json:"stages"`
}

type scheduleInput struct {
	Name        string `json:"name"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// ExpandSchedule asks the collaborator for a date-annotated version of the
// ordered stage list. On any failure it falls back to an even spread of the
// stages across the project window.
func (s *AIService) ExpandSchedule(ctx context.Context, project *models.Estimate, stages []*models.ConstructionStage) *ScheduleProposal {
	req := scheduleRequest{
		Model:  s.cfg.Model,
		Stages: make([]scheduleInput, 0, len(stages)),
	}
	if project.StartDate != nil {
		req.StartDate = project.StartDate.Format("2006-01-02")
	}
	if project.EndDate != nil {
		req.EndDate = project.EndDate.Format("2006-01-02")
	}
	for _, st := range stages {
		req.Stages = append(req.Stages, scheduleInput{
			Name:        st.Name,
			Duration:    st.Duration,
			Description: st.Description,
		})
	}

	var proposal ScheduleProposal
	if err := s.post(ctx, "/v1/schedule", req, &proposal); err != nil {
		s.log.Warn().Err(err).Uint("project", project.ID).Msg("schedule expansion degraded to fallback")
		return s.fallbackSchedule(project, stages)
	}

	return &proposal
}

// fallbackSchedule spreads the stages evenly over the project window,
// defaulting to one week per stage starting today
func (s *AIService) fallbackSchedule(project *models.Estimate, stages []*models.ConstructionStage) *ScheduleProposal {
	start := time.Now()
	if project.StartDate != nil {
		start = *project.StartDate
	}

	perStage := 7 * 24 * time.Hour
	if project.StartDate != nil && project.EndDate != nil && len(stages) > 0 {
		window := project.EndDate.Sub(*project.StartDate)
		if window > 0 {
			perStage = window / time.Duration(len(stages))
		}
	}

	out := make([]ScheduledStage, 0, len(stages))
	cursor := start
	for _, st := range stages {
		end := cursor.Add(perStage)
		out = append(out, ScheduledStage{
			Name:        st.Name,
			Manager:     st.Manager,
			StartDate:   cursor.Format("2006-01-02"),
			EndDate:     end.Format("2006-01-02"),
			Description: st.Description,
		})
		cursor = end
	}

	return &ScheduleProposal{Stages: out, Degraded: true}
}

// ExtractDocument sends a business-certificate image to the collaborator and
// returns the structured registry fields. Failures degrade to an empty
// result the caller can fill in manually.
func (s *AIService) ExtractDocument(ctx context.Context, imageBase64 string) (*domain.BusinessInfo, bool) {
	req := map[string]string{
		"model": s.cfg.Model,
		"image": imageBase64,
	}

	var info domain.BusinessInfo
	if err := s.post(ctx, "/v1/extract-certificate", req, &info); err != nil {
		s.log.Warn().Err(err).Msg("document extraction degraded to fallback")
		return &domain.BusinessInfo{}, true
	}

	return &info, false
}

// post sends a JSON request to the collaborator and decodes the answer
func (s *AIService) post(ctx context.Context, path string, payload, out interface{}) error {
	if s.cfg.BaseURL == "" {
		return fmt.Errorf("ai collaborator not configured")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai collaborator status %d: %s", resp.StatusCode, string(body))
	}

	return json.Unmarshal(body, out)
}
