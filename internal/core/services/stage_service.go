package services

import (
	"context"
	"errors"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/domain"
	"buildease/internal/pkg/logger"

	"gorm.io/gorm"
)

// Stage service errors
var (
	ErrStageNotFound = errors.New("construction stage not found")
)

// StageService tracks per-project construction stages
type StageService struct {
	stageRepo    repositories.StageRepository
	estimateRepo repositories.EstimateRepository
	scheduler    *AIService
	log          *logger.Logger
}

// NewStageService creates a new stage service
func NewStageService(
	stageRepo repositories.StageRepository,
	estimateRepo repositories.EstimateRepository,
	scheduler *AIService,
	log *logger.Logger,
) *StageService {
	return &StageService{
		stageRepo:    stageRepo,
		estimateRepo: estimateRepo,
		scheduler:    scheduler,
		log:          log,
	}
}

// StageInput represents create/update input for a stage
type StageInput struct {
	ProjectID   uint   `json:"project_id"`
	Name        string `json:"name"`
	Manager     string `json:"manager"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ownedProject loads the project and checks the caller owns it
func (s *StageService) ownedProject(ctx context.Context, projectID uint, callerID string) (*models.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstimateNotFound
		}
		return nil, err
	}
	if estimate.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return estimate, nil
}

// Create adds a stage to a project the caller owns
func (s *StageService) Create(ctx context.Context, callerID string, input *StageInput) (*models.ConstructionStage, error) {
	if input.Name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	status := domain.StageStatus(input.Status)
	if input.Status == "" {
		status = domain.StagePending
	} else if !status.Valid() {
		return nil, domain.NewValidationError("status", "must be pending, in_progress or completed")
	}

	if _, err := s.ownedProject(ctx, input.ProjectID, callerID); err != nil {
		return nil, err
	}

	stage := &models.ConstructionStage{
		ProjectID:   input.ProjectID,
		Name:        input.Name,
		Manager:     input.Manager,
		Duration:    input.Duration,
		Description: input.Description,
		Status:      string(status),
	}

	if err := s.stageRepo.Create(ctx, stage); err != nil {
		return nil, err
	}

	return stage, nil
}

// ListByProject lists the stages of a project the caller owns
func (s *StageService) ListByProject(ctx context.Context, projectID uint, callerID string) ([]*models.ConstructionStage, error) {
	if _, err := s.ownedProject(ctx, projectID, callerID); err != nil {
		return nil, err
	}
	return s.stageRepo.ListByProject(ctx, projectID)
}

// Update edits a stage's fields. A direct status edit is permitted for
// correction purposes; Advance is the guaranteed ring primitive.
func (s *StageService) Update(ctx context.Context, id uint, callerID string, input *StageInput) (*models.ConstructionStage, error) {
	stage, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if input.Status != "" && !domain.StageStatus(input.Status).Valid() {
		return nil, domain.NewValidationError("status", "must be pending, in_progress or completed")
	}

	if input.Name != "" {
		stage.Name = input.Name
	}
	stage.Manager = input.Manager
	stage.Duration = input.Duration
	stage.Description = input.Description
	if input.Status != "" {
		stage.Status = input.Status
	}

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, err
	}

	return stage, nil
}

// Advance cycles the stage status around the three-state ring:
// pending -> in_progress -> completed -> pending
func (s *StageService) Advance(ctx context.Context, id uint, callerID string) (*models.ConstructionStage, error) {
	stage, err := s.owned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	stage.Status = string(domain.StageStatus(stage.Status).Next())

	if err := s.stageRepo.Update(ctx, stage); err != nil {
		return nil, err
	}

	return stage, nil
}

// Delete removes a stage from a project the caller owns
func (s *StageService) Delete(ctx context.Context, id uint, callerID string) error {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return err
	}
	return s.stageRepo.Delete(ctx, id)
}

// owned loads a stage and checks the caller owns its project
func (s *StageService) owned(ctx context.Context, id uint, callerID string) (*models.ConstructionStage, error) {
	stage, err := s.stageRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStageNotFound
		}
		return nil, err
	}
	if _, err := s.ownedProject(ctx, stage.ProjectID, callerID); err != nil {
		return nil, err
	}
	return stage, nil
}

// ProposeSchedule submits the project's ordered stage list to the AI
// scheduling collaborator and returns the date-annotated alternate list.
// The result is advisory only and is never written back.
func (s *StageService) ProposeSchedule(ctx context.Context, projectID uint, callerID string) (*ScheduleProposal, error) {
	estimate, err := s.ownedProject(ctx, projectID, callerID)
	if err != nil {
		return nil, err
	}

	stages, err := s.stageRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	return s.scheduler.ExpandSchedule(ctx, estimate, stages), nil
}
