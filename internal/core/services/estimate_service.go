package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/domain"
	"buildease/internal/pkg/logger"

	"gorm.io/gorm"
)

// Estimate service errors
var (
	ErrEstimateNotFound = errors.New("estimate not found")
	ErrNotOwner         = domain.ErrForbidden
)

// EstimateService handles the estimate/project lifecycle
type EstimateService struct {
	estimateRepo repositories.EstimateRepository
	log          *logger.Logger
}

// NewEstimateService creates a new estimate service
func NewEstimateService(estimateRepo repositories.EstimateRepository, log *logger.Logger) *EstimateService {
	return &EstimateService{
		estimateRepo: estimateRepo,
		log:          log,
	}
}

// EstimateItemInput represents one submitted line item. Any client-sent
// amount is ignored; the server recomputes it.
type EstimateItemInput struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Spec        string  `json:"spec"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// EstimateInput represents create/update input for an estimate
type EstimateInput struct {
	ClientName      string              `json:"client_name"`
	ClientPhone     string              `json:"client_phone"`
	SiteAddress     string              `json:"site_address"`
	StartDate       *time.Time          `json:"start_date"`
	EndDate         *time.Time          `json:"end_date"`
	VATIncluded     bool                `json:"vat_included"`
	Status          string              `json:"status"`
	Memo            string              `json:"memo"`
	ImageURL        string              `json:"image_url"`
	Style           string              `json:"style"`
	DownPayment     float64             `json:"down_payment"`
	ProgressPayment float64             `json:"progress_payment"`
	BalancePayment  float64             `json:"balance_payment"`
	Items           []EstimateItemInput `json:"items"`
}

// buildItems recomputes each line amount as quantity * unit_price and
// returns the rows plus their sum
func buildItems(inputs []EstimateItemInput) ([]models.EstimateItem, float64, error) {
	items := make([]models.EstimateItem, 0, len(inputs))
	var total float64
	for i, in := range inputs {
		if in.Quantity < 0 {
			return nil, 0, domain.NewValidationError("items", "quantity must not be negative").
				Add("index", strconv.Itoa(i))
		}
		if in.UnitPrice < 0 {
			return nil, 0, domain.NewValidationError("items", "unit price must not be negative").
				Add("index", strconv.Itoa(i))
		}
		amount := in.Quantity * in.UnitPrice
		items = append(items, models.EstimateItem{
			Category:    in.Category,
			Description: in.Description,
			Spec:        in.Spec,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Amount:      amount,
		})
		total += amount
	}
	return items, total, nil
}


// Create inserts a new estimate with its items as one atomic unit
func (s *EstimateService) Create(ctx context.Context, ownerID string, input *EstimateInput) (*models.Estimate, error) {
	status := domain.EstimateStatus(input.Status)
	if input.Status == "" {
		status = domain.EstimateNegotiating
	} else if !status.Valid() {
		return nil, domain.NewValidationError("status", "unknown lifecycle status")
	}

	items, total, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	estimate := &models.Estimate{
		OwnerID:         ownerID,
		ClientName:      input.ClientName,
		ClientPhone:     input.ClientPhone,
		SiteAddress:     input.SiteAddress,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		TotalAmount:     total,
		VATIncluded:     input.VATIncluded,
		Status:          string(status),
		Memo:            input.Memo,
		ImageURL:        input.ImageURL,
		Style:           input.Style,
		DownPayment:     input.DownPayment,
		ProgressPayment: input.ProgressPayment,
		BalancePayment:  input.BalancePayment,
	}

	if err := s.estimateRepo.CreateWithItems(ctx, estimate, items); err != nil {
		return nil, err
	}

	s.log.Info().Uint("estimate", estimate.ID).Str("owner", ownerID).Msg("estimate created")

	return estimate, nil
}

// Get returns an estimate with its items and stages, owner only
func (s *EstimateService) Get(ctx context.Context, id uint, callerID string) (*models.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstimateNotFound
		}
		return nil, err
	}
	if estimate.OwnerID != callerID {
		return nil, ErrNotOwner
	}
	return estimate, nil
}

// ListOutput represents a page of estimates
type ListOutput struct {
	Estimates []*models.Estimate `json:"estimates"`
	Total     int64              `json:"total"`
}

// ListByOwner lists the caller's estimates with an optional status filter
func (s *EstimateService) ListByOwner(ctx context.Context, ownerID string, status string, offset, limit int) (*ListOutput, error) {
	if status != "" && !domain.EstimateStatus(status).Valid() {
		return nil, domain.NewValidationError("status", "unknown lifecycle status")
	}

	estimates, total, err := s.estimateRepo.ListByOwner(ctx, ownerID, status, offset, limit)
	if err != nil {
		return nil, err
	}

	return &ListOutput{Estimates: estimates, Total: total}, nil
}

// Update replaces the estimate and its whole item set. Owner only; the item
// replacement is delete-all-then-reinsert-all, and the total is recomputed
// from the reinserted items the same way Create does.
func (s *EstimateService) Update(ctx context.Context, id uint, callerID string, input *EstimateInput) (*models.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstimateNotFound
		}
		return nil, err
	}
	if estimate.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	// A status change through update obeys the same forward-only table as
	// Transition; sending the current status back is a no-op, not a move.
	if input.Status != "" && input.Status != estimate.Status {
		target := domain.EstimateStatus(input.Status)
		if !target.Valid() {
			return nil, domain.NewValidationError("status", "unknown lifecycle status")
		}
		if !domain.EstimateStatus(estimate.Status).CanTransitionTo(target) {
			return nil, domain.NewValidationError("status",
				"cannot transition from "+estimate.Status+" to "+input.Status)
		}
	}

	items, total, err := buildItems(input.Items)
	if err != nil {
		return nil, err
	}

	estimate.ClientName = input.ClientName
	estimate.ClientPhone = input.ClientPhone
	estimate.SiteAddress = input.SiteAddress
	estimate.StartDate = input.StartDate
	estimate.EndDate = input.EndDate
	estimate.TotalAmount = total
	estimate.VATIncluded = input.VATIncluded
	if input.Status != "" {
		estimate.Status = input.Status
	}
	estimate.Memo = input.Memo
	estimate.ImageURL = input.ImageURL
	estimate.Style = input.Style
	estimate.DownPayment = input.DownPayment
	estimate.ProgressPayment = input.ProgressPayment
	estimate.BalancePayment = input.BalancePayment

	if err := s.estimateRepo.UpdateWithItems(ctx, estimate, items); err != nil {
		return nil, err
	}

	s.log.Info().Uint("estimate", estimate.ID).Str("owner", callerID).Msg("estimate updated")

	return estimate, nil
}

// Transition moves the estimate forward in its lifecycle. Transitions not in
// the forward table are rejected as validation errors.
func (s *EstimateService) Transition(ctx context.Context, id uint, callerID string, target string) (*models.Estimate, error) {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEstimateNotFound
		}
		return nil, err
	}
	if estimate.OwnerID != callerID {
		return nil, ErrNotOwner
	}

	targetStatus := domain.EstimateStatus(target)
	if !targetStatus.Valid() {
		return nil, domain.NewValidationError("status", "unknown lifecycle status")
	}
	if !domain.EstimateStatus(estimate.Status).CanTransitionTo(targetStatus) {
		return nil, domain.NewValidationError("status",
			"cannot transition from "+estimate.Status+" to "+target)
	}

	if err := s.estimateRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	estimate.Status = target

	s.log.Info().Uint("estimate", id).Str("status", target).Msg("estimate transitioned")

	return estimate, nil
}

// Delete hard-deletes the estimate with all item and stage rows. Owner only.
func (s *EstimateService) Delete(ctx context.Context, id uint, callerID string) error {
	estimate, err := s.estimateRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEstimateNotFound
		}
		return err
	}
	if estimate.OwnerID != callerID {
		return ErrNotOwner
	}

	if err := s.estimateRepo.DeleteCascade(ctx, id); err != nil {
		return err
	}

	s.log.Info().Uint("estimate", id).Str("owner", callerID).Msg("estimate deleted")

	return nil
}
