package services_test

import (
	"context"
	"testing"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/domain"
	"buildease/internal/core/services"
	"buildease/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newEstimateService(t *testing.T) (*services.EstimateService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return services.NewEstimateService(repositories.NewEstimateRepository(db), logger.Nop()), db
}

func sampleInput() *services.EstimateInput {
	return &services.EstimateInput{
		ClientName:  "Park",
		ClientPhone: "010-1234-5678",
		SiteAddress: "12 Hanok-gil, Jongno-gu",
		VATIncluded: true,
		Items: []services.EstimateItemInput{
			{Category: "demolition", Description: "Remove old flooring", Quantity: 10, UnitPrice: 50000},
			{Category: "carpentry", Description: "Install wood deck", Spec: "oak", Quantity: 4, UnitPrice: 250000},
		},
	}
}

func TestEstimateCreate_ComputesAmounts(t *testing.T) {
	svc, _ := newEstimateService(t)

	est, err := svc.Create(context.Background(), "boss1", sampleInput())
	require.NoError(t, err)

	require.Len(t, est.Items, 2)
	assert.Equal(t, float64(500000), est.Items[0].Amount)
	assert.Equal(t, float64(1000000), est.Items[1].Amount)
	assert.Equal(t, float64(1500000), est.TotalAmount)
	assert.Equal(t, "negotiating", est.Status)
}

func TestEstimateCreate_RejectsNegativeQuantity(t *testing.T) {
	svc, _ := newEstimateService(t)

	input := sampleInput()
	input.Items[0].Quantity = -1

	_, err := svc.Create(context.Background(), "boss1", input)
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestEstimateGet_OwnerOnly(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	got, err := svc.Get(ctx, est.ID, "boss1")
	require.NoError(t, err)
	assert.Equal(t, est.ID, got.ID)

	_, err = svc.Get(ctx, est.ID, "intruder")
	assert.ErrorIs(t, err, services.ErrNotOwner)
}

func TestEstimateUpdate_ReplacesItemsAndRecomputesTotal(t *testing.T) {
	svc, db := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	update := sampleInput()
	update.Items = []services.EstimateItemInput{
		{Category: "painting", Description: "Interior repaint", Quantity: 3, UnitPrice: 100000},
	}

	updated, err := svc.Update(ctx, est.ID, "boss1", update)
	require.NoError(t, err)

	require.Len(t, updated.Items, 1)
	assert.Equal(t, "painting", updated.Items[0].Category)
	assert.Equal(t, float64(300000), updated.TotalAmount)

	// The old item rows are gone, not orphaned
	var count int64
	require.NoError(t, db.Model(&models.EstimateItem{}).Where("estimate_id = ?", est.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEstimateUpdate_StatusObeysForwardOrder(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, est.ID, "boss1", "completed")
	require.NoError(t, err)

	// A backward move through update is rejected like Transition rejects it
	back := sampleInput()
	back.Status = "consultation"
	_, err = svc.Update(ctx, est.ID, "boss1", back)
	_, ok := domain.AsValidationError(err)
	require.True(t, ok)

	got, err := svc.Get(ctx, est.ID, "boss1")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)

	// Resending the current status is a plain field update, not a move
	same := sampleInput()
	same.Status = "completed"
	updated, err := svc.Update(ctx, est.ID, "boss1", same)
	require.NoError(t, err)
	assert.Equal(t, "completed", updated.Status)
}

func TestEstimateUpdate_StatusCanMoveForward(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	input := sampleInput()
	input.Status = "contracted"
	updated, err := svc.Update(ctx, est.ID, "boss1", input)
	require.NoError(t, err)
	assert.Equal(t, "contracted", updated.Status)
}

func TestEstimateUpdate_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	_, err = svc.Update(ctx, est.ID, "intruder", sampleInput())
	assert.ErrorIs(t, err, services.ErrNotOwner)
}

func TestEstimateList_FiltersByOwnerAndStatus(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, "boss1", sampleInput())
		require.NoError(t, err)
	}
	_, err := svc.Create(ctx, "boss2", sampleInput())
	require.NoError(t, err)

	out, err := svc.ListByOwner(ctx, "boss1", "", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Total)
	assert.Len(t, out.Estimates, 3)

	// Paged fetch keeps the unpaged total
	paged, err := svc.ListByOwner(ctx, "boss1", "", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), paged.Total)
	assert.Len(t, paged.Estimates, 2)

	none, err := svc.ListByOwner(ctx, "boss1", "completed", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(0), none.Total)
}

func TestEstimateList_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newEstimateService(t)

	_, err := svc.ListByOwner(context.Background(), "boss1", "bogus", 0, 20)
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestEstimateTransition_ForwardOnly(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	// Skipping forward over intermediate statuses is allowed
	est, err = svc.Transition(ctx, est.ID, "boss1", "contracted")
	require.NoError(t, err)
	assert.Equal(t, "contracted", est.Status)

	// Lifecycle never moves backward
	_, err = svc.Transition(ctx, est.ID, "boss1", "contract_ready")
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)

	est, err = svc.Transition(ctx, est.ID, "boss1", "completed")
	require.NoError(t, err)
	assert.Equal(t, "completed", est.Status)
}

func TestEstimateTransition_SameStatusRejected(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	_, err = svc.Transition(ctx, est.ID, "boss1", "negotiating")
	_, ok := domain.AsValidationError(err)
	assert.True(t, ok)
}

func TestEstimateDelete_CascadesItemsAndStages(t *testing.T) {
	svc, db := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	stage := &models.ConstructionStage{ProjectID: est.ID, Name: "Demolition", Status: "pending"}
	require.NoError(t, db.Create(stage).Error)

	require.NoError(t, svc.Delete(ctx, est.ID, "boss1"))

	var items, stages int64
	require.NoError(t, db.Model(&models.EstimateItem{}).Where("estimate_id = ?", est.ID).Count(&items).Error)
	require.NoError(t, db.Model(&models.ConstructionStage{}).Where("project_id = ?", est.ID).Count(&stages).Error)
	assert.Equal(t, int64(0), items)
	assert.Equal(t, int64(0), stages)

	_, err = svc.Get(ctx, est.ID, "boss1")
	assert.ErrorIs(t, err, services.ErrEstimateNotFound)
}

func TestEstimateDelete_ForbiddenForNonOwner(t *testing.T) {
	svc, _ := newEstimateService(t)
	ctx := context.Background()

	est, err := svc.Create(ctx, "boss1", sampleInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, est.ID, "intruder")
	assert.ErrorIs(t, err, services.ErrNotOwner)
}
