package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateStatusTransitions(t *testing.T) {
	tests := []struct {
		from    EstimateStatus
		to      EstimateStatus
		allowed bool
	}{
		{EstimateConsultation, EstimateNegotiating, true},
		{EstimateConsultation, EstimateCompleted, true},
		{EstimateNegotiating, EstimateContractReady, true},
		{EstimateContractReady, EstimateContracted, true},
		{EstimateContracted, EstimateCompleted, true},
		{EstimateNegotiating, EstimateConsultation, false},
		{EstimateCompleted, EstimateContracted, false},
		{EstimateNegotiating, EstimateNegotiating, false},
		{EstimateNegotiating, EstimateStatus("bogus"), false},
		{EstimateStatus("bogus"), EstimateNegotiating, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestEstimateStatusValid(t *testing.T) {
	assert.True(t, EstimateNegotiating.Valid())
	assert.False(t, EstimateStatus("draft").Valid())
}

func TestStageRingAdvance(t *testing.T) {
	s := StagePending
	s = s.Next()
	assert.Equal(t, StageInProgress, s)
	s = s.Next()
	assert.Equal(t, StageCompleted, s)
	s = s.Next()
	assert.Equal(t, StagePending, s)
	// fourth call wraps back into the ring start
	assert.Equal(t, StageInProgress, s.Next())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleBoss.Valid())
	assert.True(t, RoleEmployee.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("manager").Valid())
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("quantity", "must be positive").
		Add("name", "is required")

	assert.Equal(t, "validation failed: name: is required; quantity: must be positive", err.Error())

	ve, ok := AsValidationError(err)
	assert.True(t, ok)
	assert.Len(t, ve.Fields, 2)
}
