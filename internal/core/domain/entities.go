package domain

// Role represents user role in the system
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBoss     Role = "boss"
	RoleEmployee Role = "employee"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleBoss, RoleEmployee:
		return true
	}
	return false
}

// UserStatus represents the approval status of a user
type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"
	StatusRejected UserStatus = "rejected"
)

// EstimateStatus represents the lifecycle status of an estimate
type EstimateStatus string

const (
	EstimateConsultation  EstimateStatus = "consultation"
	EstimateNegotiating   EstimateStatus = "negotiating"
	EstimateContractReady EstimateStatus = "contract_ready"
	EstimateContracted    EstimateStatus = "contracted"
	EstimateCompleted     EstimateStatus = "completed"
)

// estimateOrder fixes the forward lifecycle sequence
var estimateOrder = map[EstimateStatus]int{
	EstimateConsultation:  0,
	EstimateNegotiating:   1,
	EstimateContractReady: 2,
	EstimateContracted:    3,
	EstimateCompleted:     4,
}

// Valid reports whether the status is one of the known lifecycle statuses
func (s EstimateStatus) Valid() bool {
	_, ok := estimateOrder[s]
	return ok
}

// CanTransitionTo reports whether moving from s to target is a forward step.
// The lifecycle only moves forward; staying in place is not a transition.
func (s EstimateStatus) CanTransitionTo(target EstimateStatus) bool {
	from, ok := estimateOrder[s]
	if !ok {
		return false
	}
	to, ok := estimateOrder[target]
	if !ok {
		return false
	}
	return to > from
}

// StageStatus represents the status of a construction stage
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// Valid reports whether the status is part of the stage ring
func (s StageStatus) Valid() bool {
	switch s {
	case StagePending, StageInProgress, StageCompleted:
		return true
	}
	return false
}

// Next advances the three-state ring: pending -> in_progress -> completed -> pending.
// Unknown statuses reset to pending.
func (s StageStatus) Next() StageStatus {
	switch s {
	case StagePending:
		return StageInProgress
	case StageInProgress:
		return StageCompleted
	default:
		return StagePending
	}
}

// BusinessInfo holds the structured fields of a business registration certificate
type BusinessInfo struct {
	CompanyName    string `json:"company_name"`
	Representative string `json:"representative"`
	BusinessNumber string `json:"business_number"`
	OpenDate       string `json:"open_date"`
	BusinessType   string `json:"business_type"`
	BusinessItem   string `json:"business_item"`
}
