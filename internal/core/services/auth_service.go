package services

import (
	"context"
	"errors"
	"fmt"

	"buildease/internal/adapters/persistence/models"
	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/domain"
	"buildease/internal/pkg/logger"
	"buildease/internal/pkg/password"
	"buildease/internal/pkg/token"

	"gorm.io/gorm"
)

// Auth errors
var (
	ErrDuplicateIdentity  = domain.ErrDuplicateIdentity
	ErrInvalidCredentials = domain.ErrInvalidCredentials
	ErrUserNotFound       = errors.New("user not found")
	ErrNotPending         = errors.New("user is not pending approval")
	ErrCompanyCodeIssue   = errors.New("could not issue a unique company code")
)

// companyCodeRetries bounds the generate-then-check loop on code issuance
const companyCodeRetries = 5

// AuthService handles registration, login and the approval workflow
type AuthService struct {
	userRepo repositories.UserRepository
	log      *logger.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, log *logger.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		log:      log,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	ID           string               `json:"id"`
	Password     string               `json:"password"`
	Name         string               `json:"name"`
	Role         string               `json:"role"`
	CompanyCode  string               `json:"company_code"`
	Phone        string               `json:"phone"`
	CompanyName  string               `json:"company_name"`
	BusinessInfo *domain.BusinessInfo `json:"business_info"`
	Address      string               `json:"address"`
	Department   string               `json:"department"`
	Position     string               `json:"position"`
}

// Register creates a new user. A boss receives a freshly issued company code
// and is approved immediately; an employee joins with a supplied code and
// starts pending. The supplied code is not cross-checked here; VerifyCompanyCode
// is the optional pre-check callers may run first.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.UserResponse, error) {
	exists, err := s.userRepo.ExistsByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateIdentity
	}

	role := domain.Role(input.Role)
	if !role.Valid() {
		return nil, domain.NewValidationError("role", "must be boss or employee")
	}
	// The admin account is created by the bootstrap seeder only
	if role == domain.RoleAdmin {
		return nil, domain.NewValidationError("role", "must be boss or employee")
	}

	hash, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           input.ID,
		PasswordHash: hash,
		Name:         input.Name,
		Role:         input.Role,
		CompanyCode:  input.CompanyCode,
		Status:       string(domain.StatusPending),
		Phone:        input.Phone,
		CompanyName:  input.CompanyName,
		Address:      input.Address,
		Department:   input.Department,
		Position:     input.Position,
	}
	if input.BusinessInfo != nil {
		user.BusinessNumber = input.BusinessInfo.BusinessNumber
		if err := user.SetBusinessInfo(input.BusinessInfo); err != nil {
			return nil, err
		}
	}

	switch role {
	case domain.RoleBoss:
		// A boss owns its company and is implicitly approved
		user.Status = string(domain.StatusApproved)
		code, err := s.issueCompanyCode(ctx)
		if err != nil {
			return nil, err
		}
		user.CompanyCode = code
	case domain.RoleEmployee:
		if input.CompanyCode == "" {
			return nil, domain.NewValidationError("company_code", "is required for employees")
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user", user.ID).Str("role", user.Role).Msg("user registered")

	return user.ToResponse(), nil
}

// issueCompanyCode generates a fresh code, re-checking it against existing
// boss codes and retrying on collision
func (s *AuthService) issueCompanyCode(ctx context.Context) (string, error) {
	for i := 0; i < companyCodeRetries; i++ {
		code, err := token.NewCompanyCode()
		if err != nil {
			return "", err
		}
		inUse, err := s.userRepo.CompanyCodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}
	return "", ErrCompanyCodeIssue
}

// Login verifies credentials and returns the sanitized identity. Missing user
// and wrong password both fail with the same error so the response cannot be
// used for account enumeration. Approval status does not gate login; the
// caller branches on status.
func (s *AuthService) Login(ctx context.Context, id, plaintext string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(plaintext, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	s.log.Info().Str("user", user.ID).Msg("user logged in")

	return user.ToResponse(), nil
}

// GetByID returns the sanitized identity for a login id
func (s *AuthService) GetByID(ctx context.Context, id string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// CheckID reports whether a login id is already taken
func (s *AuthService) CheckID(ctx context.Context, id string) (bool, error) {
	return s.userRepo.ExistsByID(ctx, id)
}

// VerifyCompanyCode checks a company code against existing bosses. Invalid
// codes return (nil, nil) rather than an error.
func (s *AuthService) VerifyCompanyCode(ctx context.Context, code string) (*models.UserResponse, error) {
	boss, err := s.userRepo.GetBossByCompanyCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return boss.ToResponse(), nil
}

// Approve marks a pending member of the caller's company as approved
func (s *AuthService) Approve(ctx context.Context, callerID, targetID string) (*models.UserResponse, error) {
	return s.decide(ctx, callerID, targetID, domain.StatusApproved)
}

// Reject marks a pending member of the caller's company as rejected
func (s *AuthService) Reject(ctx context.Context, callerID, targetID string) (*models.UserResponse, error) {
	return s.decide(ctx, callerID, targetID, domain.StatusRejected)
}

// decide applies the one-directional pending -> approved/rejected transition.
// Only a boss of the target's company may decide, and only once.
func (s *AuthService) decide(ctx context.Context, callerID, targetID string, status domain.UserStatus) (*models.UserResponse, error) {
	caller, err := s.userRepo.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if caller.Role != string(domain.RoleBoss) {
		return nil, domain.ErrForbidden
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if caller.CompanyCode == "" || caller.CompanyCode != target.CompanyCode {
		return nil, domain.ErrForbidden
	}

	if target.Status != string(domain.StatusPending) {
		return nil, fmt.Errorf("%w: status is %s", ErrNotPending, target.Status)
	}

	target.Status = string(status)
	if err := s.userRepo.Update(ctx, target); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("boss", caller.ID).
		Str("member", target.ID).
		Str("status", target.Status).
		Msg("membership decided")

	return target.ToResponse(), nil
}

// ListCompanyMembers returns all users (boss + employees) sharing a code
func (s *AuthService) ListCompanyMembers(ctx context.Context, code string) ([]*models.UserResponse, error) {
	users, err := s.userRepo.ListByCompanyCode(ctx, code)
	if err != nil {
		return nil, err
	}
	members := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		members = append(members, u.ToResponse())
	}
	return members, nil
}
