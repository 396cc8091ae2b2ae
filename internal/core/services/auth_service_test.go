package services_test

import (
	"context"
	"testing"

	"buildease/internal/adapters/persistence/repositories"
	"buildease/internal/core/domain"
	"buildease/internal/core/services"
	"buildease/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T) *services.AuthService {
	t.Helper()
	db := newTestDB(t)
	return services.NewAuthService(repositories.NewUserRepository(db), logger.Nop())
}

func registerBoss(t *testing.T, svc *services.AuthService, id string) string {
	t.Helper()
	boss, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:          id,
		Password:    "bosspass123",
		Name:        "Boss " + id,
		Role:        "boss",
		CompanyName: "Hanok Builders",
	})
	require.NoError(t, err)
	require.NotEmpty(t, boss.CompanyCode)
	return boss.CompanyCode
}

func registerEmployee(t *testing.T, svc *services.AuthService, id, code string) {
	t.Helper()
	_, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:          id,
		Password:    "workerpass123",
		Name:        "Worker " + id,
		Role:        "employee",
		CompanyCode: code,
	})
	require.NoError(t, err)
}

func TestRegister_BossGetsCodeAndApproval(t *testing.T) {
	svc := newAuthService(t)

	boss, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:       "boss1",
		Password: "supersecret1",
		Name:     "Kim",
		Role:     "boss",
	})
	require.NoError(t, err)

	assert.Equal(t, "approved", boss.Status)
	assert.Len(t, boss.CompanyCode, 10)
	for _, r := range boss.CompanyCode {
		assert.True(t, (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'),
			"company code must be lowercase alphanumeric, got %q", boss.CompanyCode)
	}
}

func TestRegister_EmployeeStartsPending(t *testing.T) {
	svc := newAuthService(t)
	code := registerBoss(t, svc, "boss1")

	emp, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:          "emp1",
		Password:    "workerpass123",
		Name:        "Lee",
		Role:        "employee",
		CompanyCode: code,
	})
	require.NoError(t, err)

	assert.Equal(t, "pending", emp.Status)
	assert.Equal(t, code, emp.CompanyCode)
}

func TestRegister_EmployeeRequiresCompanyCode(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:       "emp1",
		Password: "workerpass123",
		Name:     "Lee",
		Role:     "employee",
	})
	require.Error(t, err)

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "company_code")
}

func TestRegister_IDIsCaseSensitive(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	registerBoss(t, svc, "Boss1")

	// A different casing is a different identity, not a duplicate
	taken, err := svc.CheckID(ctx, "boss1")
	require.NoError(t, err)
	assert.False(t, taken)

	_, err = svc.Login(ctx, "boss1", "bosspass123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	registerBoss(t, svc, "boss1")
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	svc := newAuthService(t)

	// The admin account comes from the bootstrap seeder, never from here
	_, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:       "sneaky",
		Password: "supersecret1",
		Name:     "Sneaky",
		Role:     "admin",
	})
	require.Error(t, err)

	ve, ok := domain.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Fields, "role")
}

func TestRegister_DuplicateID(t *testing.T) {
	svc := newAuthService(t)
	registerBoss(t, svc, "boss1")

	_, err := svc.Register(context.Background(), &services.RegisterInput{
		ID:       "boss1",
		Password: "anotherpass1",
		Name:     "Impostor",
		Role:     "boss",
	})
	assert.ErrorIs(t, err, services.ErrDuplicateIdentity)
}

func TestLogin_UniformFailure(t *testing.T) {
	svc := newAuthService(t)
	registerBoss(t, svc, "boss1")

	// Unknown id and wrong password must be indistinguishable
	_, errUnknown := svc.Login(context.Background(), "ghost", "whatever123")
	_, errWrong := svc.Login(context.Background(), "boss1", "wrongpass123")

	assert.ErrorIs(t, errUnknown, services.ErrInvalidCredentials)
	assert.ErrorIs(t, errWrong, services.ErrInvalidCredentials)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLogin_SucceedsRegardlessOfStatus(t *testing.T) {
	svc := newAuthService(t)
	code := registerBoss(t, svc, "boss1")
	registerEmployee(t, svc, "emp1", code)

	// Still pending, login works; the caller branches on status
	user, err := svc.Login(context.Background(), "emp1", "workerpass123")
	require.NoError(t, err)
	assert.Equal(t, "pending", user.Status)
}

func TestApprovalFlow(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	code := registerBoss(t, svc, "boss1")
	registerEmployee(t, svc, "emp1", code)

	emp, err := svc.Approve(ctx, "boss1", "emp1")
	require.NoError(t, err)
	assert.Equal(t, "approved", emp.Status)

	// Decisions are one directional; a second decision is rejected
	_, err = svc.Reject(ctx, "boss1", "emp1")
	assert.ErrorIs(t, err, services.ErrNotPending)
}

func TestReject_ThenApproveFails(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	code := registerBoss(t, svc, "boss1")
	registerEmployee(t, svc, "emp1", code)

	emp, err := svc.Reject(ctx, "boss1", "emp1")
	require.NoError(t, err)
	assert.Equal(t, "rejected", emp.Status)

	_, err = svc.Approve(ctx, "boss1", "emp1")
	assert.ErrorIs(t, err, services.ErrNotPending)
}

func TestApprove_CrossCompanyForbidden(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	codeA := registerBoss(t, svc, "bossA")
	registerBoss(t, svc, "bossB")
	registerEmployee(t, svc, "empA", codeA)

	_, err := svc.Approve(ctx, "bossB", "empA")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestApprove_EmployeeCannotDecide(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	code := registerBoss(t, svc, "boss1")
	registerEmployee(t, svc, "emp1", code)
	registerEmployee(t, svc, "emp2", code)

	_, err := svc.Approve(ctx, "emp1", "emp2")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVerifyCompanyCode(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	code := registerBoss(t, svc, "boss1")

	boss, err := svc.VerifyCompanyCode(ctx, code)
	require.NoError(t, err)
	require.NotNil(t, boss)
	assert.Equal(t, "boss1", boss.ID)

	unknown, err := svc.VerifyCompanyCode(ctx, "nosuchcode")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

func TestCheckID(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	registerBoss(t, svc, "boss1")

	taken, err := svc.CheckID(ctx, "boss1")
	require.NoError(t, err)
	assert.True(t, taken)

	free, err := svc.CheckID(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestListCompanyMembers(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()
	code := registerBoss(t, svc, "boss1")
	registerEmployee(t, svc, "emp1", code)
	registerEmployee(t, svc, "emp2", code)

	otherCode := registerBoss(t, svc, "boss2")
	registerEmployee(t, svc, "stranger", otherCode)

	members, err := svc.ListCompanyMembers(ctx, code)
	require.NoError(t, err)
	assert.Len(t, members, 3)
	for _, m := range members {
		assert.Equal(t, code, m.CompanyCode)
	}
}
