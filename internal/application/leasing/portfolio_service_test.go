package leasing

import (
	"context"
	"testing"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newPortfolioService(tenantRepo *MockTenantRepository, unitRepo *MockUnitRepository) *PortfolioService {
	return NewPortfolioService(tenantRepo, unitRepo, zap.NewNop())
}

func TestPortfolioService_RegisterTenant(t *testing.T) {
	t.Run("register tenant successfully", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		tenantRepo.On("FindByPhone", ctx, "+254712345678").Return(nil, nil)
		tenantRepo.On("Save", ctx, mock.MatchedBy(func(tn *leasing.Tenant) bool {
			return tn.FullName == "Achieng Otieno" && tn.Phone == "+254712345678" && tn.Blacklist == leasing.BlacklistNone
		})).Return(nil)

		result, err := service.RegisterTenant(ctx, RegisterTenantRequest{
			FullName: "Achieng Otieno",
			Phone:    "+254712345678",
			Email:    "achieng@example.com",
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "Achieng Otieno", result.FullName)
		assert.Equal(t, "none", result.Blacklist)
		assert.False(t, result.DebtFlagged)
		tenantRepo.AssertExpectations(t)
	})

	t.Run("fail when phone number is already registered", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		existing := createTestTenant()
		tenantRepo.On("FindByPhone", ctx, "+254712345678").Return(existing, nil)

		result, err := service.RegisterTenant(ctx, RegisterTenantRequest{
			FullName: "Wanjiru Kamau",
			Phone:    "+254712345678",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "A tenant with this phone number already exists")
		tenantRepo.AssertNotCalled(t, "Save")
	})

	t.Run("fail on empty name", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		tenantRepo.On("FindByPhone", ctx, "+254700000001").Return(nil, nil)

		result, err := service.RegisterTenant(ctx, RegisterTenantRequest{
			FullName: "   ",
			Phone:    "+254700000001",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Tenant name cannot be empty")
		tenantRepo.AssertNotCalled(t, "Save")
	})
}

func TestPortfolioService_SetTenantBlacklist(t *testing.T) {
	t.Run("set severe standing successfully", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		tenant := createTestTenant()
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
		tenantRepo.On("SaveWithLock", ctx, tenant).Return(nil)

		result, err := service.SetTenantBlacklist(ctx, SetBlacklistRequest{
			TenantID: tenant.ID,
			Status:   "severe",
			Actor:    uuid.New(),
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "severe", result.Blacklist)
		assert.Equal(t, leasing.BlacklistSevere, tenant.Blacklist)
		assert.True(t, tenant.IsSeverelyBlacklisted())
		tenantRepo.AssertExpectations(t)
	})

	t.Run("fail on unknown standing", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		tenant := createTestTenant()
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		result, err := service.SetTenantBlacklist(ctx, SetBlacklistRequest{
			TenantID: tenant.ID,
			Status:   "banned",
			Actor:    uuid.New(),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Unknown blacklist status")
		assert.Equal(t, leasing.BlacklistNone, tenant.Blacklist)
		tenantRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("fail when tenant not found", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		id := uuid.New()
		tenantRepo.On("FindByID", ctx, id).Return(nil, nil)

		result, err := service.SetTenantBlacklist(ctx, SetBlacklistRequest{
			TenantID: id,
			Status:   "watch",
			Actor:    uuid.New(),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Tenant not found")
	})
}

func TestPortfolioService_RegisterUnit(t *testing.T) {
	t.Run("register unit successfully", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		unitRepo.On("FindByCode", ctx, "A-12").Return(nil, nil)
		unitRepo.On("Save", ctx, mock.MatchedBy(func(u *leasing.Unit) bool {
			return u.Code == "A-12" && u.Occupancy == leasing.OccupancyVacant
		})).Return(nil)

		result, err := service.RegisterUnit(ctx, RegisterUnitRequest{
			Code:         "A-12",
			PropertyName: "Riverside Gardens",
		})

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "A-12", result.Code)
		assert.Equal(t, "vacant", result.Occupancy)
		unitRepo.AssertExpectations(t)
	})

	t.Run("fail when code is already registered", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		existing := createVacantUnit()
		unitRepo.On("FindByCode", ctx, "A-12").Return(existing, nil)

		result, err := service.RegisterUnit(ctx, RegisterUnitRequest{
			Code: "A-12",
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "A unit with this code already exists")
		unitRepo.AssertNotCalled(t, "Save")
	})
}

func TestPortfolioService_GetTenant(t *testing.T) {
	t.Run("get tenant successfully", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		tenant := createTestTenant()
		tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)

		result, err := service.GetTenant(ctx, tenant.ID)

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, tenant.ID, result.ID)
		assert.Equal(t, "+254712345678", result.Phone)
	})

	t.Run("fail when tenant not found", func(t *testing.T) {
		tenantRepo := new(MockTenantRepository)
		unitRepo := new(MockUnitRepository)
		service := newPortfolioService(tenantRepo, unitRepo)
		ctx := context.Background()

		id := uuid.New()
		tenantRepo.On("FindByID", ctx, id).Return(nil, nil)

		result, err := service.GetTenant(ctx, id)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Tenant not found")
	})
}

func TestPortfolioService_ListTenants(t *testing.T) {
	tenantRepo := new(MockTenantRepository)
	unitRepo := new(MockUnitRepository)
	service := newPortfolioService(tenantRepo, unitRepo)
	ctx := context.Background()

	first := createTestTenant()
	second, _ := leasing.NewTenant("Wanjiru Kamau", "+254733000111", "")
	tenantRepo.On("FindAll", ctx, mock.AnythingOfType("leasing.TenantFilter")).Return([]leasing.Tenant{*first, *second}, nil)
	tenantRepo.On("Count", ctx, mock.AnythingOfType("leasing.TenantFilter")).Return(int64(2), nil)

	results, total, err := service.ListTenants(ctx, TenantListFilter{Page: 1, PageSize: 20})

	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, results, 2)
	assert.Equal(t, "Achieng Otieno", results[0].FullName)
	assert.Equal(t, "Wanjiru Kamau", results[1].FullName)
}
