package leasing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockSettlementRepository is a mock implementation of SettlementRepository
type MockSettlementRepository struct {
	mock.Mock
}

func (m *MockSettlementRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Settlement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindByLease(ctx context.Context, leaseID uuid.UUID) (*leasing.Settlement, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) FindAll(ctx context.Context, filter leasing.SettlementFilter) ([]leasing.Settlement, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Settlement), args.Error(1)
}

func (m *MockSettlementRepository) Save(ctx context.Context, settlement *leasing.Settlement) error {
	args := m.Called(ctx, settlement)
	return args.Error(0)
}

func (m *MockSettlementRepository) Count(ctx context.Context, filter leasing.SettlementFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockRentObligationRepository is a mock implementation of RentObligationRepository
type MockRentObligationRepository struct {
	mock.Mock
}

func (m *MockRentObligationRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.RentObligation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindByNumber(ctx context.Context, number string) (*billing.RentObligation, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindByLeaseAndPeriod(ctx context.Context, leaseID uuid.UUID, year, month int) (*billing.RentObligation, error) {
	args := m.Called(ctx, leaseID, year, month)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindOpenByLease(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindOpenByLeaseForUpdate(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindUnpaidByLease(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindUnpaidByLeaseForUpdate(ctx context.Context, leaseID uuid.UUID) ([]billing.RentObligation, error) {
	args := m.Called(ctx, leaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindPendingDueOnOrBefore(ctx context.Context, cutoff time.Time) ([]billing.RentObligation, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) FindAll(ctx context.Context, filter billing.RentObligationFilter) ([]billing.RentObligation, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.RentObligation), args.Error(1)
}

func (m *MockRentObligationRepository) ExistsForPeriod(ctx context.Context, leaseID uuid.UUID, year, month int) (bool, error) {
	args := m.Called(ctx, leaseID, year, month)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentObligationRepository) Save(ctx context.Context, obligation *billing.RentObligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *MockRentObligationRepository) SaveWithLock(ctx context.Context, obligation *billing.RentObligation) error {
	args := m.Called(ctx, obligation)
	return args.Error(0)
}

func (m *MockRentObligationRepository) Count(ctx context.Context, filter billing.RentObligationFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRentObligationRepository) CountByStatus(ctx context.Context, status billing.ObligationStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRentObligationRepository) SumOutstandingByLease(ctx context.Context, leaseID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, leaseID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRentObligationRepository) SumOutstanding(ctx context.Context) (decimal.Decimal, error) {
	args := m.Called(ctx)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockRentObligationRepository) FindUpdates(ctx context.Context, obligationID uuid.UUID) ([]billing.ObligationUpdate, error) {
	args := m.Called(ctx, obligationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.ObligationUpdate), args.Error(1)
}

func (m *MockRentObligationRepository) GenerateObligationNumber(ctx context.Context, year, month int) (string, error) {
	args := m.Called(ctx, year, month)
	return args.String(0), args.Error(1)
}

// settlementFixture wires a SettlementService against fresh mocks
type settlementFixture struct {
	leaseRepo      *MockLeaseRepository
	settlementRepo *MockSettlementRepository
	depositRepo    *MockSecurityDepositRepository
	obligationRepo *MockRentObligationRepository
	tenantRepo     *MockTenantRepository
	unitRepo       *MockUnitRepository
	service        *SettlementService
}

func newSettlementFixture() *settlementFixture {
	f := &settlementFixture{
		leaseRepo:      new(MockLeaseRepository),
		settlementRepo: new(MockSettlementRepository),
		depositRepo:    new(MockSecurityDepositRepository),
		obligationRepo: new(MockRentObligationRepository),
		tenantRepo:     new(MockTenantRepository),
		unitRepo:       new(MockUnitRepository),
	}
	scope := NewNoOpTransactionScope(f.leaseRepo, f.depositRepo, f.settlementRepo, f.tenantRepo, f.unitRepo, f.obligationRepo)
	f.service = NewSettlementService(f.leaseRepo, f.settlementRepo, f.depositRepo, f.obligationRepo, scope, nil, nil, zap.NewNop())
	return f
}

// occupiedTenancy returns an active lease with its occupied unit, attached
// renter and held deposit, ready for settlement.
func occupiedTenancy(depositAmount int64) (*leasing.Lease, *leasing.Unit, *leasing.Tenant, *leasing.SecurityDeposit) {
	unit := createVacantUnit()
	tenant := createTestTenant()
	lease := createActiveLease(unit.ID, tenant.ID)
	_ = unit.Occupy(lease.ID)
	_ = tenant.AttachLease(lease.ID)
	deposit, _ := leasing.NewSecurityDeposit(lease.ID, tenant.ID, moneyKES(depositAmount), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	deposit.ClearDomainEvents()
	return lease, unit, tenant, deposit
}

func createOpenObligation(leaseID, tenantID uuid.UUID, number string, due int64) *billing.RentObligation {
	obligation, _ := billing.NewRentObligation(
		number,
		leaseID,
		tenantID,
		2024, 3,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		moneyKES(due),
	)
	obligation.ClearDomainEvents()
	return obligation
}

// Tests for SettleLease

func TestSettlementService_SettleLease_DeductsUnpaidRent(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, unit, tenant, deposit := occupiedTenancy(30000)
	moveOut := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	actor := uuid.New()

	// Obligation of 25000 with 20000 already paid leaves 5000 unpaid rent
	obligation := createOpenObligation(lease.ID, tenant.ID, "RO-2024-03-0001", 25000)
	_ = obligation.ApplyPayment(moneyKES(20000), "M-Pesa", "QFC8XK2PLM",
		time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), actor, "Verified payment submission")
	obligation.ClearDomainEvents()

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)
	f.tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	f.obligationRepo.On("FindUnpaidByLeaseForUpdate", mock.Anything, lease.ID).Return([]billing.RentObligation{*obligation}, nil)
	f.obligationRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(o *billing.RentObligation) bool {
		return o.Status == billing.ObligationStatusPaid &&
			o.AmountPaid.Amount().Equal(decimal.NewFromInt(25000)) &&
			o.PaymentMethod == billing.PaymentMethodDepositDeduction
	})).Return(nil)
	f.leaseRepo.On("SaveWithLock", mock.Anything, lease).Return(nil)
	f.tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	f.unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)
	f.depositRepo.On("SaveWithLock", mock.Anything, deposit).Return(nil)
	f.settlementRepo.On("Save", mock.Anything, mock.MatchedBy(func(st *leasing.Settlement) bool {
		return st.LeaseID == lease.ID && st.UnpaidRentHandling == leasing.UnpaidRentDeduct
	})).Return(nil)

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:            lease.ID,
		MoveOutDate:        moveOut,
		UnpaidRentHandling: "deduct",
		Actor:              actor,
	})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, decimal.NewFromInt(5000).String(), result.TotalUnpaidRent.String())
	assert.Equal(t, decimal.NewFromInt(5000).String(), result.TotalDeductions.String())
	assert.Equal(t, decimal.NewFromInt(25000).String(), result.RefundAmount.String())
	assert.Equal(t, "partially_returned", result.DepositStatus)
	assert.Equal(t, 1, result.SettledObligations)
	assert.Equal(t, 0, result.WrittenOffObligations)
	assert.Len(t, result.DeductionItems, 1)
	assert.Equal(t, leasing.DeductionUnpaidRentSettlement, result.DeductionItems[0].Description)

	assert.Equal(t, leasing.LeaseStatusTerminated, lease.Status)
	assert.NotNil(t, lease.MoveOutDate)
	assert.True(t, moveOut.Equal(*lease.MoveOutDate))
	assert.Equal(t, leasing.DepositStatusPartiallyReturned, deposit.Status)
	assert.Equal(t, decimal.NewFromInt(25000).String(), deposit.AmountReturned.Amount().String())
	assert.Equal(t, decimal.NewFromInt(5000).String(), deposit.Deductions.Amount().String())
	assert.Nil(t, tenant.ActiveLeaseID)
	assert.Equal(t, leasing.OccupancyVacant, unit.Occupancy)
	f.obligationRepo.AssertExpectations(t)
	f.settlementRepo.AssertExpectations(t)
	f.depositRepo.AssertExpectations(t)
}

func TestSettlementService_SettleLease_RejectsWhenDeductionsExceedDeposit(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, unit, tenant, deposit := occupiedTenancy(30000)

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)
	f.tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	f.obligationRepo.On("FindUnpaidByLeaseForUpdate", mock.Anything, lease.ID).Return([]billing.RentObligation{}, nil)

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:     lease.ID,
		MoveOutDate: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		Deductions: []DeductionLinePayload{
			{Description: "Structural repairs", Amount: decimal.NewFromInt(20000)},
			{Description: "Full repaint", Amount: decimal.NewFromInt(15000)},
		},
		UnpaidRentHandling: "deduct",
		Actor:              uuid.New(),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "exceed the")

	// Nothing may have mutated
	assert.Equal(t, leasing.LeaseStatusActive, lease.Status)
	assert.Nil(t, lease.MoveOutDate)
	assert.Equal(t, leasing.DepositStatusHeld, deposit.Status)
	assert.NotNil(t, tenant.ActiveLeaseID)
	assert.Equal(t, leasing.OccupancyOccupied, unit.Occupancy)
	f.leaseRepo.AssertNotCalled(t, "SaveWithLock")
	f.depositRepo.AssertNotCalled(t, "SaveWithLock")
	f.obligationRepo.AssertNotCalled(t, "SaveWithLock")
	f.settlementRepo.AssertNotCalled(t, "Save")
}

func TestSettlementService_SettleLease_SyntheticLineCountsAgainstDeposit(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, unit, tenant, deposit := occupiedTenancy(30000)
	obligation := createOpenObligation(lease.ID, tenant.ID, "RO-2024-03-0001", 5000)

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)
	f.tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	f.obligationRepo.On("FindUnpaidByLeaseForUpdate", mock.Anything, lease.ID).Return([]billing.RentObligation{*obligation}, nil)

	// 28000 requested + 5000 synthetic unpaid rent = 33000 > 30000 held
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:     lease.ID,
		MoveOutDate: time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		Deductions: []DeductionLinePayload{
			{Description: "Structural repairs", Amount: decimal.NewFromInt(28000)},
		},
		UnpaidRentHandling: "deduct",
		Actor:              uuid.New(),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "exceed the")
	assert.Equal(t, leasing.LeaseStatusActive, lease.Status)
	f.obligationRepo.AssertNotCalled(t, "SaveWithLock")
	f.settlementRepo.AssertNotCalled(t, "Save")
}

func TestSettlementService_SettleLease_WritesOffUnpaidRent(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, unit, tenant, deposit := occupiedTenancy(30000)
	moveOut := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	obligation := createOpenObligation(lease.ID, tenant.ID, "RO-2024-03-0001", 25000)

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)
	f.tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	f.obligationRepo.On("FindUnpaidByLeaseForUpdate", mock.Anything, lease.ID).Return([]billing.RentObligation{*obligation}, nil)
	f.obligationRepo.On("SaveWithLock", mock.Anything, mock.MatchedBy(func(o *billing.RentObligation) bool {
		return o.Status == billing.ObligationStatusWrittenOff && o.AmountPaid.IsZero()
	})).Return(nil)
	f.leaseRepo.On("SaveWithLock", mock.Anything, lease).Return(nil)
	f.tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	f.unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)
	f.depositRepo.On("SaveWithLock", mock.Anything, deposit).Return(nil)
	f.settlementRepo.On("Save", mock.Anything, mock.MatchedBy(func(st *leasing.Settlement) bool {
		return st.UnpaidRentHandling == leasing.UnpaidRentWriteOff && st.WrittenOffObligations == 1
	})).Return(nil)

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:            lease.ID,
		MoveOutDate:        moveOut,
		UnpaidRentHandling: "writeoff",
		Actor:              uuid.New(),
	})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, decimal.NewFromInt(25000).String(), result.TotalUnpaidRent.String())
	assert.Equal(t, decimal.Zero.String(), result.TotalDeductions.String())
	assert.Equal(t, decimal.NewFromInt(30000).String(), result.RefundAmount.String())
	assert.Equal(t, "fully_returned", result.DepositStatus)
	assert.Equal(t, 0, result.SettledObligations)
	assert.Equal(t, 1, result.WrittenOffObligations)
	assert.Empty(t, result.DeductionItems)

	// Written-off rent flags the renter as carrying debt
	assert.True(t, tenant.DebtFlagged)
	assert.Equal(t, leasing.LeaseStatusTerminated, lease.Status)
	assert.Equal(t, leasing.DepositStatusFullyReturned, deposit.Status)
	f.obligationRepo.AssertExpectations(t)
	f.settlementRepo.AssertExpectations(t)
}

func TestSettlementService_SettleLease_NoUnpaidRent(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, unit, tenant, deposit := occupiedTenancy(30000)

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)
	f.tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	f.obligationRepo.On("FindUnpaidByLeaseForUpdate", mock.Anything, lease.ID).Return([]billing.RentObligation{}, nil)
	f.leaseRepo.On("SaveWithLock", mock.Anything, lease).Return(nil)
	f.tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	f.unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)
	f.depositRepo.On("SaveWithLock", mock.Anything, deposit).Return(nil)
	f.settlementRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Settlement")).Return(nil)

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:            lease.ID,
		MoveOutDate:        time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		UnpaidRentHandling: "deduct",
		Actor:              uuid.New(),
	})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, decimal.Zero.String(), result.TotalUnpaidRent.String())
	assert.Equal(t, decimal.NewFromInt(30000).String(), result.RefundAmount.String())
	assert.Equal(t, "fully_returned", result.DepositStatus)
	assert.Equal(t, 0, result.SettledObligations)
	assert.Empty(t, result.DeductionItems)
	assert.Equal(t, leasing.LeaseStatusTerminated, lease.Status)
	f.obligationRepo.AssertNotCalled(t, "SaveWithLock")
}

func TestSettlementService_SettleLease_InactiveLease(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease := createDraftLease(uuid.New(), uuid.New())

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:            lease.ID,
		MoveOutDate:        time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		UnpaidRentHandling: "deduct",
		Actor:              uuid.New(),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "Cannot settle a draft lease")
	f.depositRepo.AssertNotCalled(t, "FindByLease")
}

func TestSettlementService_SettleLease_MissingDeposit(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease := createActiveLease(uuid.New(), uuid.New())

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(nil, nil)

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:            lease.ID,
		MoveOutDate:        time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		UnpaidRentHandling: "writeoff",
		Actor:              uuid.New(),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "No deposit held for this lease")
	f.tenantRepo.AssertNotCalled(t, "FindByID")
}

func TestSettlementService_SettleLease_ValidatesInput(t *testing.T) {
	moveOut := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)

	t.Run("fail on unknown handling", func(t *testing.T) {
		f := newSettlementFixture()

		result, err := f.service.SettleLease(context.Background(), SettleLeaseRequest{
			LeaseID:            uuid.New(),
			MoveOutDate:        moveOut,
			UnpaidRentHandling: "split",
			Actor:              uuid.New(),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Unpaid rent handling must be deduct or writeoff")
		f.leaseRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("fail on missing move-out date", func(t *testing.T) {
		f := newSettlementFixture()

		result, err := f.service.SettleLease(context.Background(), SettleLeaseRequest{
			LeaseID:            uuid.New(),
			UnpaidRentHandling: "deduct",
			Actor:              uuid.New(),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Move-out date is required")
		f.leaseRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("fail on deduction line without description", func(t *testing.T) {
		f := newSettlementFixture()

		result, err := f.service.SettleLease(context.Background(), SettleLeaseRequest{
			LeaseID:     uuid.New(),
			MoveOutDate: moveOut,
			Deductions: []DeductionLinePayload{
				{Description: "  ", Amount: decimal.NewFromInt(5000)},
			},
			UnpaidRentHandling: "deduct",
			Actor:              uuid.New(),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Deduction line description cannot be empty")
		f.leaseRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("fail on non-positive deduction amount", func(t *testing.T) {
		f := newSettlementFixture()

		result, err := f.service.SettleLease(context.Background(), SettleLeaseRequest{
			LeaseID:     uuid.New(),
			MoveOutDate: moveOut,
			Deductions: []DeductionLinePayload{
				{Description: "Broken window", Amount: decimal.Zero},
			},
			UnpaidRentHandling: "deduct",
			Actor:              uuid.New(),
		})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Deduction line amount must be positive")
		f.leaseRepo.AssertNotCalled(t, "FindByID")
	})
}

func TestSettlementService_SettleLease_SaveFailurePropagates(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, unit, tenant, deposit := occupiedTenancy(30000)

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)
	f.tenantRepo.On("FindByID", mock.Anything, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", mock.Anything, unit.ID).Return(unit, nil)
	f.obligationRepo.On("FindUnpaidByLeaseForUpdate", mock.Anything, lease.ID).Return([]billing.RentObligation{}, nil)
	f.leaseRepo.On("SaveWithLock", mock.Anything, lease).Return(nil)
	f.tenantRepo.On("SaveWithLock", mock.Anything, tenant).Return(nil)
	f.unitRepo.On("SaveWithLock", mock.Anything, unit).Return(nil)
	f.depositRepo.On("SaveWithLock", mock.Anything, deposit).Return(nil)
	f.settlementRepo.On("Save", mock.Anything, mock.AnythingOfType("*leasing.Settlement")).Return(errors.New("connection reset"))

	// Execute
	result, err := f.service.SettleLease(ctx, SettleLeaseRequest{
		LeaseID:            lease.ID,
		MoveOutDate:        time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
		UnpaidRentHandling: "deduct",
		Actor:              uuid.New(),
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to save settlement")
}

// Tests for PreviewSettlement

func TestSettlementService_PreviewSettlement_Success(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	lease, _, tenant, deposit := occupiedTenancy(50000)

	// 5000 outstanding on a partial plus 25000 on an untouched pending
	partial := createOpenObligation(lease.ID, tenant.ID, "RO-2024-02-0001", 25000)
	_ = partial.ApplyPayment(moneyKES(20000), "M-Pesa", "QFC8XK2PLM",
		time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), uuid.New(), "Verified payment submission")
	partial.ClearDomainEvents()
	pending := createOpenObligation(lease.ID, tenant.ID, "RO-2024-03-0001", 25000)

	// Mock expectations
	f.leaseRepo.On("FindByID", mock.Anything, lease.ID).Return(lease, nil)
	f.obligationRepo.On("FindUnpaidByLease", mock.Anything, lease.ID).Return([]billing.RentObligation{*partial, *pending}, nil)
	f.depositRepo.On("FindByLease", mock.Anything, lease.ID).Return(deposit, nil)

	// Execute
	result, err := f.service.PreviewSettlement(ctx, lease.ID)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, lease.ID, result.LeaseID)
	assert.Equal(t, "LSE-2024-0001", result.LeaseNumber)
	assert.Equal(t, "KES", result.Currency)
	assert.Equal(t, decimal.NewFromInt(50000).String(), result.DepositHeld.String())
	assert.Equal(t, decimal.NewFromInt(30000).String(), result.TotalUnpaidRent.String())
	assert.Len(t, result.Obligations, 2)
	assert.Equal(t, decimal.NewFromInt(5000).String(), result.Obligations[0].RentBalance.String())
	assert.Equal(t, decimal.NewFromInt(25000).String(), result.Obligations[1].RentBalance.String())

	// Preview never mutates
	assert.Equal(t, leasing.LeaseStatusActive, lease.Status)
	f.leaseRepo.AssertNotCalled(t, "SaveWithLock")
	f.obligationRepo.AssertNotCalled(t, "SaveWithLock")
}

func TestSettlementService_PreviewSettlement_LeaseNotFound(t *testing.T) {
	f := newSettlementFixture()
	ctx := context.Background()

	id := uuid.New()
	f.leaseRepo.On("FindByID", mock.Anything, id).Return(nil, nil)

	result, err := f.service.PreviewSettlement(ctx, id)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "Lease not found")
}

// Tests for settlement queries

func TestSettlementService_GetSettlementByLease(t *testing.T) {
	recordedSettlement := func(leaseID uuid.UUID) *leasing.Settlement {
		settlement, _ := leasing.NewSettlement(
			leaseID,
			uuid.New(),
			uuid.New(),
			time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
			leasing.UnpaidRentDeduct,
			moneyKES(5000),
			leasing.DeductionItems{
				{Description: leasing.DeductionUnpaidRentSettlement, Amount: decimal.NewFromInt(5000)},
			},
			moneyKES(5000),
			moneyKES(30000),
			moneyKES(25000),
			leasing.DepositStatusPartiallyReturned,
			1, 0,
			uuid.New(),
			"",
		)
		settlement.ClearDomainEvents()
		return settlement
	}

	t.Run("get settlement successfully", func(t *testing.T) {
		f := newSettlementFixture()
		ctx := context.Background()

		leaseID := uuid.New()
		settlement := recordedSettlement(leaseID)
		f.settlementRepo.On("FindByLease", ctx, leaseID).Return(settlement, nil)

		result, err := f.service.GetSettlementByLease(ctx, leaseID)

		assert.NoError(t, err)
		assert.NotNil(t, result)
		assert.Equal(t, "deduct", result.UnpaidRentHandling)
		assert.Equal(t, decimal.NewFromInt(25000).String(), result.RefundAmount.String())
		assert.Equal(t, "partially_returned", result.DepositStatus)
	})

	t.Run("fail when lease has not been settled", func(t *testing.T) {
		f := newSettlementFixture()
		ctx := context.Background()

		leaseID := uuid.New()
		f.settlementRepo.On("FindByLease", ctx, leaseID).Return(nil, nil)

		result, err := f.service.GetSettlementByLease(ctx, leaseID)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "Lease has not been settled")
	})
}
