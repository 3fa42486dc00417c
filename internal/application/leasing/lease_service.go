package leasing

import (
	"context"
	"fmt"
	"time"

	"github.com/leaseledger/backend/internal/domain/audit"
	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeaseService handles the lease lifecycle up to termination: drafting,
// activation (which occupies the unit and collects the deposit) and
// amendments. Termination itself belongs to the settlement engine.
type LeaseService struct {
	leaseRepo    leasing.LeaseRepository
	unitRepo     leasing.UnitRepository
	tenantRepo   leasing.TenantRepository
	depositRepo  leasing.SecurityDepositRepository
	scope        TransactionScope
	eventBus     shared.EventBus
	activityRepo audit.ActivityRecordRepository
	logger       *zap.Logger
}

// NewLeaseService creates a new LeaseService
func NewLeaseService(
	leaseRepo leasing.LeaseRepository,
	unitRepo leasing.UnitRepository,
	tenantRepo leasing.TenantRepository,
	depositRepo leasing.SecurityDepositRepository,
	scope TransactionScope,
	eventBus shared.EventBus,
	activityRepo audit.ActivityRecordRepository,
	logger *zap.Logger,
) *LeaseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaseService{
		leaseRepo:    leaseRepo,
		unitRepo:     unitRepo,
		tenantRepo:   tenantRepo,
		depositRepo:  depositRepo,
		scope:        scope,
		eventBus:     eventBus,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// ===================== Queries =====================

// GetLease gets a lease by ID
func (s *LeaseService) GetLease(ctx context.Context, id uuid.UUID) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease not found")
	}
	return ToLeaseResponse(lease), nil
}

// GetLeaseByNumber gets a lease by its lease number
func (s *LeaseService) GetLeaseByNumber(ctx context.Context, number string) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease not found")
	}
	return ToLeaseResponse(lease), nil
}

// ListLeases lists leases with filtering
func (s *LeaseService) ListLeases(ctx context.Context, filter LeaseListFilter) ([]LeaseResponse, int64, error) {
	domainFilter := leasing.LeaseFilter{
		UnitID:   filter.UnitID,
		TenantID: filter.TenantID,
		ActiveOn: filter.ActiveOn,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Status != "" {
		status := leasing.LeaseStatus(filter.Status)
		domainFilter.Status = &status
	}

	leases, err := s.leaseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.leaseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LeaseResponse, len(leases))
	for i := range leases {
		responses[i] = *ToLeaseResponse(&leases[i])
	}
	return responses, total, nil
}

// GetLeaseDeposit gets the security deposit held for a lease
func (s *LeaseService) GetLeaseDeposit(ctx context.Context, leaseID uuid.UUID) (*DepositResponse, error) {
	deposit, err := s.depositRepo.FindByLease(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if deposit == nil {
		return nil, shared.ErrNotFound.WithMessage("No deposit held for this lease")
	}
	return ToDepositResponse(deposit), nil
}

// ===================== Create =====================

// CreateLeaseRequest represents drafting a new lease
type CreateLeaseRequest struct {
	UnitID          uuid.UUID
	TenantID        uuid.UUID
	MonthlyRent     decimal.Decimal
	LateFee         decimal.Decimal
	GracePeriodDays int
	RentDueDay      int
	DepositAmount   decimal.Decimal
	Currency        string
	StartDate       time.Time
	EndDate         time.Time
}

// CreateLease drafts a lease binding a renter to a unit. The draft holds
// the agreed billing terms; nothing takes effect until activation.
func (s *LeaseService) CreateLease(ctx context.Context, req CreateLeaseRequest) (*LeaseResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, req.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unit: %w", err)
	}
	if unit == nil {
		return nil, shared.ErrNotFound.WithMessage("Unit not found")
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, shared.ErrNotFound.WithMessage("Tenant not found")
	}

	occupied, err := s.leaseRepo.ExistsActiveForUnit(ctx, req.UnitID)
	if err != nil {
		return nil, fmt.Errorf("failed to check unit occupancy: %w", err)
	}
	if occupied {
		return nil, shared.ErrConflict.WithMessage("Unit already has an active lease")
	}

	currency := valueobject.Currency(req.Currency)
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	monthlyRent, err := valueobject.NewMoney(req.MonthlyRent, currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	lateFee, err := valueobject.NewMoney(req.LateFee, currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	depositAmount, err := valueobject.NewMoney(req.DepositAmount, currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}

	number, err := s.leaseRepo.GenerateLeaseNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate lease number: %w", err)
	}

	lease, err := leasing.NewLease(
		number,
		req.UnitID,
		req.TenantID,
		monthlyRent,
		lateFee,
		req.GracePeriodDays,
		req.RentDueDay,
		depositAmount,
		req.StartDate,
		req.EndDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		return nil, fmt.Errorf("failed to save lease: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, lease)

	s.logger.Info("Drafted lease",
		zap.String("lease_number", lease.LeaseNumber),
		zap.String("unit_id", lease.UnitID.String()),
		zap.String("tenant_id", lease.TenantID.String()),
	)

	return ToLeaseResponse(lease), nil
}

// ===================== Activate =====================

// ActivateLease brings a draft lease into force: the lease activates, the
// unit flips to occupied, the renter links to the lease and the contracted
// deposit is collected, all in one transaction.
func (s *LeaseService) ActivateLease(ctx context.Context, leaseID, actor uuid.UUID) (*LeaseResponse, error) {
	var lease *leasing.Lease
	var unit *leasing.Unit
	var tenant *leasing.Tenant
	var deposit *leasing.SecurityDeposit

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		lease, err = repos.LeaseRepo().FindByID(ctx, leaseID)
		if err != nil {
			return fmt.Errorf("failed to load lease: %w", err)
		}
		if lease == nil {
			return shared.ErrNotFound.WithMessage("Lease not found")
		}

		unit, err = repos.UnitRepo().FindByID(ctx, lease.UnitID)
		if err != nil {
			return fmt.Errorf("failed to load unit: %w", err)
		}
		if unit == nil {
			return shared.ErrNotFound.WithMessage("Unit not found")
		}

		tenant, err = repos.TenantRepo().FindByID(ctx, lease.TenantID)
		if err != nil {
			return fmt.Errorf("failed to load tenant: %w", err)
		}
		if tenant == nil {
			return shared.ErrNotFound.WithMessage("Tenant not found")
		}

		if err := lease.Activate(); err != nil {
			return err
		}
		if err := unit.Occupy(lease.ID); err != nil {
			return err
		}
		if err := tenant.AttachLease(lease.ID); err != nil {
			return err
		}

		if lease.DepositAmount.IsPositive() {
			deposit, err = leasing.NewSecurityDeposit(lease.ID, lease.TenantID, lease.DepositAmount, time.Now())
			if err != nil {
				return err
			}
			if err := repos.DepositRepo().Save(ctx, deposit); err != nil {
				return fmt.Errorf("failed to save deposit: %w", err)
			}
		}

		if err := repos.LeaseRepo().SaveWithLock(ctx, lease); err != nil {
			return fmt.Errorf("failed to save lease: %w", err)
		}
		if err := repos.UnitRepo().SaveWithLock(ctx, unit); err != nil {
			return fmt.Errorf("failed to save unit: %w", err)
		}
		if err := repos.TenantRepo().SaveWithLock(ctx, tenant); err != nil {
			return fmt.Errorf("failed to save tenant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publishEvents(ctx, s.eventBus, s.logger, lease)
	if deposit != nil {
		publishEvents(ctx, s.eventBus, s.logger, deposit)
	}

	act := actor
	recordActivity(ctx, s.activityRepo, s.logger, &act, audit.ActivityLeaseActivated,
		fmt.Sprintf("Activated lease %s", lease.LeaseNumber),
		audit.ResourceLease, &lease.ID,
		map[string]any{
			"lease_number":   lease.LeaseNumber,
			"unit_id":        lease.UnitID.String(),
			"tenant_id":      lease.TenantID.String(),
			"deposit_amount": lease.DepositAmount.Amount().String(),
		})

	s.logger.Info("Activated lease",
		zap.String("lease_number", lease.LeaseNumber),
		zap.String("unit_id", lease.UnitID.String()),
	)

	return ToLeaseResponse(lease), nil
}

// ===================== Amend =====================

// AmendLeaseRequest represents changing the billing terms of an active lease
type AmendLeaseRequest struct {
	LeaseID         uuid.UUID
	MonthlyRent     decimal.Decimal
	LateFee         decimal.Decimal
	GracePeriodDays int
	RentDueDay      int
	EndDate         time.Time
	Actor           uuid.UUID
}

// AmendLease updates the billing terms of an active lease. Obligations
// already generated keep their original amounts; only future generation
// picks up the new terms.
func (s *LeaseService) AmendLease(ctx context.Context, req AmendLeaseRequest) (*LeaseResponse, error) {
	lease, err := s.leaseRepo.FindByID(ctx, req.LeaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lease: %w", err)
	}
	if lease == nil {
		return nil, shared.ErrNotFound.WithMessage("Lease not found")
	}

	currency := lease.MonthlyRent.Currency()
	monthlyRent, err := valueobject.NewMoney(req.MonthlyRent, currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}
	lateFee, err := valueobject.NewMoney(req.LateFee, currency)
	if err != nil {
		return nil, shared.ErrInvalidAmount.WithMessage(err.Error())
	}

	oldRent := lease.MonthlyRent.Amount()
	if err := lease.Amend(monthlyRent, lateFee, req.GracePeriodDays, req.RentDueDay, req.EndDate); err != nil {
		return nil, err
	}

	if err := s.leaseRepo.SaveWithLock(ctx, lease); err != nil {
		return nil, fmt.Errorf("failed to save lease: %w", err)
	}

	publishEvents(ctx, s.eventBus, s.logger, lease)

	act := req.Actor
	recordActivity(ctx, s.activityRepo, s.logger, &act, audit.ActivityLeaseAmended,
		fmt.Sprintf("Amended lease %s", lease.LeaseNumber),
		audit.ResourceLease, &lease.ID,
		map[string]any{
			"old_rent": oldRent.String(),
			"new_rent": req.MonthlyRent.String(),
		})

	return ToLeaseResponse(lease), nil
}
