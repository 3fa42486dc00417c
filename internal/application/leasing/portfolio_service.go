package leasing

import (
	"context"
	"fmt"
	"strings"

	"github.com/leaseledger/backend/internal/domain/leasing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PortfolioService manages the renters and units the engine bills against.
// Screening and onboarding workflows live outside this system; these are
// the minimal records the payment lifecycle consults.
type PortfolioService struct {
	tenantRepo leasing.TenantRepository
	unitRepo   leasing.UnitRepository
	logger     *zap.Logger
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	logger *zap.Logger,
) *PortfolioService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PortfolioService{
		tenantRepo: tenantRepo,
		unitRepo:   unitRepo,
		logger:     logger,
	}
}

// ===================== Tenants =====================

// RegisterTenantRequest represents registering a renter
type RegisterTenantRequest struct {
	FullName string
	Phone    string
	Email    string
}

// RegisterTenant registers a renter. The phone number is the natural key;
// a second registration with the same phone is rejected.
func (s *PortfolioService) RegisterTenant(ctx context.Context, req RegisterTenantRequest) (*TenantResponse, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone != "" {
		existing, err := s.tenantRepo.FindByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone number: %w", err)
		}
		if existing != nil {
			return nil, shared.ErrConflict.WithMessage("A tenant with this phone number already exists")
		}
	}

	tenant, err := leasing.NewTenant(req.FullName, req.Phone, req.Email)
	if err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}

	s.logger.Info("Registered tenant",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("phone", tenant.Phone),
	)

	return ToTenantResponse(tenant), nil
}

// GetTenant gets a renter by ID
func (s *PortfolioService) GetTenant(ctx context.Context, id uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, shared.ErrNotFound.WithMessage("Tenant not found")
	}
	return ToTenantResponse(tenant), nil
}

// ListTenants lists renters with filtering
func (s *PortfolioService) ListTenants(ctx context.Context, filter TenantListFilter) ([]TenantResponse, int64, error) {
	domainFilter := leasing.TenantFilter{
		DebtFlagged: filter.DebtFlagged,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Blacklist != "" {
		status := leasing.BlacklistStatus(filter.Blacklist)
		domainFilter.Blacklist = &status
	}

	tenants, err := s.tenantRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.tenantRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TenantResponse, len(tenants))
	for i := range tenants {
		responses[i] = *ToTenantResponse(&tenants[i])
	}
	return responses, total, nil
}

// SetBlacklistRequest represents changing a renter's standing
type SetBlacklistRequest struct {
	TenantID uuid.UUID
	Status   string
	Actor    uuid.UUID
}

// SetTenantBlacklist changes a renter's standing. A severe standing blocks
// payment verification until it is lifted.
func (s *PortfolioService) SetTenantBlacklist(ctx context.Context, req SetBlacklistRequest) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, shared.ErrNotFound.WithMessage("Tenant not found")
	}

	if err := tenant.SetBlacklist(leasing.BlacklistStatus(req.Status)); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.SaveWithLock(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to save tenant: %w", err)
	}

	s.logger.Info("Changed tenant standing",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("blacklist", string(tenant.Blacklist)),
		zap.String("actor", req.Actor.String()),
	)

	return ToTenantResponse(tenant), nil
}

// ===================== Units =====================

// RegisterUnitRequest represents registering a leasable unit
type RegisterUnitRequest struct {
	Code         string
	PropertyName string
	Address      *AddressPayload
}

// RegisterUnit registers a leasable unit under its unique code.
func (s *PortfolioService) RegisterUnit(ctx context.Context, req RegisterUnitRequest) (*UnitResponse, error) {
	code := strings.TrimSpace(req.Code)
	if code != "" {
		existing, err := s.unitRepo.FindByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("failed to check unit code: %w", err)
		}
		if existing != nil {
			return nil, shared.ErrConflict.WithMessage("A unit with this code already exists")
		}
	}

	var opts []leasing.UnitOption
	if req.Address != nil {
		addr, err := req.Address.ToValueObject()
		if err != nil {
			return nil, shared.ErrInvalidInput.WithMessage(err.Error())
		}
		opts = append(opts, leasing.WithAddress(addr))
	}

	unit, err := leasing.NewUnit(req.Code, req.PropertyName, opts...)
	if err != nil {
		return nil, err
	}

	if err := s.unitRepo.Save(ctx, unit); err != nil {
		return nil, fmt.Errorf("failed to save unit: %w", err)
	}

	s.logger.Info("Registered unit",
		zap.String("unit_id", unit.ID.String()),
		zap.String("code", unit.Code),
	)

	return ToUnitResponse(unit), nil
}

// GetUnit gets a unit by ID
func (s *PortfolioService) GetUnit(ctx context.Context, id uuid.UUID) (*UnitResponse, error) {
	unit, err := s.unitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if unit == nil {
		return nil, shared.ErrNotFound.WithMessage("Unit not found")
	}
	return ToUnitResponse(unit), nil
}

// ListUnits lists units with filtering
func (s *PortfolioService) ListUnits(ctx context.Context, filter UnitListFilter) ([]UnitResponse, int64, error) {
	domainFilter := leasing.UnitFilter{}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search

	if filter.Occupancy != "" {
		occupancy := leasing.OccupancyStatus(filter.Occupancy)
		domainFilter.Occupancy = &occupancy
	}
	if filter.PropertyName != "" {
		name := filter.PropertyName
		domainFilter.PropertyName = &name
	}

	units, err := s.unitRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.unitRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UnitResponse, len(units))
	for i := range units {
		responses[i] = *ToUnitResponse(&units[i])
	}
	return responses, total, nil
}
