package leasing

import (
	"testing"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Test helpers
func createTestLease(t *testing.T) *Lease {
	l, err := NewLease(
		"LSE-2024-0001",
		uuid.New(),
		uuid.New(),
		valueobject.NewMoneyKESFromFloat(15000),
		valueobject.NewMoneyKESFromFloat(500),
		5,
		1,
		valueobject.NewMoneyKESFromFloat(30000),
		date(2024, 1, 1),
		date(2024, 12, 31),
	)
	require.NoError(t, err)
	l.ClearDomainEvents()
	return l
}

func createActiveLease(t *testing.T) *Lease {
	l := createTestLease(t)
	require.NoError(t, l.Activate())
	l.ClearDomainEvents()
	return l
}

// ============================================
// LeaseStatus Tests
// ============================================

func TestLeaseStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  LeaseStatus
		isValid bool
	}{
		{LeaseStatusDraft, true},
		{LeaseStatusActive, true},
		{LeaseStatusTerminated, true},
		{LeaseStatus("invalid"), false},
		{LeaseStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestLeaseStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    LeaseStatus
		to      LeaseStatus
		allowed bool
	}{
		{LeaseStatusDraft, LeaseStatusActive, true},
		{LeaseStatusActive, LeaseStatusTerminated, true},
		{LeaseStatusDraft, LeaseStatusTerminated, false},
		{LeaseStatusActive, LeaseStatusDraft, false},
		{LeaseStatusTerminated, LeaseStatusActive, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

// ============================================
// NewLease Tests
// ============================================

func TestNewLease(t *testing.T) {
	unitID := uuid.New()
	tenantID := uuid.New()
	rent := valueobject.NewMoneyKESFromFloat(15000)
	fee := valueobject.NewMoneyKESFromFloat(500)
	deposit := valueobject.NewMoneyKESFromFloat(30000)

	t.Run("creates draft lease with valid inputs", func(t *testing.T) {
		l, err := NewLease("LSE-2024-0001", unitID, tenantID, rent, fee, 5, 1, deposit, date(2024, 1, 1), date(2024, 12, 31))
		require.NoError(t, err)
		require.NotNil(t, l)

		assert.Equal(t, "LSE-2024-0001", l.LeaseNumber)
		assert.Equal(t, unitID, l.UnitID)
		assert.Equal(t, tenantID, l.TenantID)
		assert.True(t, l.MonthlyRent.Equals(rent))
		assert.True(t, l.LateFee.Equals(fee))
		assert.Equal(t, 5, l.GracePeriodDays)
		assert.Equal(t, 1, l.RentDueDay)
		assert.True(t, l.DepositAmount.Equals(deposit))
		assert.Equal(t, LeaseStatusDraft, l.Status)
		assert.Nil(t, l.MoveOutDate)
		assert.False(t, l.IsActive())
	})

	t.Run("publishes LeaseCreated event", func(t *testing.T) {
		l, err := NewLease("LSE-2024-0002", unitID, tenantID, rent, fee, 5, 1, deposit, date(2024, 1, 1), date(2024, 12, 31))
		require.NoError(t, err)

		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "LeaseCreated", events[0].EventType())
	})

	t.Run("fails with empty number", func(t *testing.T) {
		_, err := NewLease("  ", unitID, tenantID, rent, fee, 5, 1, deposit, date(2024, 1, 1), date(2024, 12, 31))
		assert.Error(t, err)
	})

	t.Run("fails with non-positive rent", func(t *testing.T) {
		_, err := NewLease("LSE-2024-0003", unitID, tenantID, valueobject.ZeroKES(), fee, 5, 1, deposit, date(2024, 1, 1), date(2024, 12, 31))
		assert.Error(t, err)
	})

	t.Run("fails with mixed currencies", func(t *testing.T) {
		usdFee, err := valueobject.NewMoneyFromFloat(5, valueobject.USD)
		require.NoError(t, err)
		_, err = NewLease("LSE-2024-0004", unitID, tenantID, rent, usdFee, 5, 1, deposit, date(2024, 1, 1), date(2024, 12, 31))
		assert.Error(t, err)
	})

	t.Run("fails with out of range due day", func(t *testing.T) {
		_, err := NewLease("LSE-2024-0005", unitID, tenantID, rent, fee, 5, 0, deposit, date(2024, 1, 1), date(2024, 12, 31))
		assert.Error(t, err)

		_, err = NewLease("LSE-2024-0006", unitID, tenantID, rent, fee, 5, 32, deposit, date(2024, 1, 1), date(2024, 12, 31))
		assert.Error(t, err)
	})

	t.Run("fails when end does not follow start", func(t *testing.T) {
		_, err := NewLease("LSE-2024-0007", unitID, tenantID, rent, fee, 5, 1, deposit, date(2024, 12, 31), date(2024, 1, 1))
		assert.Error(t, err)
	})
}

// ============================================
// Activate Tests
// ============================================

func TestLease_Activate(t *testing.T) {
	t.Run("activates a draft lease", func(t *testing.T) {
		l := createTestLease(t)

		err := l.Activate()
		require.NoError(t, err)
		assert.Equal(t, LeaseStatusActive, l.Status)
		assert.True(t, l.IsActive())

		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "LeaseActivated", events[0].EventType())
	})

	t.Run("rejects double activation", func(t *testing.T) {
		l := createActiveLease(t)
		err := l.Activate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot activate")
	})

	t.Run("rejects activating a terminated lease", func(t *testing.T) {
		l := createActiveLease(t)
		require.NoError(t, l.Terminate(date(2024, 6, 30)))

		err := l.Activate()
		assert.Error(t, err)
	})
}

// ============================================
// Amend Tests
// ============================================

func TestLease_Amend(t *testing.T) {
	t.Run("updates billing terms of an active lease", func(t *testing.T) {
		l := createActiveLease(t)

		err := l.Amend(
			valueobject.NewMoneyKESFromFloat(16500),
			valueobject.NewMoneyKESFromFloat(600),
			3,
			5,
			date(2025, 6, 30),
		)
		require.NoError(t, err)

		assert.True(t, l.MonthlyRent.Equals(valueobject.NewMoneyKESFromFloat(16500)))
		assert.True(t, l.LateFee.Equals(valueobject.NewMoneyKESFromFloat(600)))
		assert.Equal(t, 3, l.GracePeriodDays)
		assert.Equal(t, 5, l.RentDueDay)
		assert.Equal(t, date(2025, 6, 30), l.EndDate)

		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*LeaseAmendedEvent)
		require.True(t, ok)
		assert.True(t, event.OldMonthlyRent.Equals(valueobject.NewMoneyKESFromFloat(15000)))
	})

	t.Run("rejects amendment of a draft lease", func(t *testing.T) {
		l := createTestLease(t)

		err := l.Amend(valueobject.NewMoneyKESFromFloat(16500), l.LateFee, 5, 1, l.EndDate)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot amend")
	})

	t.Run("rejects invalid terms", func(t *testing.T) {
		l := createActiveLease(t)
		err := l.Amend(valueobject.ZeroKES(), l.LateFee, 5, 1, l.EndDate)
		assert.Error(t, err)
	})
}

// ============================================
// Terminate Tests
// ============================================

func TestLease_Terminate(t *testing.T) {
	t.Run("terminates an active lease", func(t *testing.T) {
		l := createActiveLease(t)
		moveOut := date(2024, 6, 30)

		err := l.Terminate(moveOut)
		require.NoError(t, err)
		assert.Equal(t, LeaseStatusTerminated, l.Status)
		require.NotNil(t, l.MoveOutDate)
		assert.Equal(t, moveOut, *l.MoveOutDate)

		events := l.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "LeaseTerminated", events[0].EventType())
	})

	t.Run("rejects terminating a draft lease", func(t *testing.T) {
		l := createTestLease(t)
		err := l.Terminate(date(2024, 6, 30))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Cannot terminate")
	})

	t.Run("rejects double termination", func(t *testing.T) {
		l := createActiveLease(t)
		require.NoError(t, l.Terminate(date(2024, 6, 30)))

		err := l.Terminate(date(2024, 7, 1))
		assert.Error(t, err)
	})
}

// ============================================
// CoversPeriod Tests
// ============================================

func TestLease_CoversPeriod(t *testing.T) {
	l := createTestLease(t) // term 2024-01-01 .. 2024-12-31

	tests := []struct {
		name    string
		year    int
		month   time.Month
		covered bool
	}{
		{"first month of term", 2024, time.January, true},
		{"mid term", 2024, time.June, true},
		{"last month of term", 2024, time.December, true},
		{"month before term", 2023, time.December, false},
		{"month after term", 2025, time.January, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.covered, l.CoversPeriod(tt.year, tt.month))
		})
	}

	t.Run("partial month at term edge counts", func(t *testing.T) {
		l, err := NewLease("LSE-2024-0100", uuid.New(), uuid.New(),
			valueobject.NewMoneyKESFromFloat(15000), valueobject.ZeroKES(),
			5, 1, valueobject.NewMoneyKESFromFloat(30000),
			date(2024, 3, 15), date(2024, 8, 10))
		require.NoError(t, err)

		assert.True(t, l.CoversPeriod(2024, time.March))
		assert.True(t, l.CoversPeriod(2024, time.August))
		assert.False(t, l.CoversPeriod(2024, time.February))
		assert.False(t, l.CoversPeriod(2024, time.September))
	})
}
