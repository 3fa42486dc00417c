package leasing

import (
	"testing"

	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestTenant(t *testing.T) *Tenant {
	renter, err := NewTenant("Achieng Otieno", "+254712345678", "achieng@example.com")
	require.NoError(t, err)
	return renter
}

func TestNewTenant(t *testing.T) {
	t.Run("registers renter in good standing", func(t *testing.T) {
		renter := createTestTenant(t)

		assert.Equal(t, "Achieng Otieno", renter.FullName)
		assert.Equal(t, BlacklistNone, renter.Blacklist)
		assert.False(t, renter.DebtFlagged)
		assert.Nil(t, renter.ActiveLeaseID)
		assert.False(t, renter.IsSeverelyBlacklisted())
	})

	t.Run("fails with blank name", func(t *testing.T) {
		_, err := NewTenant(" ", "+254712345678", "")
		assert.Error(t, err)
	})

	t.Run("fails with blank phone", func(t *testing.T) {
		_, err := NewTenant("Achieng Otieno", "", "")
		assert.Error(t, err)
	})
}

func TestTenant_Blacklist(t *testing.T) {
	renter := createTestTenant(t)

	require.NoError(t, renter.SetBlacklist(BlacklistWatch))
	assert.False(t, renter.IsSeverelyBlacklisted())

	require.NoError(t, renter.SetBlacklist(BlacklistSevere))
	assert.True(t, renter.IsSeverelyBlacklisted())

	assert.Error(t, renter.SetBlacklist(BlacklistStatus("banned")))
}

func TestTenant_FlagDebt(t *testing.T) {
	renter := createTestTenant(t)

	renter.FlagDebt(valueobject.NewMoneyKESFromFloat(8000))

	assert.True(t, renter.DebtFlagged)
	events := renter.GetDomainEvents()
	require.Len(t, events, 1)
	event, ok := events[0].(*TenantDebtRecordedEvent)
	require.True(t, ok)
	assert.True(t, event.DebtAmount.Equals(valueobject.NewMoneyKESFromFloat(8000)))
}

func TestTenant_AttachDetachLease(t *testing.T) {
	renter := createTestTenant(t)
	leaseID := uuid.New()

	t.Run("attaches a lease", func(t *testing.T) {
		require.NoError(t, renter.AttachLease(leaseID))
		require.NotNil(t, renter.ActiveLeaseID)
		assert.Equal(t, leaseID, *renter.ActiveLeaseID)
	})

	t.Run("re-attaching the same lease is a no-op", func(t *testing.T) {
		assert.NoError(t, renter.AttachLease(leaseID))
	})

	t.Run("rejects a second lease", func(t *testing.T) {
		err := renter.AttachLease(uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already has an active lease")
	})

	t.Run("detaches at offboarding", func(t *testing.T) {
		renter.DetachLease()
		assert.Nil(t, renter.ActiveLeaseID)
	})
}
