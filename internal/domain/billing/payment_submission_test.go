package billing

import (
	"testing"
	"time"

	"github.com/leaseledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func createTestSubmission(t *testing.T) *PaymentSubmission {
	s, err := NewPaymentSubmission(
		uuid.New(),
		uuid.New(),
		valueobject.NewMoneyKESFromFloat(15000),
		"mpesa",
		"QDX7K1M2PA",
		date(2024, 3, 2),
	)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

// ============================================
// SubmissionStatus Tests
// ============================================

func TestSubmissionStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  SubmissionStatus
		isValid bool
	}{
		{SubmissionStatusPending, true},
		{SubmissionStatusVerified, true},
		{SubmissionStatusRejected, true},
		{SubmissionStatus("invalid"), false},
		{SubmissionStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestSubmissionStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status     SubmissionStatus
		isTerminal bool
	}{
		{SubmissionStatusPending, false},
		{SubmissionStatusVerified, true},
		{SubmissionStatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isTerminal, tt.status.IsTerminal())
		})
	}
}

// ============================================
// NewPaymentSubmission Tests
// ============================================

func TestNewPaymentSubmission(t *testing.T) {
	leaseID := uuid.New()
	tenantID := uuid.New()
	amount := valueobject.NewMoneyKESFromFloat(15000)

	t.Run("creates submission with valid inputs", func(t *testing.T) {
		s, err := NewPaymentSubmission(leaseID, tenantID, amount, "mpesa", "QDX7K1M2PA", date(2024, 3, 2))
		require.NoError(t, err)
		require.NotNil(t, s)

		assert.Equal(t, leaseID, s.LeaseID)
		assert.Equal(t, tenantID, s.TenantID)
		assert.True(t, s.Amount.Equals(amount))
		assert.True(t, s.VerifiedAmount.IsZero())
		assert.Equal(t, "mpesa", s.PaymentMethod)
		assert.Equal(t, "QDX7K1M2PA", s.TransactionReference)
		assert.Equal(t, SubmissionStatusPending, s.Status)
		assert.Nil(t, s.VerifiedBy)
		assert.Nil(t, s.VerifiedAt)
		assert.Nil(t, s.AppliedObligationID)
		assert.Equal(t, 1, s.GetVersion())
	})

	t.Run("trims method and reference", func(t *testing.T) {
		s, err := NewPaymentSubmission(leaseID, tenantID, amount, " bank_transfer ", " REF-22 ", date(2024, 3, 2))
		require.NoError(t, err)
		assert.Equal(t, "bank_transfer", s.PaymentMethod)
		assert.Equal(t, "REF-22", s.TransactionReference)
	})

	t.Run("publishes PaymentSubmitted event", func(t *testing.T) {
		s, err := NewPaymentSubmission(leaseID, tenantID, amount, "mpesa", "QDX7K1M2PB", date(2024, 3, 2))
		require.NoError(t, err)

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, "PaymentSubmitted", events[0].EventType())

		event, ok := events[0].(*PaymentSubmittedEvent)
		require.True(t, ok)
		assert.Equal(t, s.ID, event.SubmissionID)
		assert.Equal(t, "QDX7K1M2PB", event.TransactionReference)
	})

	t.Run("fails with nil lease", func(t *testing.T) {
		_, err := NewPaymentSubmission(uuid.Nil, tenantID, amount, "mpesa", "REF", date(2024, 3, 2))
		assert.Error(t, err)
	})

	t.Run("fails with non-positive amount", func(t *testing.T) {
		_, err := NewPaymentSubmission(leaseID, tenantID, valueobject.ZeroKES(), "mpesa", "REF", date(2024, 3, 2))
		assert.Error(t, err)
	})

	t.Run("fails with blank reference", func(t *testing.T) {
		_, err := NewPaymentSubmission(leaseID, tenantID, amount, "mpesa", "   ", date(2024, 3, 2))
		assert.Error(t, err)
	})

	t.Run("fails with blank method", func(t *testing.T) {
		_, err := NewPaymentSubmission(leaseID, tenantID, amount, "", "REF", date(2024, 3, 2))
		assert.Error(t, err)
	})

	t.Run("fails with zero transaction date", func(t *testing.T) {
		_, err := NewPaymentSubmission(leaseID, tenantID, amount, "mpesa", "REF", time.Time{})
		assert.Error(t, err)
	})
}

// ============================================
// Verify Tests
// ============================================

func TestPaymentSubmission_Verify(t *testing.T) {
	verifier := uuid.New()
	obligationID := uuid.New()

	t.Run("verifies a pending submission in full", func(t *testing.T) {
		s := createTestSubmission(t)

		err := s.Verify(verifier, s.Amount, "matched bank statement", obligationID)
		require.NoError(t, err)

		assert.Equal(t, SubmissionStatusVerified, s.Status)
		assert.True(t, s.VerifiedAmount.Equals(s.Amount))
		require.NotNil(t, s.VerifiedBy)
		assert.Equal(t, verifier, *s.VerifiedBy)
		assert.NotNil(t, s.VerifiedAt)
		assert.Equal(t, "matched bank statement", s.AdminNotes)
		require.NotNil(t, s.AppliedObligationID)
		assert.Equal(t, obligationID, *s.AppliedObligationID)
		assert.Equal(t, 2, s.GetVersion())
	})

	t.Run("verifies less than the submitted amount", func(t *testing.T) {
		s := createTestSubmission(t)
		partial := valueobject.NewMoneyKESFromFloat(10000)

		err := s.Verify(verifier, partial, "statement shows 10000 only", obligationID)
		require.NoError(t, err)

		assert.Equal(t, SubmissionStatusVerified, s.Status)
		assert.True(t, s.VerifiedAmount.Equals(partial))
		assert.True(t, s.Amount.Equals(valueobject.NewMoneyKESFromFloat(15000)))
	})

	t.Run("rejects verified amount above the submitted amount", func(t *testing.T) {
		s := createTestSubmission(t)

		err := s.Verify(verifier, valueobject.NewMoneyKESFromFloat(15001), "typo", obligationID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed the submitted amount")
		assert.Equal(t, SubmissionStatusPending, s.Status)
	})

	t.Run("rejects non-positive verified amount", func(t *testing.T) {
		s := createTestSubmission(t)

		err := s.Verify(verifier, valueobject.ZeroKES(), "nothing cleared", obligationID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be positive")
	})

	t.Run("requires admin notes", func(t *testing.T) {
		s := createTestSubmission(t)

		err := s.Verify(verifier, s.Amount, "   ", obligationID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Admin notes are required")
	})

	t.Run("publishes PaymentVerified event", func(t *testing.T) {
		s := createTestSubmission(t)

		require.NoError(t, s.Verify(verifier, s.Amount, "confirmed", obligationID))

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*PaymentVerifiedEvent)
		require.True(t, ok)
		assert.Equal(t, obligationID, event.AppliedObligationID)
		assert.Equal(t, verifier, event.VerifiedBy)
	})

	t.Run("rejects double verification", func(t *testing.T) {
		s := createTestSubmission(t)
		require.NoError(t, s.Verify(verifier, s.Amount, "confirmed", obligationID))

		err := s.Verify(verifier, s.Amount, "confirmed", obligationID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been verified")
	})

	t.Run("rejects verification of a rejected submission", func(t *testing.T) {
		s := createTestSubmission(t)
		require.NoError(t, s.Reject(verifier, "no matching transaction"))

		err := s.Verify(verifier, s.Amount, "confirmed", obligationID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been rejected")
	})

	t.Run("fails with nil verifier", func(t *testing.T) {
		s := createTestSubmission(t)
		err := s.Verify(uuid.Nil, s.Amount, "confirmed", obligationID)
		assert.Error(t, err)
	})

	t.Run("fails with nil obligation", func(t *testing.T) {
		s := createTestSubmission(t)
		err := s.Verify(verifier, s.Amount, "confirmed", uuid.Nil)
		assert.Error(t, err)
	})
}

// ============================================
// Reject Tests
// ============================================

func TestPaymentSubmission_Reject(t *testing.T) {
	verifier := uuid.New()

	t.Run("rejects a pending submission with reason", func(t *testing.T) {
		s := createTestSubmission(t)

		err := s.Reject(verifier, "reference not found in statement")
		require.NoError(t, err)

		assert.Equal(t, SubmissionStatusRejected, s.Status)
		assert.Equal(t, "reference not found in statement", s.AdminNotes)
		require.NotNil(t, s.VerifiedBy)
		assert.Equal(t, verifier, *s.VerifiedBy)
		assert.NotNil(t, s.VerifiedAt)
		assert.True(t, s.VerifiedAmount.IsZero())
		assert.Nil(t, s.AppliedObligationID)
	})

	t.Run("publishes PaymentRejected event", func(t *testing.T) {
		s := createTestSubmission(t)

		require.NoError(t, s.Reject(verifier, "duplicate claim"))

		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		event, ok := events[0].(*PaymentRejectedEvent)
		require.True(t, ok)
		assert.Equal(t, "duplicate claim", event.Reason)
		assert.Equal(t, verifier, event.RejectedBy)
	})

	t.Run("rejects decided submission", func(t *testing.T) {
		s := createTestSubmission(t)
		require.NoError(t, s.Verify(verifier, s.Amount, "confirmed", uuid.New()))

		err := s.Reject(verifier, "too late")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already been verified")
	})

	t.Run("fails with blank reason", func(t *testing.T) {
		s := createTestSubmission(t)
		err := s.Reject(verifier, "  ")
		assert.Error(t, err)
	})
}
