package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leaseledger/backend/internal/domain/billing"
	"github.com/leaseledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentSubmissionRepository creates a GormPaymentSubmissionRepository with a mocked SQL connection
func newMockPaymentSubmissionRepository(t *testing.T) (*GormPaymentSubmissionRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormPaymentSubmissionRepository(gormDB), mock, mockDB
}

func submissionRows(id, leaseID, tenantID uuid.UUID, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "version", "lease_id", "tenant_id",
		"amount", "verified_amount", "payment_method",
		"transaction_reference", "transaction_date", "status",
	}).AddRow(
		id, 1, leaseID, tenantID,
		"15000", "0", "M-Pesa",
		"QAB12CD34E", time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), status,
	)
}

func TestGormPaymentSubmissionRepository_FindByID(t *testing.T) {
	t.Run("finds existing submission", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		submissionID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_submissions" WHERE id = \$1`).
			WithArgs(submissionID, 1).
			WillReturnRows(submissionRows(submissionID, uuid.New(), uuid.New(), "pending"))

		submission, err := repo.FindByID(context.Background(), submissionID)

		assert.NoError(t, err)
		assert.NotNil(t, submission)
		assert.Equal(t, submissionID, submission.ID)
		assert.Equal(t, "QAB12CD34E", submission.TransactionReference)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent submission", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		submissionID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_submissions" WHERE id = \$1`).
			WithArgs(submissionID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		submission, err := repo.FindByID(context.Background(), submissionID)

		assert.NoError(t, err)
		assert.Nil(t, submission)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentSubmissionRepository_FindByIDs(t *testing.T) {
	t.Run("finds submissions by IDs", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		id1 := uuid.New()
		id2 := uuid.New()
		leaseID := uuid.New()
		tenantID := uuid.New()

		rows := sqlmock.NewRows([]string{
			"id", "version", "lease_id", "tenant_id",
			"amount", "verified_amount", "payment_method",
			"transaction_reference", "transaction_date", "status",
		}).
			AddRow(id1, 1, leaseID, tenantID, "15000", "0", "M-Pesa", "QAB12CD34E", time.Now(), "pending").
			AddRow(id2, 1, leaseID, tenantID, "8000", "0", "Bank Transfer", "TX-88", time.Now(), "pending")

		mock.ExpectQuery(`SELECT \* FROM "payment_submissions" WHERE id IN \(\$1,\$2\)`).
			WithArgs(id1, id2).
			WillReturnRows(rows)

		submissions, err := repo.FindByIDs(context.Background(), []uuid.UUID{id1, id2})

		assert.NoError(t, err)
		assert.Len(t, submissions, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for empty IDs", func(t *testing.T) {
		repo, _, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		submissions, err := repo.FindByIDs(context.Background(), []uuid.UUID{})

		assert.NoError(t, err)
		assert.Empty(t, submissions)
	})
}

func TestGormPaymentSubmissionRepository_ExistsVerifiedReference(t *testing.T) {
	t.Run("returns true when the reference was already credited", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		excludeID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_submissions" WHERE tenant_id = \$1 AND transaction_reference = \$2 AND status = \$3 AND id <> \$4`).
			WithArgs(tenantID, "QAB12CD34E", "verified", excludeID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		exists, err := repo.ExistsVerifiedReference(context.Background(), tenantID, "QAB12CD34E", excludeID)

		assert.NoError(t, err)
		assert.True(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns false for a fresh reference", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		excludeID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_submissions" WHERE tenant_id = \$1 AND transaction_reference = \$2 AND status = \$3 AND id <> \$4`).
			WithArgs(tenantID, "NEW-REF-01", "verified", excludeID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		exists, err := repo.ExistsVerifiedReference(context.Background(), tenantID, "NEW-REF-01", excludeID)

		assert.NoError(t, err)
		assert.False(t, exists)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentSubmissionRepository_Save(t *testing.T) {
	t.Run("saves submission", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		submission, err := billing.NewPaymentSubmission(
			uuid.New(), uuid.New(),
			moneyKES(t, "15000"),
			"M-Pesa", "QAB12CD34E",
			time.Now(),
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "payment_submissions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), submission)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentSubmissionRepository_SaveWithLock(t *testing.T) {
	t.Run("returns conflict when the version moved on", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		submission, err := billing.NewPaymentSubmission(
			uuid.New(), uuid.New(),
			moneyKES(t, "15000"),
			"M-Pesa", "QAB12CD34E",
			time.Now(),
		)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "payment_submissions" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), submission)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK", domainErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentSubmissionRepository_Count(t *testing.T) {
	t.Run("counts submissions with status filter", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		pending := billing.SubmissionStatusPending

		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_submissions" WHERE status = \$1`).
			WithArgs("pending").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

		count, err := repo.Count(context.Background(), billing.PaymentSubmissionFilter{Status: &pending})

		assert.NoError(t, err)
		assert.Equal(t, int64(4), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentSubmissionRepository_InterfaceCompliance(t *testing.T) {
	t.Run("implements PaymentSubmissionRepository interface", func(t *testing.T) {
		repo, _, mockDB := newMockPaymentSubmissionRepository(t)
		defer mockDB.Close()

		var _ billing.PaymentSubmissionRepository = repo
	})
}
