package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecolehub/school-admin-api/internal/models"
)

func TestFinanceRepositoryCreatePaymentPrefixesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFinanceRepository(db)

	mock.ExpectExec("INSERT INTO payments").WillReturnResult(sqlmock.NewResult(1, 1))

	payment := &models.Payment{
		StudentID:   "stu-1",
		StudentName: "Alice Martin",
		Amount:      250,
		Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Method:      "card",
		Status:      models.PaymentStatusPaid,
	}
	require.NoError(t, repo.CreatePayment(context.Background(), payment))
	assert.True(t, strings.HasPrefix(payment.ID, models.PaymentIDPrefix))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepositoryCreateInvoicePrefixesID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFinanceRepository(db)

	mock.ExpectExec("INSERT INTO invoices").WillReturnResult(sqlmock.NewResult(1, 1))

	invoice := &models.Invoice{
		StudentID:   "stu-1",
		StudentName: "Alice Martin",
		Amount:      500,
		Date:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		DueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Status:      models.PaymentStatusPending,
	}
	require.NoError(t, repo.CreateInvoice(context.Background(), invoice))
	assert.True(t, strings.HasPrefix(invoice.ID, models.InvoiceIDPrefix))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinanceRepositoryListPaymentsByStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFinanceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "student_id", "student_name", "amount", "date", "method", "status", "description",
		"created_at", "updated_at",
	}).AddRow("PAY-1", "stu-1", "Alice Martin", 250.0, now, "card", "paid", "", now, now)

	mock.ExpectQuery(`SELECT (.+) FROM payments WHERE 1=1 AND student_id = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs("stu-1").
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM payments`).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	payments, total, err := repo.ListPayments(context.Background(), models.FinanceFilter{StudentID: "stu-1"})
	require.NoError(t, err)
	assert.Len(t, payments, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
