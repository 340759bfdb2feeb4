package booking

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"timebank/internal/api"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingRows = []string{
	"id", "offer_id", "offer_title", "owner_id", "owner_name", "owner_email",
	"requester_id", "requester_name", "requester_email",
	"status", "reserved_hours", "transferred_hours", "cancel_reason",
	"created_at", "updated_at", "confirmed_at", "completed_at", "canceled_at",
}

func setupBookingMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func pendingRow(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(bookingRows).AddRow(
		7, 3, "Guitar lessons", 1, "Olga Park", "olga@campus.edu",
		2, "Ivan Lee", "ivan@campus.edu",
		"PENDING", "4.00", nil, nil,
		now, now, nil, nil, nil,
	)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings (offer_id, requester_id, status, reserved_hours) VALUES ($1, $2, $3, $4) RETURNING id, created_at, updated_at")).
		WithArgs(int64(3), int64(2), "PENDING", hours("4")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(7, now, now))

	b := &Booking{OfferID: 3, RequesterID: 2, Status: StatusPending, ReservedHours: hours("4.00")}
	require.NoError(t, repo.Create(context.Background(), b))

	assert.Equal(t, int64(7), b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("JOIN users rq ON rq.id = b.requester_id WHERE b.id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(pendingRow(time.Now()))

	b, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, "Olga Park", b.OwnerName)
	assert.Equal(t, "ivan@campus.edu", b.RequesterEmail)
	assert.True(t, b.ReservedHours.Equal(hours("4")))
	assert.False(t, b.TransferredHours.Valid)
	assert.Nil(t, b.CancelReason)
}

func TestRepository_GetForUpdate(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = $1 FOR UPDATE OF b")).
		WithArgs(int64(7)).
		WillReturnRows(pendingRow(time.Now()))

	_, err := repo.GetForUpdate(context.Background(), 7)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.id = $1")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 9)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_UpdateStatus(t *testing.T) {
	query := regexp.QuoteMeta("WHERE id = $1 AND status = $2 RETURNING updated_at")

	t.Run("guarded update", func(t *testing.T) {
		repo, mock, close := setupBookingMock(t)
		defer close()

		b := newBooking(StatusPending)
		now := time.Now()
		require.NoError(t, b.Confirm(now))

		mock.ExpectQuery(query).
			WithArgs(int64(7), "PENDING", "CONFIRMED", b.TransferredHours, b.CancelReason, b.ConfirmedAt, b.CompletedAt, b.CanceledAt).
			WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

		require.NoError(t, repo.UpdateStatus(context.Background(), b, StatusPending))
		assert.Equal(t, now, b.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status changed underneath", func(t *testing.T) {
		repo, mock, close := setupBookingMock(t)
		defer close()

		b := newBooking(StatusPending)
		require.NoError(t, b.Cancel("", time.Now()))

		mock.ExpectQuery(query).WillReturnError(sql.ErrNoRows)

		err := repo.UpdateStatus(context.Background(), b, StatusPending)
		assert.ErrorIs(t, err, ErrStaleBooking)
	})
}

func TestRepository_ListByOwner(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM bookings b JOIN offers o ON o.id = b.offer_id")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE o.owner_id = $1 ORDER BY b.created_at DESC, b.id DESC LIMIT $2 OFFSET $3")).
		WithArgs(int64(1), 20, 20).
		WillReturnRows(pendingRow(time.Now()))

	bookings, total, err := repo.ListByOwner(context.Background(), 1, api.PageRequest{Page: 1, Size: 20})
	require.NoError(t, err)

	assert.Equal(t, int64(21), total)
	assert.Len(t, bookings, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByStatus(t *testing.T) {
	repo, mock, close := setupBookingMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.status = $1")).
		WithArgs("CANCELED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.status = $1 ORDER BY")).
		WithArgs("CANCELED", 20, 0).
		WillReturnRows(sqlmock.NewRows(bookingRows))

	bookings, total, err := repo.ListByStatus(context.Background(), StatusCanceled, api.PageRequest{Size: 20})
	require.NoError(t, err)

	assert.Zero(t, total)
	assert.Empty(t, bookings)
	assert.NotNil(t, bookings)
}
