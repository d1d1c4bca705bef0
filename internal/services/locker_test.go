package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ticketbari/internal/status"
	"ticketbari/models"
)

func newTestLocker(t *testing.T, wait time.Duration) (*RedisLocker, redismock.ClientMock) {
	t.Helper()

	db, mock := redismock.NewClientMock()
	locker := NewRedisLocker(db, 5*time.Second, wait)
	locker.newToken = func() string { return "token-1" }
	return locker, mock
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mock := newTestLocker(t, time.Second)

	mock.ExpectSetNX("lock:ticket:t1", "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:ticket:t1"}, "token-1").SetVal(int64(1))

	release, err := locker.Acquire(context.Background(), "ticket:t1")
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RetriesUntilFree(t *testing.T) {
	locker, mock := newTestLocker(t, time.Second)

	mock.ExpectSetNX("lock:ticket:t1", "token-1", 5*time.Second).SetVal(false)
	mock.ExpectSetNX("lock:ticket:t1", "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"lock:ticket:t1"}, "token-1").SetVal(int64(1))

	release, err := locker.Acquire(context.Background(), "ticket:t1")
	require.NoError(t, err)
	release()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_Busy(t *testing.T) {
	locker, mock := newTestLocker(t, time.Nanosecond)

	mock.ExpectSetNX("lock:ticket:t1", "token-1", 5*time.Second).SetVal(false)

	_, err := locker.Acquire(context.Background(), "ticket:t1")

	assert.ErrorIs(t, err, status.ErrBusy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_RedisError(t *testing.T) {
	locker, mock := newTestLocker(t, time.Second)

	mock.ExpectSetNX("lock:ticket:t1", "token-1", 5*time.Second).SetErr(errors.New("connection refused"))

	_, err := locker.Acquire(context.Background(), "ticket:t1")

	assert.ErrorContains(t, err, "connection refused")
}

func TestRedisLocker_GuardsReservation(t *testing.T) {
	f := newFixture(t)
	ticket := f.ticket(t, "Dhaka Express", 10, 500)
	locker, mock := newTestLocker(t, time.Second)
	ledger := NewLedger(f.store, locker, DefaultAdvertiseLimit)

	key := "lock:ticket:" + ticket.ID
	mock.ExpectSetNX(key, "token-1", 5*time.Second).SetVal(true)
	mock.ExpectEval(releaseScript, []string{key}, "token-1").SetVal(int64(1))

	_, err := ledger.ReserveSeats(f.ctx, caller(aliceEmail, models.RoleUser), ReserveRequest{
		TicketID:    ticket.ID,
		SeatNumbers: []string{"4"},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNopLocker(t *testing.T) {
	release, err := NopLocker{}.Acquire(context.Background(), "ticket:t1")
	require.NoError(t, err)
	release()
}
