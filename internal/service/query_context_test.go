package service

import (
	"context"
	"testing"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/dto"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/repository/memory"
	"wellmate-be/pkg/token"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stallTimeout = 20 * time.Millisecond

func TestQueryContext(t *testing.T) {
	ctx, cancel := queryContext(context.Background(), 0)
	cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	ctx, cancel = queryContext(context.Background(), time.Minute)
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}

func assertTimedOut(t *testing.T, start time.Time, err error) {
	t.Helper()
	assert.True(t, apperror.IsKind(err, apperror.KindPersistence), "got %v", err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStalledStoreSurfacesAsPersistenceError(t *testing.T) {
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.users.stalled = true
		issuer := token.NewIssuer("test-secret", time.Hour, 24*time.Hour)
		svc := NewAuthService(uow, issuer, &recordingPublisher{}, logger.NewNopLogger(), stallTimeout)

		start := time.Now()
		_, err := svc.Login(ctx, &dto.LoginRequest{Username: "alice", Password: "secret123"})
		assertTimedOut(t, start, err)
		assertCode(t, err, apperror.KindPersistence, constant.ErrCodeInternal)
	})

	t.Run("profile", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.users.stalled = true
		svc := NewUserService(uow, memory.NewUserCache(time.Minute), logger.NewNopLogger(), stallTimeout)

		start := time.Now()
		_, err := svc.GetProfile(ctx, uuid.New())
		assertTimedOut(t, start, err)
	})

	t.Run("health", func(t *testing.T) {
		uow := newFakeUnitOfWork()
		uow.health.stalled = true
		pub := &recordingPublisher{}
		svc := NewHealthDataService(uow, pub, logger.NewNopLogger(), stallTimeout)

		start := time.Now()
		_, err := svc.GetStats(ctx, uuid.New(), constant.StatsPeriodWeek)
		assertTimedOut(t, start, err)

		start = time.Now()
		_, err = svc.DeleteRecord(ctx, uuid.New(), uuid.New())
		assertTimedOut(t, start, err)
		assert.Empty(t, pub.types())
	})
}
