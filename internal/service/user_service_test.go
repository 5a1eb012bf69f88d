package service

import (
	"context"
	"testing"
	"time"

	"wellmate-be/internal/constant"
	"wellmate-be/internal/entity"
	"wellmate-be/internal/pkg/apperror"
	"wellmate-be/internal/pkg/logger"
	"wellmate-be/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileUsesCache(t *testing.T) {
	uow := newFakeUnitOfWork()
	svc := NewUserService(uow, memory.NewUserCache(time.Minute), logger.NewNopLogger(), time.Second)
	ctx := context.Background()

	birth := time.Date(1985, 3, 9, 0, 0, 0, 0, time.UTC)
	user := &entity.User{Id: uuid.New(), Username: "dave", FullName: "Dave", BirthDate: &birth, IsActive: true}
	require.NoError(t, uow.users.Create(ctx, user))

	profile, err := svc.GetProfile(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, "dave", profile.Username)
	require.NotNil(t, profile.BirthDate)
	assert.Equal(t, "1985-03-09", *profile.BirthDate)

	_, err = svc.GetProfile(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, 1, uow.users.findCalls)

	_, err = svc.GetProfile(ctx, uuid.New())
	assertCode(t, err, apperror.KindNotFound, constant.ErrCodeUserNotFound)
}

func TestUserUpdateSettingsMergesAndInvalidates(t *testing.T) {
	uow := newFakeUnitOfWork()
	cache := memory.NewUserCache(time.Minute)
	svc := NewUserService(uow, cache, logger.NewNopLogger(), time.Second)
	ctx := context.Background()

	user := &entity.User{Id: uuid.New(), Username: "erin", Settings: map[string]interface{}{"theme": "dark", "lang": "zh"}}
	require.NoError(t, uow.users.Create(ctx, user))
	_, err := svc.GetProfile(ctx, user.Id)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	res, err := svc.UpdateSettings(ctx, user.Id, map[string]interface{}{"lang": "en"})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"lang": "en"}, res.UpdatedSettings)
	assert.Equal(t, 0, cache.Len())

	profile, err := svc.GetProfile(ctx, user.Id)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"theme": "dark", "lang": "en"}, profile.Settings)

	uow.users.updateErr = errStoreDown
	_, err = svc.UpdateSettings(ctx, user.Id, map[string]interface{}{"lang": "fr"})
	assertCode(t, err, apperror.KindPersistence, constant.ErrCodeUpdateFailed)
}
