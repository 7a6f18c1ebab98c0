package inmem

import (
	"context"
	"errors"
	"github.com/bwownie/go-browniegate/internal/logger"
	"github.com/bwownie/go-browniegate/internal/models/modelstorage"
	storageErrors "github.com/bwownie/go-browniegate/internal/storage/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestUserLifecycle(t *testing.T) {
	st := InitStorage(logger.InitLog())
	ctx := context.Background()
	user := modelstorage.UserStorageEntry{UserID: "u1", Login: "brownie", Email: "brownie@example.com"}
	require.NoError(t, st.AddNewUser(ctx, user))

	var alreadyExistsError *storageErrors.AlreadyExistsError
	err := st.AddNewUser(ctx, user)
	require.Error(t, err)
	assert.True(t, errors.As(err, &alreadyExistsError))

	stored, err := st.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, user, stored)

	var notFoundError *storageErrors.NotFoundError
	_, err = st.GetUser(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.As(err, &notFoundError))
}

func TestCodesAreSingleUse(t *testing.T) {
	st := InitStorage(logger.InitLog())
	ctx := context.Background()
	require.NoError(t, st.AddCode(ctx, modelstorage.CodeStorageEntry{Code: "c1", UserID: "u1"}))

	userID, err := st.ConsumeCode(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "u1", userID)

	var notFoundError *storageErrors.NotFoundError
	_, err = st.ConsumeCode(ctx, "c1")
	require.Error(t, err)
	assert.True(t, errors.As(err, &notFoundError))
}

func TestCookieHashLifecycle(t *testing.T) {
	st := InitStorage(logger.InitLog())
	ctx := context.Background()
	require.NoError(t, st.AddCookieHash(ctx, "u1", "h1"))

	ok, err := st.CheckCookieHash(ctx, "u1", "h1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = st.CheckCookieHash(ctx, "u1", "h2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = st.CheckCookieHash(ctx, "unknown", "h1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.RemoveCookieHash(ctx, "u1"))
	var notFoundError *storageErrors.NotFoundError
	err = st.RemoveCookieHash(ctx, "u1")
	require.Error(t, err)
	assert.True(t, errors.As(err, &notFoundError))
}
