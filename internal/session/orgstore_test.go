// internal/session/orgstore_test.go
package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskpilot/internal/common/database"
	apperrors "taskpilot/internal/common/errors"
)

func newMiniredisStore(t *testing.T, sessionID string) (*OrgStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { rdb.Close() })
	return NewOrgStore(rdb, sessionID), mr
}

func TestOrgStoreRoundTrip(t *testing.T) {
	store, _ := newMiniredisStore(t, "sess-1")
	ctx := context.Background()

	require.NoError(t, store.SetCurrentOrganization(ctx, "org-42"))

	org, err := store.CurrentOrganization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "org-42", org)
}

func TestOrgStoreMissingKeyIsEmpty(t *testing.T) {
	store, _ := newMiniredisStore(t, "sess-1")

	org, err := store.CurrentOrganization(context.Background())

	require.NoError(t, err, "an absent value is not an error")
	assert.Equal(t, "", org)
}

func TestOrgStoreKeysAreSessionScoped(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { rdb.Close() })

	first := NewOrgStore(rdb, "sess-1")
	second := NewOrgStore(rdb, "sess-2")
	ctx := context.Background()

	require.NoError(t, first.SetCurrentOrganization(ctx, "org-first"))

	org, err := second.CurrentOrganization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", org)
}

func TestOrgStoreClear(t *testing.T) {
	store, _ := newMiniredisStore(t, "sess-1")
	ctx := context.Background()

	require.NoError(t, store.SetCurrentOrganization(ctx, "org-42"))
	require.NoError(t, store.Clear(ctx))

	org, err := store.CurrentOrganization(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", org)
}

func TestOrgStoreSetAppliesTTL(t *testing.T) {
	store, mr := newMiniredisStore(t, "sess-1")
	ctx := context.Background()

	require.NoError(t, store.SetCurrentOrganization(ctx, "org-42"))

	key := fmt.Sprintf("taskpilot:session:%s:organization", "sess-1")
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}

func TestOrgStoreWrapsStorageFailures(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewOrgStore(&database.RedisClient{Client: db}, "sess-1")

	mock.ExpectGet("taskpilot:session:sess-1:organization").SetErr(fmt.Errorf("connection lost"))

	_, err := store.CurrentOrganization(context.Background())

	require.Error(t, err)
	stdErr, ok := err.(*apperrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSessionStoreFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	require.NoError(t, mock.ExpectationsWereMet())
}
