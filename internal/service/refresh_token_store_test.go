package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type mockRedisKVClient struct {
	lastSetKey string
	lastSetVal interface{}
	lastSetTTL time.Duration
	lastGet    string
	lastDel    []string

	setErr error
	getErr error
	delErr error
	owner  string
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetVal = value
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	m.lastGet = key
	cmd := redis.NewStringCmd(ctx)
	switch {
	case m.getErr != nil:
		cmd.SetErr(m.getErr)
	case m.owner == "":
		cmd.SetErr(redis.Nil)
	default:
		cmd.SetVal(m.owner)
	}
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	cmd := redis.NewIntCmd(ctx)
	if m.delErr != nil {
		cmd.SetErr(m.delErr)
		return cmd
	}
	cmd.SetVal(1)
	return cmd
}

func TestMemoryRefreshTokenStore_Basics(t *testing.T) {
	now := time.Date(2025, 1, 6, 12, 0, 0, 0, time.UTC)
	store := NewMemoryRefreshTokenStore().(*memoryRefreshTokenStore)
	store.now = func() time.Time { return now }

	owner, err := store.Owner("missing")
	if err != nil || owner != "" {
		t.Fatalf("expected missing token empty owner; got %q,%v", owner, err)
	}

	if err := store.Store("jti-1", "c1", 50*time.Millisecond); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	owner, err = store.Owner("jti-1")
	if err != nil || owner != "c1" {
		t.Fatalf("expected owner c1, got %q,%v", owner, err)
	}

	now = now.Add(70 * time.Millisecond)
	owner, err = store.Owner("jti-1")
	if err != nil || owner != "" {
		t.Fatalf("expected token expired, got %q,%v", owner, err)
	}
}

func TestMemoryRefreshTokenStore_RevokeAndEmptyJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()
	if err := store.Store("", "c1", time.Minute); err != nil {
		t.Fatalf("empty jti store should be no-op, got %v", err)
	}
	if err := store.Store("jti-2", "c1", time.Minute); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if err := store.Revoke("jti-2"); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	owner, err := store.Owner("jti-2")
	if err != nil || owner != "" {
		t.Fatalf("expected revoked token absent, got %q,%v", owner, err)
	}
}

func TestRedisRefreshTokenStore_Basics(t *testing.T) {
	mock := &mockRedisKVClient{owner: "c1"}
	store := &redisRefreshTokenStore{
		client: mock,
		prefix: "coach:refresh:",
	}

	if err := store.Store(" j1 ", "c1", 0); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if mock.lastSetKey != "coach:refresh:j1" {
		t.Fatalf("unexpected key, got %q", mock.lastSetKey)
	}
	if mock.lastSetTTL <= 0 {
		t.Fatalf("expected positive TTL fallback, got %v", mock.lastSetTTL)
	}

	owner, err := store.Owner(" j1 ")
	if err != nil || owner != "c1" {
		t.Fatalf("expected owner c1; got %q,%v", owner, err)
	}
	if mock.lastGet != "coach:refresh:j1" {
		t.Fatalf("unexpected get key: %q", mock.lastGet)
	}

	if err := store.Revoke(" j1 "); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}
	if len(mock.lastDel) != 1 || mock.lastDel[0] != "coach:refresh:j1" {
		t.Fatalf("unexpected del key: %+v", mock.lastDel)
	}
}

func TestRedisRefreshTokenStore_ErrorPathsAndEmptyJTI(t *testing.T) {
	mock := &mockRedisKVClient{
		setErr:    errors.New("set failed"),
		getErr:    errors.New("get failed"),
		delErr:    errors.New("del failed"),
	}
	store := &redisRefreshTokenStore{
		client: mock,
		prefix: "coach:refresh:",
	}

	if err := store.Store("", "c1", time.Minute); err != nil {
		t.Fatalf("empty jti store should be no-op, got %v", err)
	}
	owner, err := store.Owner("")
	if err != nil || owner != "" {
		t.Fatalf("empty jti owner should be empty; got %q,%v", owner, err)
	}
	if err := store.Revoke(""); err != nil {
		t.Fatalf("empty jti revoke should be no-op, got %v", err)
	}

	if err := store.Store("j2", "c1", time.Minute); err == nil {
		t.Fatalf("expected store error")
	}
	if _, err := store.Owner("j2"); err == nil {
		t.Fatalf("expected get error")
	}
	if err := store.Revoke("j2"); err == nil {
		t.Fatalf("expected revoke error")
	}
}

func TestRedisRefreshTokenStore_Miniredis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := NewRedisRefreshTokenStore(client)

	require.NoError(t, store.Store("j3", "c1", time.Hour))
	val, err := mr.Get("coach:refresh:j3")
	require.NoError(t, err)
	require.Equal(t, "c1", val)

	owner, err := store.Owner("j3")
	require.NoError(t, err)
	require.Equal(t, "c1", owner)

	mr.FastForward(2 * time.Hour)
	owner, err = store.Owner("j3")
	require.NoError(t, err)
	require.Empty(t, owner)
}
