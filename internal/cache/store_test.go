package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedThing struct {
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewStore(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestStore_AsideFetchesOnceThenHits(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()
	calls := 0

	fetch := func(dest *cachedThing) func() error {
		return func() error {
			calls++
			dest.Name = "ada"
			return nil
		}
	}

	var first cachedThing
	require.NoError(t, s.Aside(ctx, UserKey(1), &first, time.Minute, fetch(&first)))
	var second cachedThing
	require.NoError(t, s.Aside(ctx, UserKey(1), &second, time.Minute, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "ada", second.Name)
	assert.True(t, mr.Exists("user:1"))
}

func TestStore_AsidePropagatesFetchError(t *testing.T) {
	s, mr := newTestStore(t)
	boom := errors.New("boom")

	var dest cachedThing
	err := s.Aside(context.Background(), UserKey(2), &dest, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:2"))
}

func TestStore_Invalidate(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SetBytes(ctx, GithubReposKey("octocat"), []byte(`[]`), time.Minute))
	s.Invalidate(ctx, GithubReposKey("octocat"))
	assert.False(t, mr.Exists("github:repos:octocat"))
}

func TestStore_NilClientIsAlwaysMiss(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.SetJSON(ctx, "k", cachedThing{Name: "x"}, time.Minute))
	found, err := s.GetJSON(ctx, "k", &cachedThing{})
	require.NoError(t, err)
	assert.False(t, found)

	calls := 0
	require.NoError(t, s.Aside(ctx, "k", &cachedThing{}, time.Minute, func() error { calls++; return nil }))
	require.NoError(t, s.Aside(ctx, "k", &cachedThing{}, time.Minute, func() error { calls++; return nil }))
	assert.Equal(t, 2, calls)
}

func TestConnect_UnreachableReturnsNil(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, Connect(addr))
}

func TestConnect_URL(t *testing.T) {
	mr := miniredis.RunT(t)

	client := Connect("redis://" + mr.Addr())
	require.NotNil(t, client)
	assert.NoError(t, client.Ping(context.Background()).Err())
}
