package matchmaking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allAlive(string) bool { return true }

func TestEnqueueDeduplicates(t *testing.T) {
	pool := NewWaitingPool()

	pool.Enqueue("u1", []string{"music"})
	pool.Enqueue("u2", []string{"sports"})
	pool.Enqueue("u1", []string{"movies"})

	assert.Equal(t, 2, pool.Len())
	assert.True(t, pool.Contains("u1"))

	// The refreshed entry keeps its place and carries the new interests.
	entry, found := pool.FindAndRemove("u3", []string{"movies"}, allAlive)
	require.True(t, found)
	assert.Equal(t, "u1", entry.UserID)
	assert.Equal(t, []string{"movies"}, entry.Interests)
}

func TestFindAndRemovePrefersInterestOverlap(t *testing.T) {
	pool := NewWaitingPool()
	pool.Enqueue("u1", []string{"cooking"})
	pool.Enqueue("u2", []string{"music"})
	pool.Enqueue("u3", []string{"music", "sports"})

	// u2 queued before u3, so first fit wins even though u3 overlaps more.
	entry, found := pool.FindAndRemove("u4", []string{"sports", "music"}, allAlive)
	require.True(t, found)
	assert.Equal(t, "u2", entry.UserID)
	assert.Equal(t, 2, pool.Len())
}

func TestFindAndRemoveFallsBackToFirstOther(t *testing.T) {
	pool := NewWaitingPool()
	pool.Enqueue("u1", []string{"chess"})
	pool.Enqueue("u2", []string{"tennis"})

	// No overlap anywhere: earliest-queued other user still matches.
	entry, found := pool.FindAndRemove("u3", []string{"music"}, allAlive)
	require.True(t, found)
	assert.Equal(t, "u1", entry.UserID)
}

func TestFindAndRemoveEmptyInterests(t *testing.T) {
	pool := NewWaitingPool()
	pool.Enqueue("u1", nil)

	// A user with no declared interests is reachable via the fallback.
	entry, found := pool.FindAndRemove("u2", []string{"music"}, allAlive)
	require.True(t, found)
	assert.Equal(t, "u1", entry.UserID)

	pool.Enqueue("u3", []string{"music"})
	_, found = pool.FindAndRemove("u4", nil, allAlive)
	assert.True(t, found)
}

func TestFindAndRemoveSkipsSelf(t *testing.T) {
	pool := NewWaitingPool()
	pool.Enqueue("u1", []string{"music"})

	_, found := pool.FindAndRemove("u1", []string{"music"}, allAlive)
	assert.False(t, found)
	assert.True(t, pool.Contains("u1"), "requester's own entry must survive the scan")
}

func TestSweepDropsStaleEntries(t *testing.T) {
	pool := NewWaitingPool()
	pool.Enqueue("gone", []string{"music"})
	pool.Enqueue("here", []string{"music"})

	alive := func(userID string) bool { return userID == "here" }

	entry, found := pool.FindAndRemove("u9", []string{"music"}, alive)
	require.True(t, found)
	assert.Equal(t, "here", entry.UserID)
	assert.Equal(t, 0, pool.Len())
}

func TestSweepOnlyPool(t *testing.T) {
	pool := NewWaitingPool()
	pool.Enqueue("a", nil)
	pool.Enqueue("b", nil)

	pool.Sweep(func(string) bool { return false })
	assert.Equal(t, 0, pool.Len())
}

func TestNormalizeInterests(t *testing.T) {
	got := normalizeInterests([]string{" music ", "", "music", "  ", "sports"})
	assert.Equal(t, []string{"music", "sports"}, got)
}
