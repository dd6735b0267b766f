package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/domain"
)

func TestScoreBoard_InitializeAndIncrement(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()

	require.NoError(t, b.Initialize(ctx, "R1", "m1"))

	v, err := b.Increment(ctx, "R1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, err = b.Increment(ctx, "R1", "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestScoreBoard_InitializeKeepsExistingScore(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()

	require.NoError(t, b.Initialize(ctx, "R1", "m1"))
	_, err := b.Increment(ctx, "R1", "m1")
	require.NoError(t, err)

	// Duplicate join path: a second Initialize must not zero the counter.
	require.NoError(t, b.Initialize(ctx, "R1", "m1"))

	snap, err := b.Snapshot(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 1, snap["m1"])
}

func TestScoreBoard_IncrementUnknownMember(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()

	_, err := b.Increment(ctx, "R1", "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)

	require.NoError(t, b.Initialize(ctx, "R1", "m1"))
	_, err = b.Increment(ctx, "R1", "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)
}

func TestScoreBoard_RemoveThenIncrement(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()

	require.NoError(t, b.Initialize(ctx, "R1", "m1"))
	require.NoError(t, b.Remove(ctx, "R1", "m1"))

	_, err := b.Increment(ctx, "R1", "m1")
	assert.ErrorIs(t, err, domain.ErrUnknownMember)

	// Removing an absent entry is a no-op.
	require.NoError(t, b.Remove(ctx, "R1", "m1"))
}

func TestScoreBoard_ResetAll(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()

	require.NoError(t, b.Initialize(ctx, "R1", "m1"))
	require.NoError(t, b.Initialize(ctx, "R1", "m2"))
	for i := 0; i < 3; i++ {
		_, err := b.Increment(ctx, "R1", "m1")
		require.NoError(t, err)
	}

	require.NoError(t, b.ResetAll(ctx, "R1"))

	snap, err := b.Snapshot(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, map[domain.MemberID]int{"m1": 0, "m2": 0}, snap)
}

func TestScoreBoard_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()
	require.NoError(t, b.Initialize(ctx, "R1", "m1"))

	snap, err := b.Snapshot(ctx, "R1")
	require.NoError(t, err)
	snap["m1"] = 99

	fresh, err := b.Snapshot(ctx, "R1")
	require.NoError(t, err)
	assert.Equal(t, 0, fresh["m1"])
}

func TestScoreBoard_DropRoom(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()
	require.NoError(t, b.Initialize(ctx, "R1", "m1"))
	require.NoError(t, b.DropRoom(ctx, "R1"))

	snap, err := b.Snapshot(ctx, "R1")
	require.NoError(t, err)
	assert.Empty(t, snap, "no residual score data after disposal")
}

func TestScoreBoard_RoomsAreIsolated(t *testing.T) {
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()
	require.NoError(t, b.Initialize(ctx, "R1", "m1"))
	require.NoError(t, b.Initialize(ctx, "R2", "m1"))

	_, err := b.Increment(ctx, "R1", "m1")
	require.NoError(t, err)

	snap, err := b.Snapshot(ctx, "R2")
	require.NoError(t, err)
	assert.Equal(t, 0, snap["m1"])
}

// TestScoreBoard_ConcurrentIncrements is the lost-update check: the final
// score must equal the number of Increment calls.
func TestScoreBoard_ConcurrentIncrements(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}
	ctx := context.Background()
	b := core.NewMemoryScoreBoard()

	const (
		members    = 4
		goroutines = 8
		increments = 500
	)
	for i := 0; i < members; i++ {
		require.NoError(t, b.Initialize(ctx, "R1", memberID(i)))
	}

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		for m := 0; m < members; m++ {
			wg.Add(1)
			go func(id domain.MemberID) {
				defer wg.Done()
				for i := 0; i < increments; i++ {
					_, err := b.Increment(ctx, "R1", id)
					assert.NoError(t, err)
				}
			}(memberID(m))
		}
	}
	wg.Wait()

	snap, err := b.Snapshot(ctx, "R1")
	require.NoError(t, err)
	for m := 0; m < members; m++ {
		assert.Equal(t, goroutines*increments, snap[memberID(m)])
	}
}

func memberID(n int) domain.MemberID {
	return domain.MemberID(fmt.Sprintf("m%d", n))
}
