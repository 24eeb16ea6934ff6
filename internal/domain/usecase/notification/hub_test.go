package notification

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	coremocks "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) provider(t *testing.T) *coremocks.MockTimeProvider {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().RunAndReturn(func() time.Time { return c.now }).Maybe()
	return mockTime
}

func TestHub_BurstIsShownInOrder(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hub := NewHub(3*time.Second, clock.provider(t), logger.NewNoopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		hub.Notify(ctx, entity.Notification{UserID: 1, Type: entity.NotifyInfo, Title: fmt.Sprintf("n%d", i)})
	}

	active := hub.Active(1)
	require.NotNil(t, active)
	assert.Equal(t, "n0", active.Title)
	assert.Equal(t, 2, hub.Pending(1))

	clock.now = clock.now.Add(2999 * time.Millisecond)
	assert.Equal(t, "n0", hub.Active(1).Title)

	clock.now = clock.now.Add(time.Millisecond)
	assert.Equal(t, "n1", hub.Active(1).Title)
	assert.Equal(t, 1, hub.Pending(1))

	clock.now = clock.now.Add(3 * time.Second)
	assert.Equal(t, "n2", hub.Active(1).Title)

	clock.now = clock.now.Add(3 * time.Second)
	assert.Nil(t, hub.Active(1))
}

func TestHub_UnobservedItemsKeepTheirSlots(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hub := NewHub(3*time.Second, clock.provider(t), logger.NewNoopLogger())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		hub.Notify(ctx, entity.Notification{UserID: 1, Title: fmt.Sprintf("n%d", i)})
	}

	// 7s later n0 and n1 have had their 3s each, n2 is two thirds through
	clock.now = clock.now.Add(7 * time.Second)
	active := hub.Active(1)
	require.NotNil(t, active)
	assert.Equal(t, "n2", active.Title)
	assert.Equal(t, 1, hub.Pending(1))
}

func TestHub_UsersAreIndependent(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hub := NewHub(0, clock.provider(t), logger.NewNoopLogger())
	ctx := context.Background()

	hub.Notify(ctx, entity.Notification{UserID: 1, Title: "a"})
	hub.Notify(ctx, entity.Notification{UserID: 2, Title: "b"})
	hub.Notify(ctx, entity.Notification{UserID: 0, Title: "dropped"})

	assert.Equal(t, "a", hub.Active(1).Title)
	assert.Equal(t, "b", hub.Active(2).Title)
	assert.Nil(t, hub.Active(3))
}

func TestHub_DrainedQueuesArePrunedWithoutPolling(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hub := NewHub(3*time.Second, clock.provider(t), logger.NewNoopLogger())
	ctx := context.Background()

	for userID := uint64(1); userID <= 50; userID++ {
		hub.Notify(ctx, entity.Notification{UserID: userID, Title: "settled"})
	}

	clock.now = clock.now.Add(4 * time.Second)
	hub.Notify(ctx, entity.Notification{UserID: 99, Title: "fresh"})

	hub.mu.Lock()
	tracked := len(hub.queues)
	_, kept := hub.queues[99]
	hub.mu.Unlock()
	assert.Equal(t, 1, tracked)
	assert.True(t, kept)
	assert.Equal(t, "fresh", hub.Active(99).Title)
}

func TestHub_PruneKeepsUndisplayedBacklog(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	hub := NewHub(3*time.Second, clock.provider(t), logger.NewNoopLogger())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		hub.Notify(ctx, entity.Notification{UserID: 1, Title: fmt.Sprintf("n%d", i)})
	}

	clock.now = clock.now.Add(4 * time.Second)
	hub.Notify(ctx, entity.Notification{UserID: 2, Title: "other"})

	require.NotNil(t, hub.Active(1))
	assert.Equal(t, "n1", hub.Active(1).Title)
	assert.Equal(t, 1, hub.Pending(1))
}
