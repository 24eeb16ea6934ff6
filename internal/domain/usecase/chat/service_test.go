package chat

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/memory"
	coremocks "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	now     time.Time
	store   *memory.Store
	service *Service
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{now: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().RunAndReturn(func() time.Time { return f.now }).Maybe()

	f.store = memory.NewStore(mockTime)
	f.service = NewService(f.store.Chat(), f.store.GetUserRepository(context.Background()), mockTime, logger.NewNoopLogger(), DefaultConfig())
	return f
}

func (f *fixture) seedUser(t *testing.T, phone, username string) *entity.User {
	u := entity.RestoreUser(entity.User{Phone: phone, Username: username, Role: entity.RoleUser, ActiveMode: entity.LedgerReal}, 0, 0)
	require.NoError(t, f.store.GetUserRepository(context.Background()).Create(context.Background(), u))
	return u
}

func TestSend_OpensThreadWithGreeting(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "0811", "Sultan")
	ctx := context.Background()

	msg, err := f.service.Send(ctx, u.ID, entity.SenderUser, "I have a question about my deposit")
	require.NoError(t, err)
	assert.Equal(t, entity.ChatSent, msg.Status)

	thread, err := f.service.Thread(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, entity.SenderSystem, thread[0].Sender)
	assert.Equal(t, "Hi Sultan! How can we help you today?", thread[0].Text)
	assert.Equal(t, entity.ChatRead, thread[0].Status)
	assert.Equal(t, msg.ID, thread[1].ID)

	_, err = f.service.Send(ctx, u.ID, entity.SenderAdmin, "Sure, which one?")
	require.NoError(t, err)
	thread, err = f.service.Thread(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, thread, 3)
}

func TestThread_DeliveredAfterDelay(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "0811", "budi")
	ctx := context.Background()

	_, err := f.service.Send(ctx, u.ID, entity.SenderUser, "halo")
	require.NoError(t, err)

	f.now = f.now.Add(500 * time.Millisecond)
	thread, err := f.service.Thread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ChatSent, thread[1].Status)

	f.now = f.now.Add(500 * time.Millisecond)
	thread, err = f.service.Thread(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ChatDelivered, thread[1].Status)
}

func TestMarkRead_OnlyOppositeSide(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "0811", "budi")
	ctx := context.Background()

	_, err := f.service.Send(ctx, u.ID, entity.SenderUser, "one")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, u.ID, entity.SenderUser, "two")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, u.ID, entity.SenderAdmin, "answer")
	require.NoError(t, err)

	n, err := f.service.MarkRead(ctx, u.ID, entity.SenderAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	thread, err := f.service.Thread(ctx, u.ID)
	require.NoError(t, err)
	for _, m := range thread {
		if m.Sender == entity.SenderAdmin {
			assert.Equal(t, entity.ChatSent, m.Status)
		} else {
			assert.Equal(t, entity.ChatRead, m.Status)
		}
	}

	n, err = f.service.MarkRead(ctx, u.ID, entity.SenderUser)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.service.MarkRead(ctx, u.ID, entity.SenderSystem)
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestThreads_InboxOrderAndUnread(t *testing.T) {
	f := newFixture(t)
	first := f.seedUser(t, "0811", "first")
	second := f.seedUser(t, "0822", "second")
	ctx := context.Background()

	_, err := f.service.Send(ctx, first.ID, entity.SenderUser, "hello")
	require.NoError(t, err)
	f.now = f.now.Add(time.Minute)
	_, err = f.service.Send(ctx, second.ID, entity.SenderUser, "hi")
	require.NoError(t, err)
	_, err = f.service.Send(ctx, second.ID, entity.SenderUser, "anyone?")
	require.NoError(t, err)

	threads, err := f.service.Threads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, second.ID, threads[0].UserID)
	assert.Equal(t, "second", threads[0].Username)
	assert.Equal(t, 2, threads[0].Unread)
	assert.Equal(t, "anyone?", threads[0].LastMessage.Text)
	assert.Equal(t, 1, threads[1].Unread)
	assert.Equal(t, entity.ChatDelivered, threads[1].LastMessage.Status)
}

func TestSend_Rejections(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, "0811", "budi")
	ctx := context.Background()

	_, err := f.service.Send(ctx, u.ID, entity.SenderUser, "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	_, err = f.service.Send(ctx, u.ID, entity.SenderSystem, "spoof")
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	_, err = f.service.Send(ctx, 404, entity.SenderUser, "hi")
	assert.ErrorIs(t, err, errs.ErrUserNotFound)

	thread, err := f.service.Thread(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)
}
