package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/testutil"
)

func TestNotifier_DeliversAndDrainsOnStop(t *testing.T) {
	repo := repository.NewNotificationRepository(testutil.NewDB(t))
	n := NewNotifier(repo, 16)
	stop := n.Start(2)

	for i := 0; i < 5; i++ {
		n.Enqueue(model.Notification{UserID: "u1", ActorID: fmt.Sprintf("a%d", i), Kind: model.NotifyReply, PostID: "p1"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, stop(ctx))
	require.NoError(t, stop(ctx), "stop is idempotent")

	_, total, err := repo.List(context.Background(), "u1", false, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	assert.Equal(t, NotifierStats{Delivered: 5}, n.Stats())
}

func TestNotifier_DropsWhenFull(t *testing.T) {
	repo := repository.NewNotificationRepository(testutil.NewDB(t))
	n := NewNotifier(repo, 1)

	n.Enqueue(model.Notification{UserID: "u1", Kind: model.NotifyReaction})
	n.Enqueue(model.Notification{UserID: "u1", Kind: model.NotifyReaction})

	assert.Equal(t, NotifierStats{Queued: 1, Dropped: 1}, n.Stats())
}

func TestNotificationService(t *testing.T) {
	repo := repository.NewNotificationRepository(testutil.NewDB(t))
	svc := NewNotificationService(repo)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &model.Notification{
			ID: fmt.Sprintf("n%d", i), UserID: "u1", ActorID: "u2", Kind: model.NotifyReply,
			PostID: "p1", CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, err := svc.ListNotifications(ctx, "u1", false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.EqualValues(t, 3, page.Unread)
	assert.Equal(t, "n2", page.List[0].ID)
	assert.False(t, page.List[0].Read)

	assert.ErrorIs(t, svc.MarkRead(ctx, "u2", "n0"), ErrNotificationNotFound)
	require.NoError(t, svc.MarkRead(ctx, "u1", "n0"))

	unread, err := svc.ListNotifications(ctx, "u1", true, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread.Total)
	assert.EqualValues(t, 2, unread.Unread)

	n, err := svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	page, err = svc.ListNotifications(ctx, "u1", false, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, page.Unread)
	assert.True(t, page.List[0].Read)
}
