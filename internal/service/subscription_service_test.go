package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunflower-post/backend/internal/model"
)

func TestSubscriptions(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	subs := NewSubscriptionService(e.subs)

	assert.ErrorIs(t, subs.Subscribe(ctx, "u1", "attic"), ErrRoomNotFound)
	assert.ErrorIs(t, subs.Unsubscribe(ctx, "u1", "attic"), ErrRoomNotFound)

	require.NoError(t, subs.Subscribe(ctx, "u1", model.RoomLounge))
	require.NoError(t, subs.Subscribe(ctx, "u1", model.RoomLounge), "idempotent")
	require.NoError(t, subs.Subscribe(ctx, "u1", model.RoomTVMovies))
	require.NoError(t, subs.Subscribe(ctx, "u2", model.RoomLounge))

	list, err := subs.ListSubscriptions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.ElementsMatch(t, []string{model.RoomLounge, model.RoomTVMovies}, []string{list[0].Room, list[1].Room})

	n, err := subs.CountSubscribers(ctx, model.RoomLounge)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, subs.Unsubscribe(ctx, "u1", model.RoomLounge))
	ok, err := subs.IsSubscribed(ctx, "u1", model.RoomLounge)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRoomService(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	subs := NewSubscriptionService(e.subs)
	rooms := NewRoomService(subs)
	require.NoError(t, subs.Subscribe(ctx, "u1", model.RoomInspoWall))

	list, err := rooms.ListRooms(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 7)
	assert.Equal(t, model.RoomLounge, list[0].Slug)
	for _, r := range list {
		assert.Equal(t, r.Slug == model.RoomInspoWall, r.Subscribed, r.Slug)
	}

	r, err := rooms.GetRoom(ctx, model.RoomInspoWall, "")
	require.NoError(t, err)
	assert.False(t, r.Subscribed)
	assert.EqualValues(t, 1, r.Subscribers)
	assert.Contains(t, r.Reactions, model.ReactionInspired)

	_, err = rooms.GetRoom(ctx, "attic", "")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
