package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/testutil"
)

func seedUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{ID: "u-" + name, Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestPostRepository_CreateWithOutbox(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)

	p := &model.Post{RoomSlug: model.RoomLounge, AuthorID: author.ID, Body: "hello"}
	require.NoError(t, posts.CreateWithOutbox(ctx, p))
	require.NotEmpty(t, p.ID)

	var out model.Outbox
	require.NoError(t, db.Where("post_id = ?", p.ID).First(&out).Error)
	assert.Equal(t, model.OutboxPending, out.Status)
	assert.Equal(t, model.RoomLounge, out.RoomSlug)

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Author)
	assert.Equal(t, "daisy", got.Author.Username)
}

func TestPostRepository_ListByRoomNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		p := &model.Post{RoomSlug: model.RoomBookClub, AuthorID: author.ID, Body: fmt.Sprintf("b%d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, posts.CreateWithOutbox(ctx, p))
	}
	require.NoError(t, posts.CreateWithOutbox(ctx, &model.Post{RoomSlug: model.RoomLounge, AuthorID: author.ID, Body: "other"}))

	list, total, err := posts.ListByRoom(ctx, model.RoomBookClub, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, list, 2)
	assert.Equal(t, "b4", list[0].Body)
	assert.Equal(t, "b3", list[1].Body)

	list, _, err = posts.ListByRoom(ctx, model.RoomBookClub, 4, 2)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b0", list[0].Body)
}

func TestReplyRepository_ReplyCount(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)
	replies := repository.NewReplyRepository(db)

	p := &model.Post{RoomSlug: model.RoomDilemmas, AuthorID: author.ID, Body: "help"}
	require.NoError(t, posts.CreateWithOutbox(ctx, p))

	r1 := &model.Reply{PostID: p.ID, AuthorID: author.ID, Body: "one"}
	r2 := &model.Reply{PostID: p.ID, AuthorID: author.ID, Body: "two", CreatedAt: time.Now().Add(time.Second)}
	require.NoError(t, replies.Create(ctx, r1))
	require.NoError(t, replies.Create(ctx, r2))

	got, err := posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got.ReplyCount)

	list, total, err := replies.ListByPost(ctx, p.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, "one", list[0].Body)

	require.NoError(t, replies.Delete(ctx, r1))
	// deleting twice must not drive the count negative
	require.NoError(t, replies.Delete(ctx, r1))
	got, err = posts.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, got.ReplyCount)
}

func TestReactionRepository_Toggle(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	reactions := repository.NewReactionRepository(db)

	active, err := reactions.Toggle(ctx, model.TargetPost, "p1", "u1", model.ReactionHug)
	require.NoError(t, err)
	assert.True(t, active)
	_, err = reactions.Toggle(ctx, model.TargetPost, "p1", "u2", model.ReactionHug)
	require.NoError(t, err)
	_, err = reactions.Toggle(ctx, model.TargetPost, "p1", "u1", model.ReactionHeart)
	require.NoError(t, err)
	_, err = reactions.Toggle(ctx, model.TargetPost, "p2", "u1", model.ReactionHeart)
	require.NoError(t, err)

	counts, err := reactions.Counts(ctx, model.TargetPost, []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{model.ReactionHug: 2, model.ReactionHeart: 1}, counts["p1"])
	assert.Equal(t, map[string]int64{model.ReactionHeart: 1}, counts["p2"])
	assert.Nil(t, counts["p3"])

	mine, err := reactions.Mine(ctx, model.TargetPost, []string{"p1", "p2"}, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{model.ReactionHug, model.ReactionHeart}, mine["p1"])

	// second toggle removes
	active, err = reactions.Toggle(ctx, model.TargetPost, "p1", "u1", model.ReactionHug)
	require.NoError(t, err)
	assert.False(t, active)
	counts, err = reactions.Counts(ctx, model.TargetPost, []string{"p1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts["p1"][model.ReactionHug])

	// same id on a different target type is independent
	counts, err = reactions.Counts(ctx, model.TargetReply, []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestPostRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)
	replies := repository.NewReplyRepository(db)
	reactions := repository.NewReactionRepository(db)
	feed := repository.NewFeedRepository(db)

	p := &model.Post{RoomSlug: model.RoomLounge, AuthorID: author.ID, Body: "bye"}
	require.NoError(t, posts.CreateWithOutbox(ctx, p))
	r := &model.Reply{PostID: p.ID, AuthorID: author.ID, Body: "reply"}
	require.NoError(t, replies.Create(ctx, r))
	_, err := reactions.Toggle(ctx, model.TargetPost, p.ID, "u2", model.ReactionHeart)
	require.NoError(t, err)
	_, err = reactions.Toggle(ctx, model.TargetReply, r.ID, "u2", model.ReactionHeart)
	require.NoError(t, err)
	require.NoError(t, feed.InsertBatch(ctx, []model.FeedItem{{ID: "f1", UserID: "u2", PostID: p.ID, Score: 1}}))

	require.NoError(t, posts.Delete(ctx, p.ID))

	for _, m := range []interface{}{&model.Post{}, &model.Reply{}, &model.Reaction{}, &model.FeedItem{}, &model.Outbox{}} {
		var cnt int64
		require.NoError(t, db.Model(m).Count(&cnt).Error)
		assert.Zero(t, cnt, "%T", m)
	}
}

func TestSubscriptionRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	subs := repository.NewSubscriptionRepository(db)

	require.NoError(t, subs.Create(ctx, "u1", model.RoomMusic))
	// 幂等
	require.NoError(t, subs.Create(ctx, "u1", model.RoomMusic))
	require.NoError(t, subs.Create(ctx, "u2", model.RoomMusic))
	require.NoError(t, subs.Create(ctx, "u1", model.RoomLounge))

	n, err := subs.CountSubscribers(ctx, model.RoomMusic)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	ok, err := subs.Exists(ctx, "u2", model.RoomMusic)
	require.NoError(t, err)
	assert.True(t, ok)

	mine, err := subs.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, subs.Delete(ctx, "u2", model.RoomMusic))
	page, err := subs.ListSubscribers(ctx, model.RoomMusic, 0, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "u1", page[0].UserID)
}

func TestJournalRepository_OwnerScoped(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	journal := repository.NewJournalRepository(db)

	e := &model.JournalEntry{ID: "j1", UserID: "u1", Body: "dear diary", Mood: model.MoodLow}
	require.NoError(t, journal.Create(ctx, e))
	require.NoError(t, journal.Create(ctx, &model.JournalEntry{ID: "j2", UserID: "u1", Body: "better", Mood: model.MoodGood}))

	_, err := journal.Get(ctx, "u2", "j1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, journal.Delete(ctx, "u2", "j1"), gorm.ErrRecordNotFound)

	list, total, err := journal.List(ctx, "u1", model.MoodLow, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "j1", list[0].ID)

	require.NoError(t, journal.Delete(ctx, "u1", "j1"))
	_, err = journal.Get(ctx, "u1", "j1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOutboxRepository_ClaimAndDone(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)
	outbox := repository.NewOutboxRepository(db)

	for i := 0; i < 3; i++ {
		require.NoError(t, posts.CreateWithOutbox(ctx, &model.Post{RoomSlug: model.RoomLounge, AuthorID: author.ID, Body: "x"}))
	}

	batch, err := outbox.Claim(ctx, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, model.OutboxProcessing, batch[0].Status)

	rest, err := outbox.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)

	empty, err := outbox.Claim(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, outbox.MarkDone(ctx, batch[0].ID, 7))
	done, err := outbox.CountByStatus(ctx, model.OutboxDone)
	require.NoError(t, err)
	assert.EqualValues(t, 1, done)
}

func TestNotificationRepository(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	notes := repository.NewNotificationRepository(db)

	for i := 0; i < 3; i++ {
		require.NoError(t, notes.Create(ctx, &model.Notification{
			ID: fmt.Sprintf("n%d", i), UserID: "u1", ActorID: "u2", Kind: model.NotifyReply, PostID: "p1",
		}))
	}

	assert.ErrorIs(t, notes.MarkRead(ctx, "u2", "n0"), gorm.ErrRecordNotFound)
	require.NoError(t, notes.MarkRead(ctx, "u1", "n0"))

	unread, err := notes.CountUnread(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	n, err := notes.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	list, total, err := notes.List(ctx, "u1", true, 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, list)
}

func TestUserRepository_DeleteRemovesContent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	replies := repository.NewReplyRepository(db)

	daisy := seedUser(t, db, "daisy")
	rose := seedUser(t, db, "rose")

	own := &model.Post{RoomSlug: model.RoomLounge, AuthorID: daisy.ID, Body: "mine"}
	other := &model.Post{RoomSlug: model.RoomLounge, AuthorID: rose.ID, Body: "hers"}
	require.NoError(t, posts.CreateWithOutbox(ctx, own))
	require.NoError(t, posts.CreateWithOutbox(ctx, other))
	require.NoError(t, replies.Create(ctx, &model.Reply{PostID: other.ID, AuthorID: daisy.ID, Body: "hi rose"}))
	require.NoError(t, db.Create(&model.JournalEntry{ID: "j1", UserID: daisy.ID, Body: "private"}).Error)

	require.NoError(t, users.Delete(ctx, daisy.ID))

	_, err := users.GetByID(ctx, daisy.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	_, err = posts.GetByID(ctx, own.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	kept, err := posts.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Zero(t, kept.ReplyCount)

	var journalCount int64
	require.NoError(t, db.Model(&model.JournalEntry{}).Count(&journalCount).Error)
	assert.Zero(t, journalCount)

	found, err := users.GetByLogin(ctx, "rose@example.com")
	require.NoError(t, err)
	assert.Equal(t, rose.ID, found.ID)
}

func BenchmarkSubscribeAndListSubscribers(b *testing.B) {
	db := testutil.NewDB(b)
	subs := repository.NewSubscriptionRepository(db)
	ctx := context.Background()

	for i := 0; i < 2000; i++ {
		_ = subs.Create(ctx, fmt.Sprintf("u%04d", i), model.RoomLounge)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = subs.ListSubscribers(ctx, model.RoomLounge, 0, 500)
	}
}

func TestOutboxRepository_Release(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)
	outbox := repository.NewOutboxRepository(db)

	require.NoError(t, posts.CreateWithOutbox(ctx, &model.Post{RoomSlug: model.RoomLounge, AuthorID: author.ID, Body: "x"}))
	batch, err := outbox.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	require.NoError(t, outbox.Release(ctx, batch[0].ID))
	again, err := outbox.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, batch[0].ID, again[0].ID)
}

func TestOutboxRepository_ReclaimsExpiredLease(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := seedUser(t, db, "daisy")
	posts := repository.NewPostRepository(db)
	outbox := repository.NewOutboxRepository(db)

	require.NoError(t, posts.CreateWithOutbox(ctx, &model.Post{RoomSlug: model.RoomLounge, AuthorID: author.ID, Body: "x"}))
	batch, err := outbox.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)

	// a fresh claim still belongs to its worker
	again, err := outbox.Claim(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, again)

	// the worker died: its lease runs out
	expired := time.Now().Add(-repository.ClaimLease - time.Minute)
	require.NoError(t, db.Model(&model.Outbox{}).Where("id = ?", batch[0].ID).Update("claimed_at", expired).Error)

	again, err = outbox.Claim(ctx, 10)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, batch[0].ID, again[0].ID)
	assert.True(t, again[0].ClaimedAt.After(expired))
}
