package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
)

func TestCreatePost_RoomRules(t *testing.T) {
	e := newTestEnv(t)
	daisy := e.seedUser(t, "daisy")

	cases := []struct {
		name    string
		room    string
		in      PostInput
		wantErr error
	}{
		{"lounge needs a body", model.RoomLounge, PostInput{Title: "hi"}, ErrInvalidInput},
		{"lounge", model.RoomLounge, PostInput{Body: "hello"}, nil},
		{"hope bank", model.RoomHopeBank, PostInput{Body: "it gets better"}, nil},
		{"book club needs the book", model.RoomBookClub, PostInput{Body: "great read"}, ErrInvalidInput},
		{"book club", model.RoomBookClub, PostInput{MediaTitle: "Piranesi", MediaCreator: "Susanna Clarke"}, nil},
		{"tv needs a kind", model.RoomTVMovies, PostInput{MediaTitle: "Bluey"}, ErrInvalidInput},
		{"tv unknown kind", model.RoomTVMovies, PostInput{MediaTitle: "Bluey", MediaKind: "radio"}, ErrInvalidInput},
		{"tv", model.RoomTVMovies, PostInput{MediaTitle: "Bluey", MediaKind: " TV "}, nil},
		{"inspo wall link only", model.RoomInspoWall, PostInput{Link: "https://example.com/sun.jpg"}, nil},
		{"inspo wall empty", model.RoomInspoWall, PostInput{Title: "x"}, ErrInvalidInput},
		{"music bad link", model.RoomMusic, PostInput{MediaTitle: "Here Comes the Sun", Link: "not a url"}, ErrInvalidInput},
		{"title too long", model.RoomLounge, PostInput{Title: strings.Repeat("a", 121), Body: "x"}, ErrInvalidInput},
		{"body too long", model.RoomDilemmas, PostInput{Body: strings.Repeat("a", 5001)}, ErrInvalidInput},
		{"too many tags", model.RoomLounge, PostInput{Body: "x", Tags: []string{"a,b,c,d,e,f,g,h,i"}}, ErrInvalidInput},
		{"unknown room", "kitchen", PostInput{Body: "x"}, ErrRoomNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.postSvc.CreatePost(context.Background(), daisy.ID, tc.room, tc.in)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreatePost_NormalisesAndReturnsView(t *testing.T) {
	e := newTestEnv(t)
	daisy := e.seedUser(t, "daisy")

	p := e.seedPost(t, daisy, model.RoomTVMovies, PostInput{
		Title:      "  Comfort watch ",
		MediaTitle: "Bluey",
		MediaKind:  "TV",
		Tags:       []string{"Cozy, #family", "cozy"},
	})
	assert.Equal(t, "Comfort watch", p.Title)
	assert.Equal(t, model.MediaKindTV, p.MediaKind)
	assert.Equal(t, []string{"cozy", "family"}, p.Tags)
	assert.True(t, p.IsMine)
	require.NotNil(t, p.Author)
	assert.Equal(t, "daisy", p.Author.Username)
	assert.Empty(t, p.Reactions.Counts)

	// media_kind only sticks in the room that uses it
	lounge := e.seedPost(t, daisy, model.RoomLounge, PostInput{Body: "x", MediaKind: "movie"})
	assert.Empty(t, lounge.MediaKind)
}

func TestListPosts_SearchAndTags(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	daisy := e.seedUser(t, "daisy")
	rose := e.seedUser(t, "rose")

	e.seedPost(t, daisy, model.RoomLounge, PostInput{Title: "Morning walk", Body: "Sun in the park", Tags: []string{"walk,outdoors"}})
	e.seedPost(t, daisy, model.RoomLounge, PostInput{Title: "Rainy day", Body: "Reading all afternoon", Tags: []string{"books"}})
	e.seedPost(t, rose, model.RoomLounge, PostInput{Body: "secret garden", Anonymous: true})
	e.seedPost(t, rose, model.RoomDilemmas, PostInput{Body: "park or beach?"})

	all, err := e.postSvc.ListPosts(ctx, ListPostsQuery{Room: model.RoomLounge})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Equal(t, 1, all.Page)
	assert.Equal(t, defaultPageSize, all.PageSize)

	cases := []struct {
		name  string
		query string
		tag   string
		want  int64
	}{
		{"all terms must match", "PARK walk", "", 1},
		{"terms across fields", "morning outdoors", "", 1},
		{"missing term", "park beach", "", 0},
		{"tag", "", "#Books", 1},
		{"tag and query", "rainy", "walk", 0},
		{"author name", "daisy", "", 2},
		{"anonymous author stays hidden", "rose", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := e.postSvc.ListPosts(ctx, ListPostsQuery{Room: model.RoomLounge, Query: tc.query, Tag: tc.tag})
			require.NoError(t, err)
			assert.Equal(t, tc.want, res.Total)
			assert.Len(t, res.List, int(tc.want))
		})
	}

	_, err = e.postSvc.ListPosts(ctx, ListPostsQuery{Room: "attic"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestListPosts_PagingAndAnonymity(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	daisy := e.seedUser(t, "daisy")
	rose := e.seedUser(t, "rose")

	for i := 0; i < 3; i++ {
		e.seedPost(t, daisy, model.RoomHopeBank, PostInput{Body: "hope"})
	}
	anon := e.seedPost(t, rose, model.RoomHopeBank, PostInput{Body: "quiet hope", Anonymous: true})

	page, err := e.postSvc.ListPosts(ctx, ListPostsQuery{Room: model.RoomHopeBank, Page: 2, PageSize: 3, ViewerID: rose.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	assert.Len(t, page.List, 1)

	first, err := e.postSvc.ListPosts(ctx, ListPostsQuery{Room: model.RoomHopeBank, PageSize: 500, ViewerID: rose.ID})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, first.PageSize)
	require.NotEmpty(t, first.List)
	assert.Equal(t, anon.ID, first.List[0].ID, "newest first")
	assert.Nil(t, first.List[0].Author)
	assert.True(t, first.List[0].IsMine)

	asDaisy, err := e.postSvc.GetPost(ctx, anon.ID, daisy.ID)
	require.NoError(t, err)
	assert.Nil(t, asDaisy.Author)
	assert.False(t, asDaisy.IsMine)
}

func TestUpdateAndDeletePost_OwnerOnly(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	daisy := e.seedUser(t, "daisy")
	rose := e.seedUser(t, "rose")
	p := e.seedPost(t, daisy, model.RoomBookClub, PostInput{MediaTitle: "Piranesi", Body: "loved it"})

	body := "changed"
	_, err := e.postSvc.UpdatePost(ctx, p.ID, rose.ID, PostUpdate{Body: &body})
	assert.ErrorIs(t, err, ErrForbidden)

	empty := ""
	_, err = e.postSvc.UpdatePost(ctx, p.ID, daisy.ID, PostUpdate{MediaTitle: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	tags := []string{"fantasy"}
	updated, err := e.postSvc.UpdatePost(ctx, p.ID, daisy.ID, PostUpdate{Body: &body, Tags: &tags})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Body)
	assert.Equal(t, "Piranesi", updated.MediaTitle)
	assert.Equal(t, []string{"fantasy"}, updated.Tags)

	_, err = e.replySvc.CreateReply(ctx, rose.ID, p.ID, ReplyInput{Body: "me too"})
	require.NoError(t, err)

	assert.ErrorIs(t, e.postSvc.DeletePost(ctx, p.ID, rose.ID), ErrForbidden)
	require.NoError(t, e.postSvc.DeletePost(ctx, p.ID, daisy.ID))
	_, err = e.postSvc.GetPost(ctx, p.ID, daisy.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	var replies int64
	require.NoError(t, e.db.Model(&model.Reply{}).Where("post_id = ?", p.ID).Count(&replies).Error)
	assert.Zero(t, replies)
	assert.ErrorIs(t, e.postSvc.DeletePost(ctx, p.ID, daisy.ID), ErrPostNotFound)
}

func TestListPosts_FirstPageCache(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRoomPageCache(client, time.Minute)
	svc := NewPostService(e.posts, e.reactions, cache)
	daisy := e.seedUser(t, "daisy")

	_, err := svc.CreatePost(ctx, daisy.ID, model.RoomLounge, PostInput{Body: "one"})
	require.NoError(t, err)

	res, err := svc.ListPosts(ctx, ListPostsQuery{Room: model.RoomLounge})
	require.NoError(t, err)
	assert.Len(t, res.List, 1)
	assert.True(t, mr.Exists(roomPageKey(model.RoomLounge)))

	res, err = svc.ListPosts(ctx, ListPostsQuery{Room: model.RoomLounge})
	require.NoError(t, err)
	assert.Len(t, res.List, 1)
	assert.Equal(t, CacheCounters{Hits: 1, Misses: 1}, cache.Counters())

	// writes invalidate the room
	_, err = svc.CreatePost(ctx, daisy.ID, model.RoomLounge, PostInput{Body: "two"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(roomPageKey(model.RoomLounge)))

	res, err = svc.ListPosts(ctx, ListPostsQuery{Room: model.RoomLounge})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	assert.Equal(t, "two", res.List[0].Body)

	// a broken cache degrades to the database
	mr.Close()
	res, err = svc.ListPosts(ctx, ListPostsQuery{Room: model.RoomLounge})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
}

// replyOnRead inserts a reply right after the first post read, racing an edit.
type replyOnRead struct {
	repository.PostRepository
	replies repository.ReplyRepository
	author  string
	fired   bool
}

func (r *replyOnRead) GetByID(ctx context.Context, id string) (*model.Post, error) {
	p, err := r.PostRepository.GetByID(ctx, id)
	if err == nil && !r.fired {
		r.fired = true
		if err := r.replies.Create(ctx, &model.Reply{PostID: id, AuthorID: r.author, Body: "me too"}); err != nil {
			return nil, err
		}
	}
	return p, err
}

func TestUpdatePost_KeepsConcurrentReplyCount(t *testing.T) {
	e := newTestEnv(t)
	daisy := e.seedUser(t, "daisy")
	rose := e.seedUser(t, "rose")
	p := e.seedPost(t, daisy, model.RoomLounge, PostInput{Body: "first"})

	racy := &replyOnRead{PostRepository: e.posts, replies: e.replies, author: rose.ID}
	svc := NewPostService(racy, e.reactions, NewRoomPageCache(nil, 0))

	body := "edited"
	got, err := svc.UpdatePost(context.Background(), p.ID, daisy.ID, PostUpdate{Body: &body})
	require.NoError(t, err)
	require.True(t, racy.fired)
	assert.Equal(t, "edited", got.Body)

	stored, err := e.posts.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stored.ReplyCount)
	assert.Equal(t, "edited", stored.Body)
}
