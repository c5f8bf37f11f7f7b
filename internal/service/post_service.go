package service

import (
	"context"
	"strings"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/search"
)

// searchWindow bounds how many recent posts of a room a text or tag query scans.
const searchWindow = 500

// ListPostsQuery 房间帖子列表参数
type ListPostsQuery struct {
	Room     string
	Query    string
	Tag      string
	ViewerID string
	Page     int
	PageSize int
}

// PostUpdate is a partial edit; nil fields are left alone.
type PostUpdate struct {
	Title        *string   `json:"title"`
	Body         *string   `json:"body"`
	Tags         *[]string `json:"tags"`
	Anonymous    *bool     `json:"anonymous"`
	MediaTitle   *string   `json:"media_title"`
	MediaCreator *string   `json:"media_creator"`
	MediaKind    *string   `json:"media_kind"`
	Link         *string   `json:"link"`
}

type PostService interface {
	CreatePost(ctx context.Context, authorID, roomSlug string, in PostInput) (*PostView, error)
	ListPosts(ctx context.Context, q ListPostsQuery) (*PageResult[PostView], error)
	GetPost(ctx context.Context, id, viewerID string) (*PostView, error)
	UpdatePost(ctx context.Context, id, editorID string, upd PostUpdate) (*PostView, error)
	DeletePost(ctx context.Context, id, editorID string) error
}

type postService struct {
	postRepo  repository.PostRepository
	reactions ReactionService
	cache     *RoomPageCache
}

func NewPostService(postRepo repository.PostRepository, reactions ReactionService, cache *RoomPageCache) PostService {
	return &postService{postRepo: postRepo, reactions: reactions, cache: cache}
}

func (s *postService) CreatePost(ctx context.Context, authorID, roomSlug string, in PostInput) (*PostView, error) {
	room, err := findRoom(roomSlug)
	if err != nil {
		return nil, err
	}
	tags, err := validatePost(room, &in)
	if err != nil {
		return nil, err
	}
	p := &model.Post{
		RoomSlug:     room.Slug,
		AuthorID:     authorID,
		Title:        in.Title,
		Body:         in.Body,
		Tags:         search.JoinTags(tags),
		Anonymous:    in.Anonymous,
		MediaTitle:   in.MediaTitle,
		MediaCreator: in.MediaCreator,
		MediaKind:    in.MediaKind,
		Link:         in.Link,
	}
	if err := s.postRepo.CreateWithOutbox(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, room.Slug)
	return s.GetPost(ctx, p.ID, authorID)
}

func (s *postService) ListPosts(ctx context.Context, q ListPostsQuery) (*PageResult[PostView], error) {
	room, err := findRoom(q.Room)
	if err != nil {
		return nil, err
	}
	page, pageSize, offset := normalizePage(q.Page, q.PageSize)

	var (
		posts []*model.Post
		total int64
	)
	if strings.TrimSpace(q.Query) == "" && strings.TrimSpace(q.Tag) == "" {
		posts, total, err = s.listPage(ctx, room.Slug, page, pageSize, offset)
	} else {
		posts, total, err = s.searchRoom(ctx, room.Slug, q.Query, q.Tag, offset, pageSize)
	}
	if err != nil {
		return nil, err
	}

	views, err := buildPostViews(ctx, s.reactions, posts, q.ViewerID)
	if err != nil {
		return nil, err
	}
	return &PageResult[PostView]{Page: page, PageSize: pageSize, Total: total, List: views}, nil
}

// listPage serves the room's first page from the cache when it can.
func (s *postService) listPage(ctx context.Context, room string, page, pageSize, offset int) ([]*model.Post, int64, error) {
	if page == 1 {
		if ids, total, ok := s.cache.Get(ctx, room, pageSize); ok {
			posts, err := s.postRepo.ListByIDs(ctx, ids)
			if err != nil {
				return nil, 0, err
			}
			return orderByIDs(posts, ids), total, nil
		}
	}
	posts, total, err := s.postRepo.ListByRoom(ctx, room, offset, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if page == 1 {
		ids := make([]string, len(posts))
		for i, p := range posts {
			ids[i] = p.ID
		}
		s.cache.Put(ctx, room, pageSize, ids, total)
	}
	return posts, total, nil
}

func (s *postService) searchRoom(ctx context.Context, room, query, tag string, offset, limit int) ([]*model.Post, int64, error) {
	recent, err := s.postRepo.ListRecentByRoom(ctx, room, searchWindow)
	if err != nil {
		return nil, 0, err
	}
	terms := search.Terms(query)
	matched := make([]*model.Post, 0, len(recent))
	for _, p := range recent {
		if !search.HasTag(p.Tags, tag) {
			continue
		}
		if !search.MatchesTerms(terms, postSearchFields(p)...) {
			continue
		}
		matched = append(matched, p)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []*model.Post{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func postSearchFields(p *model.Post) []string {
	fields := []string{p.Title, p.Body, p.Tags, p.MediaTitle, p.MediaCreator}
	if !p.Anonymous && p.Author != nil {
		fields = append(fields, p.Author.Username, p.Author.DisplayName)
	}
	return fields
}

func (s *postService) GetPost(ctx context.Context, id, viewerID string) (*PostView, error) {
	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	views, err := buildPostViews(ctx, s.reactions, []*model.Post{p}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *postService) UpdatePost(ctx context.Context, id, editorID string, upd PostUpdate) (*PostView, error) {
	p, err := s.owned(ctx, id, editorID)
	if err != nil {
		return nil, err
	}
	room, err := findRoom(p.RoomSlug)
	if err != nil {
		return nil, err
	}

	in := PostInput{
		Title:        p.Title,
		Body:         p.Body,
		Tags:         search.SplitTags(p.Tags),
		Anonymous:    p.Anonymous,
		MediaTitle:   p.MediaTitle,
		MediaCreator: p.MediaCreator,
		MediaKind:    p.MediaKind,
		Link:         p.Link,
	}
	setString(&in.Title, upd.Title)
	setString(&in.Body, upd.Body)
	setString(&in.MediaTitle, upd.MediaTitle)
	setString(&in.MediaCreator, upd.MediaCreator)
	setString(&in.MediaKind, upd.MediaKind)
	setString(&in.Link, upd.Link)
	if upd.Tags != nil {
		in.Tags = *upd.Tags
	}
	if upd.Anonymous != nil {
		in.Anonymous = *upd.Anonymous
	}

	tags, err := validatePost(room, &in)
	if err != nil {
		return nil, err
	}
	p.Title = in.Title
	p.Body = in.Body
	p.Tags = search.JoinTags(tags)
	p.Anonymous = in.Anonymous
	p.MediaTitle = in.MediaTitle
	p.MediaCreator = in.MediaCreator
	p.MediaKind = in.MediaKind
	p.Link = in.Link
	if err := s.postRepo.UpdateContent(ctx, p); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, p.RoomSlug)
	return s.GetPost(ctx, p.ID, editorID)
}

func (s *postService) DeletePost(ctx context.Context, id, editorID string) error {
	p, err := s.owned(ctx, id, editorID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, p.ID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, p.RoomSlug)
	return nil
}

func (s *postService) owned(ctx context.Context, id, editorID string) (*model.Post, error) {
	p, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound)
	}
	if p.AuthorID != editorID {
		return nil, ErrForbidden
	}
	return p, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// orderByIDs returns posts in the order of ids, skipping ids that no longer exist.
func orderByIDs(posts []*model.Post, ids []string) []*model.Post {
	byID := make(map[string]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	out := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out
}

// buildPostViews attaches reaction summaries in one batch.
func buildPostViews(ctx context.Context, reactions ReactionService, posts []*model.Post, viewerID string) ([]PostView, error) {
	out := make([]PostView, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	sums, err := reactions.Summaries(ctx, model.TargetPost, ids, viewerID)
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		out = append(out, newPostView(p, viewerID, sums[p.ID]))
	}
	return out, nil
}
