package service

import (
	"time"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/search"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// normalizePage clamps page/pageSize and returns the row offset.
func normalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// PageResult 分页结果
type PageResult[T any] struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
	List     []T   `json:"list"`
}

// AuthorView is the public face of a user attached to posts and replies.
type AuthorView struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Pronouns    string `json:"pronouns,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func newAuthorView(u *model.User) *AuthorView {
	if u == nil {
		return nil
	}
	return &AuthorView{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.Name(),
		Pronouns:    u.Pronouns,
		AvatarURL:   u.AvatarURL,
	}
}

// ReactionSummary counts per kind plus the kinds the viewer gave.
type ReactionSummary struct {
	Counts map[string]int64 `json:"counts"`
	Mine   []string         `json:"mine"`
}

func newReactionSummary(counts map[string]int64, mine []string) ReactionSummary {
	if counts == nil {
		counts = map[string]int64{}
	}
	if mine == nil {
		mine = []string{}
	}
	return ReactionSummary{Counts: counts, Mine: mine}
}

type PostView struct {
	ID           string          `json:"id"`
	Room         string          `json:"room"`
	Title        string          `json:"title"`
	Body         string          `json:"body"`
	Tags         []string        `json:"tags"`
	Anonymous    bool            `json:"anonymous"`
	MediaTitle   string          `json:"media_title,omitempty"`
	MediaCreator string          `json:"media_creator,omitempty"`
	MediaKind    string          `json:"media_kind,omitempty"`
	Link         string          `json:"link,omitempty"`
	ReplyCount   int64           `json:"reply_count"`
	Author       *AuthorView     `json:"author"`
	IsMine       bool            `json:"is_mine"`
	Reactions    ReactionSummary `json:"reactions"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// newPostView hides the author of anonymous posts; the author still sees is_mine.
func newPostView(p *model.Post, viewerID string, reactions ReactionSummary) PostView {
	v := PostView{
		ID:           p.ID,
		Room:         p.RoomSlug,
		Title:        p.Title,
		Body:         p.Body,
		Tags:         search.SplitTags(p.Tags),
		Anonymous:    p.Anonymous,
		MediaTitle:   p.MediaTitle,
		MediaCreator: p.MediaCreator,
		MediaKind:    p.MediaKind,
		Link:         p.Link,
		ReplyCount:   p.ReplyCount,
		IsMine:       viewerID != "" && viewerID == p.AuthorID,
		Reactions:    reactions,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if !p.Anonymous {
		v.Author = newAuthorView(p.Author)
	}
	return v
}

type ReplyView struct {
	ID        string          `json:"id"`
	PostID    string          `json:"post_id"`
	Body      string          `json:"body"`
	Anonymous bool            `json:"anonymous"`
	Author    *AuthorView     `json:"author"`
	IsMine    bool            `json:"is_mine"`
	Reactions ReactionSummary `json:"reactions"`
	CreatedAt time.Time       `json:"created_at"`
}

func newReplyView(r *model.Reply, viewerID string, reactions ReactionSummary) ReplyView {
	v := ReplyView{
		ID:        r.ID,
		PostID:    r.PostID,
		Body:      r.Body,
		Anonymous: r.Anonymous,
		IsMine:    viewerID != "" && viewerID == r.AuthorID,
		Reactions: reactions,
		CreatedAt: r.CreatedAt,
	}
	if !r.Anonymous {
		v.Author = newAuthorView(r.Author)
	}
	return v
}
