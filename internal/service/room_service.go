package service

import (
	"context"
	"strings"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/search"
)

// RoomView is a catalog room plus the viewer's subscription state.
type RoomView struct {
	model.Room
	Subscribers int64 `json:"subscribers"`
	Subscribed  bool  `json:"subscribed"`
}

// RoomService 房间目录
type RoomService interface {
	ListRooms(ctx context.Context, viewerID string) ([]RoomView, error)
	GetRoom(ctx context.Context, slug, viewerID string) (*RoomView, error)
}

type roomService struct {
	subs SubscriptionService
}

func NewRoomService(subs SubscriptionService) RoomService {
	return &roomService{subs: subs}
}

func (s *roomService) ListRooms(ctx context.Context, viewerID string) ([]RoomView, error) {
	rooms := model.Rooms()
	out := make([]RoomView, 0, len(rooms))
	for _, r := range rooms {
		v, err := s.view(ctx, r, viewerID)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *roomService) GetRoom(ctx context.Context, slug, viewerID string) (*RoomView, error) {
	r, err := findRoom(slug)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, r, viewerID)
}

func (s *roomService) view(ctx context.Context, r model.Room, viewerID string) (*RoomView, error) {
	v := &RoomView{Room: r}
	if s.subs == nil {
		return v, nil
	}
	n, err := s.subs.CountSubscribers(ctx, r.Slug)
	if err != nil {
		return nil, err
	}
	v.Subscribers = n
	if viewerID != "" {
		if v.Subscribed, err = s.subs.IsSubscribed(ctx, viewerID, r.Slug); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func findRoom(slug string) (model.Room, error) {
	r, ok := model.FindRoom(slug)
	if !ok {
		return model.Room{}, ErrRoomNotFound
	}
	return r, nil
}

// PostInput 发帖/编辑后的完整内容
type PostInput struct {
	Title        string   `json:"title" validate:"max=120"`
	Body         string   `json:"body" validate:"max=5000"`
	Tags         []string `json:"tags"`
	Anonymous    bool     `json:"anonymous"`
	MediaTitle   string   `json:"media_title" validate:"max=200"`
	MediaCreator string   `json:"media_creator" validate:"max=200"`
	MediaKind    string   `json:"media_kind" validate:"omitempty,oneof=tv movie"`
	Link         string   `json:"link" validate:"omitempty,url,max=512"`
}

func (in *PostInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.MediaTitle = strings.TrimSpace(in.MediaTitle)
	in.MediaCreator = strings.TrimSpace(in.MediaCreator)
	in.MediaKind = strings.ToLower(strings.TrimSpace(in.MediaKind))
	in.Link = strings.TrimSpace(in.Link)
}

// validatePost applies the field limits and the room's own rules, and returns
// the normalised tags.
func validatePost(room model.Room, in *PostInput) ([]string, error) {
	in.trim()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	switch {
	case room.BodyOrLink:
		if in.Body == "" && in.Link == "" {
			return nil, invalid("%s posts need a body or a link", room.Name)
		}
	case in.Body == "" && !room.RequiresMedia:
		return nil, invalid("body is required")
	}
	if room.RequiresMedia && in.MediaTitle == "" {
		return nil, invalid("%s is required in %s", strings.ToLower(room.MediaTitleLabel), room.Name)
	}
	if room.RequiresMediaKind && in.MediaKind == "" {
		return nil, invalid("media_kind must be tv or movie")
	}
	if !room.RequiresMediaKind {
		in.MediaKind = ""
	}
	tags, err := search.NormalizeTags(in.Tags)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return tags, nil
}
