package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/internal/search"
)

const journalSearchWindow = 1000

type JournalInput struct {
	Title  string   `json:"title" validate:"max=120"`
	Body   string   `json:"body" validate:"required,max=20000"`
	Mood   string   `json:"mood" validate:"omitempty,oneof=great good okay low rough"`
	Tags   []string `json:"tags"`
	Prompt string   `json:"prompt" validate:"max=1000"`
}

func (in *JournalInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)
	in.Mood = strings.ToLower(strings.TrimSpace(in.Mood))
	in.Prompt = strings.TrimSpace(in.Prompt)
}

// JournalUpdate is a partial edit; nil fields are left alone.
type JournalUpdate struct {
	Title  *string   `json:"title"`
	Body   *string   `json:"body"`
	Mood   *string   `json:"mood"`
	Tags   *[]string `json:"tags"`
	Prompt *string   `json:"prompt"`
}

type JournalEntryView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Mood      string    `json:"mood,omitempty"`
	Tags      []string  `json:"tags"`
	Prompt    string    `json:"prompt,omitempty"`
	WordCount int       `json:"word_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newJournalEntryView(e *model.JournalEntry) JournalEntryView {
	return JournalEntryView{
		ID:        e.ID,
		Title:     e.Title,
		Body:      e.Body,
		Mood:      e.Mood,
		Tags:      search.SplitTags(e.Tags),
		Prompt:    e.Prompt,
		WordCount: len(strings.Fields(e.Body)),
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// JournalService 私密日记；其他用户的条目一律按不存在处理
type JournalService interface {
	CreateEntry(ctx context.Context, userID string, in JournalInput) (*JournalEntryView, error)
	ListEntries(ctx context.Context, userID, query, mood string, page, pageSize int) (*PageResult[JournalEntryView], error)
	GetEntry(ctx context.Context, userID, id string) (*JournalEntryView, error)
	UpdateEntry(ctx context.Context, userID, id string, upd JournalUpdate) (*JournalEntryView, error)
	DeleteEntry(ctx context.Context, userID, id string) error
}

type journalService struct {
	repo repository.JournalRepository
}

func NewJournalService(repo repository.JournalRepository) JournalService {
	return &journalService{repo: repo}
}

func validateJournal(in *JournalInput) ([]string, error) {
	in.trim()
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	tags, err := search.NormalizeTags(in.Tags)
	if err != nil {
		return nil, invalid("%v", err)
	}
	return tags, nil
}

func (s *journalService) CreateEntry(ctx context.Context, userID string, in JournalInput) (*JournalEntryView, error) {
	tags, err := validateJournal(&in)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	e := &model.JournalEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     in.Title,
		Body:      in.Body,
		Mood:      in.Mood,
		Tags:      search.JoinTags(tags),
		Prompt:    in.Prompt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	v := newJournalEntryView(e)
	return &v, nil
}

func (s *journalService) ListEntries(ctx context.Context, userID, query, mood string, page, pageSize int) (*PageResult[JournalEntryView], error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if !model.ValidMood(mood) {
		return nil, invalid("unknown mood %q", mood)
	}
	page, pageSize, offset := normalizePage(page, pageSize)

	var (
		entries []*model.JournalEntry
		total   int64
		err     error
	)
	if terms := search.Terms(query); len(terms) == 0 {
		entries, total, err = s.repo.List(ctx, userID, mood, offset, pageSize)
		if err != nil {
			return nil, err
		}
	} else {
		recent, err := s.repo.ListRecent(ctx, userID, mood, journalSearchWindow)
		if err != nil {
			return nil, err
		}
		matched := make([]*model.JournalEntry, 0, len(recent))
		for _, e := range recent {
			if search.MatchesTerms(terms, e.Title, e.Body, e.Tags, e.Prompt) {
				matched = append(matched, e)
			}
		}
		total = int64(len(matched))
		if offset < len(matched) {
			end := offset + pageSize
			if end > len(matched) {
				end = len(matched)
			}
			entries = matched[offset:end]
		}
	}

	views := make([]JournalEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newJournalEntryView(e))
	}
	return &PageResult[JournalEntryView]{Page: page, PageSize: pageSize, Total: total, List: views}, nil
}

func (s *journalService) GetEntry(ctx context.Context, userID, id string) (*JournalEntryView, error) {
	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, ErrEntryNotFound)
	}
	v := newJournalEntryView(e)
	return &v, nil
}

func (s *journalService) UpdateEntry(ctx context.Context, userID, id string, upd JournalUpdate) (*JournalEntryView, error) {
	e, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, ErrEntryNotFound)
	}
	in := JournalInput{Title: e.Title, Body: e.Body, Mood: e.Mood, Tags: search.SplitTags(e.Tags), Prompt: e.Prompt}
	setString(&in.Title, upd.Title)
	setString(&in.Body, upd.Body)
	setString(&in.Mood, upd.Mood)
	setString(&in.Prompt, upd.Prompt)
	if upd.Tags != nil {
		in.Tags = *upd.Tags
	}
	tags, err := validateJournal(&in)
	if err != nil {
		return nil, err
	}

	e.Title = in.Title
	e.Body = in.Body
	e.Mood = in.Mood
	e.Tags = search.JoinTags(tags)
	e.Prompt = in.Prompt
	if err := s.repo.Save(ctx, e); err != nil {
		return nil, err
	}
	v := newJournalEntryView(e)
	return &v, nil
}

func (s *journalService) DeleteEntry(ctx context.Context, userID, id string) error {
	return notFound(s.repo.Delete(ctx, userID, id), ErrEntryNotFound)
}
