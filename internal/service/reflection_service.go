package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/pkg/logger"
)

const (
	maxPrompts = 3

	SourceAI      = "ai"
	SourceLibrary = "library"
)

// Completer is the chat completion call the reflection service needs.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type ReflectInput struct {
	Body string `json:"body" validate:"required,max=20000"`
	Mood string `json:"mood" validate:"omitempty,oneof=great good okay low rough"`
}

type Reflection struct {
	Mood    string   `json:"mood,omitempty"`
	Prompts []string `json:"prompts"`
	Source  string   `json:"source"`
}

type DailyPrompt struct {
	Mood   string `json:"mood,omitempty"`
	Date   string `json:"date"`
	Prompt string `json:"prompt"`
}

// ReflectionService 日记反思提示：优先 AI，失败回退到内置提示库
type ReflectionService interface {
	Reflect(ctx context.Context, userID string, in ReflectInput) (*Reflection, error)
	DailyPrompt(ctx context.Context, mood string, day time.Time) (*DailyPrompt, error)
}

type reflectionService struct {
	ai    Completer
	cache *redis.Client
	ttl   time.Duration
}

// NewReflectionService ai and cache may both be nil.
func NewReflectionService(ai Completer, cache *redis.Client, ttl time.Duration) ReflectionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &reflectionService{ai: ai, cache: cache, ttl: ttl}
}

const reflectSystemPrompt = `You help people reflect on their private journal entries.
Reply with up to three short, gentle, open-ended questions, one per line.
Do not give advice or diagnoses. Do not number the lines.`

func (s *reflectionService) Reflect(ctx context.Context, userID string, in ReflectInput) (*Reflection, error) {
	in.Body = strings.TrimSpace(in.Body)
	in.Mood = strings.ToLower(strings.TrimSpace(in.Mood))
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	key := reflectionKey(in.Mood, in.Body)
	if r, ok := s.cached(ctx, key); ok {
		return r, nil
	}

	r := &Reflection{Mood: in.Mood}
	prompts, err := s.askAI(ctx, in)
	if err != nil {
		if s.ai != nil {
			logger.Warn("ai reflection failed, using library", zap.String("user", userID), zap.Error(err))
		}
		// library answers are deterministic, only ai answers are worth caching
		r.Prompts, r.Source = libraryPrompts(in.Mood, in.Body), SourceLibrary
		return r, nil
	}
	r.Prompts, r.Source = prompts, SourceAI
	s.store(ctx, key, r)
	return r, nil
}

var errAIDisabled = errors.New("ai disabled")

func (s *reflectionService) askAI(ctx context.Context, in ReflectInput) ([]string, error) {
	if s.ai == nil {
		return nil, errAIDisabled
	}
	user := in.Body
	if in.Mood != "" {
		user = fmt.Sprintf("Mood: %s\n\n%s", in.Mood, in.Body)
	}
	answer, err := s.ai.Complete(ctx, reflectSystemPrompt, user)
	if err != nil {
		return nil, err
	}
	prompts := parsePrompts(answer)
	if len(prompts) == 0 {
		return nil, fmt.Errorf("no prompts in completion")
	}
	return prompts, nil
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// parsePrompts takes one prompt per non-empty line, stripping list markers.
func parsePrompts(answer string) []string {
	out := make([]string, 0, maxPrompts)
	for _, line := range strings.Split(answer, "\n") {
		line = strings.TrimSpace(listMarker.ReplaceAllString(strings.TrimSpace(line), ""))
		line = strings.Trim(line, `"`)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxPrompts {
			break
		}
	}
	return out
}

// libraryPrompts picks maxPrompts consecutive prompts starting at a position
// derived from the body, so the same entry always gets the same prompts.
func libraryPrompts(mood, body string) []string {
	lib := libraryFor(mood)
	h := fnv.New32a()
	_, _ = h.Write([]byte(body))
	start := int(h.Sum32() % uint32(len(lib)))
	out := make([]string, 0, maxPrompts)
	for i := 0; i < maxPrompts && i < len(lib); i++ {
		out = append(out, lib[(start+i)%len(lib)])
	}
	return out
}

func (s *reflectionService) DailyPrompt(_ context.Context, mood string, day time.Time) (*DailyPrompt, error) {
	mood = strings.ToLower(strings.TrimSpace(mood))
	if !model.ValidMood(mood) {
		return nil, invalid("unknown mood %q", mood)
	}
	date := day.Format("2006-01-02")
	lib := libraryFor(mood)
	h := fnv.New32a()
	_, _ = h.Write([]byte(mood + "|" + date))
	return &DailyPrompt{Mood: mood, Date: date, Prompt: lib[h.Sum32()%uint32(len(lib))]}, nil
}

func reflectionKey(mood, body string) string {
	sum := sha256.Sum256([]byte(body))
	return fmt.Sprintf("reflect:%s:%s", mood, hex.EncodeToString(sum[:]))
}

func (s *reflectionService) cached(ctx context.Context, key string) (*Reflection, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("reflection cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var r Reflection
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, false
	}
	return &r, true
}

func (s *reflectionService) store(ctx context.Context, key string, r *Reflection) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		logger.Warn("reflection cache set failed", zap.Error(err))
	}
}
