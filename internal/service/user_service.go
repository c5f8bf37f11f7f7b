package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/sunflower-post/backend/internal/model"
	"github.com/sunflower-post/backend/internal/repository"
	"github.com/sunflower-post/backend/pkg/logger"
	"github.com/sunflower-post/backend/pkg/storage"
)

const MaxAvatarSize = 5 << 20

var bcryptCost = bcrypt.DefaultCost

var avatarTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

type SignupInput struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"max=64"`
}

type LoginInput struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type PasswordChange struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=72"`
}

// ProfileUpdate is a partial edit of the caller's profile.
type ProfileUpdate struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=64"`
	Pronouns    *string `json:"pronouns" validate:"omitempty,max=32"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,max=512"`
}

// MeView 当前用户（含邮箱）
type MeView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Pronouns    string    `json:"pronouns"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func newMeView(u *model.User) *MeView {
	return &MeView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Pronouns:    u.Pronouns,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		CreatedAt:   u.CreatedAt,
	}
}

// ProfileView 公开资料
type ProfileView struct {
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Pronouns    string    `json:"pronouns"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatar_url"`
	JoinedAt    time.Time `json:"joined_at"`
	PostCount   int64     `json:"post_count"`
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *MeView   `json:"user"`
}

// UserService 注册登录与个人资料
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	GetMe(ctx context.Context, userID string) (*MeView, error)
	UpdateMe(ctx context.Context, userID string, upd ProfileUpdate) (*MeView, error)
	ChangePassword(ctx context.Context, userID string, in PasswordChange) error
	UploadAvatar(ctx context.Context, userID, filename string, size int64, body io.Reader) (*MeView, error)
	DeleteMe(ctx context.Context, userID string) error
	GetProfile(ctx context.Context, username string) (*ProfileView, error)
}

type userService struct {
	userRepo repository.UserRepository
	postRepo repository.PostRepository
	tokens   *TokenManager
	store    storage.ObjectStore
	cache    *RoomPageCache
}

// NewUserService store may be nil when avatar uploads are not configured.
func NewUserService(userRepo repository.UserRepository, postRepo repository.PostRepository,
	tokens *TokenManager, store storage.ObjectStore, cache *RoomPageCache) UserService {
	return &userService{userRepo: userRepo, postRepo: postRepo, tokens: tokens, store: store, cache: cache}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		DisplayName:  in.DisplayName,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user signed up", zap.String("user", u.ID))
	return s.authResult(u)
}

func (s *userService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Login = strings.ToLower(strings.TrimSpace(in.Login))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByLogin(ctx, in.Login)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.authResult(u)
}

func (s *userService) authResult(u *model.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: newMeView(u)}, nil
}

func (s *userService) load(ctx context.Context, userID string) (*model.User, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return u, nil
}

func (s *userService) GetMe(ctx context.Context, userID string) (*MeView, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newMeView(u), nil
}

func (s *userService) UpdateMe(ctx context.Context, userID string, upd ProfileUpdate) (*MeView, error) {
	for _, f := range []*string{upd.DisplayName, upd.Pronouns, upd.Bio, upd.AvatarURL} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := validateStruct(upd); err != nil {
		return nil, err
	}
	if upd.AvatarURL != nil && *upd.AvatarURL != "" && !strings.HasPrefix(*upd.AvatarURL, "https://") {
		return nil, invalid("avatar_url must be an https URL")
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	setString(&u.DisplayName, upd.DisplayName)
	setString(&u.Pronouns, upd.Pronouns)
	setString(&u.Bio, upd.Bio)
	setString(&u.AvatarURL, upd.AvatarURL)
	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	return newMeView(u), nil
}

func (s *userService) ChangePassword(ctx context.Context, userID string, in PasswordChange) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.OldPassword)) != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.userRepo.UpdatePassword(ctx, u.ID, string(hash))
}

func (s *userService) UploadAvatar(ctx context.Context, userID, filename string, size int64, body io.Reader) (*MeView, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	if size > MaxAvatarSize {
		return nil, ErrAvatarTooLarge
	}
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := avatarTypes[ext]
	if !ok {
		return nil, ErrAvatarType
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s%s", u.ID, uuid.New().String(), ext)
	url, err := s.store.Put(ctx, key, contentType, io.LimitReader(body, MaxAvatarSize))
	if err != nil {
		return nil, err
	}
	old := u.AvatarURL
	u.AvatarURL = url
	if err := s.userRepo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}
	s.removeAvatar(ctx, old)
	return newMeView(u), nil
}

// removeAvatar deletes an uploaded avatar object; foreign URLs are left alone.
func (s *userService) removeAvatar(ctx context.Context, url string) {
	if s.store == nil || url == "" {
		return
	}
	key := s.store.KeyFromURL(url)
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, key); err != nil {
		logger.Warn("delete avatar failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *userService) DeleteMe(ctx context.Context, userID string) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, u.ID); err != nil {
		return err
	}
	s.removeAvatar(ctx, u.AvatarURL)
	for _, r := range model.Rooms() {
		s.cache.Invalidate(ctx, r.Slug)
	}
	logger.Info("user deleted", zap.String("user", u.ID))
	return nil
}

func (s *userService) GetProfile(ctx context.Context, username string) (*ProfileView, error) {
	u, err := s.userRepo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	count, err := s.postRepo.CountPublicByAuthor(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{
		Username:    u.Username,
		DisplayName: u.Name(),
		Pronouns:    u.Pronouns,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		JoinedAt:    u.CreatedAt,
		PostCount:   count,
	}, nil
}
