package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrUserExists         = errors.New("username or email already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnavailable        = errors.New("service unavailable")

	ErrRoomNotFound         = fmt.Errorf("room %w", ErrNotFound)
	ErrPostNotFound         = fmt.Errorf("post %w", ErrNotFound)
	ErrReplyNotFound        = fmt.Errorf("reply %w", ErrNotFound)
	ErrEntryNotFound        = fmt.Errorf("journal entry %w", ErrNotFound)
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrReactionNotAllowed = fmt.Errorf("%w: reaction not allowed in this room", ErrInvalidInput)
	ErrAvatarTooLarge     = fmt.Errorf("%w: avatar must be at most 5 MiB", ErrInvalidInput)
	ErrAvatarType         = fmt.Errorf("%w: avatar must be a jpg, png, gif or webp image", ErrInvalidInput)
	ErrStorageDisabled    = fmt.Errorf("%w: avatar storage is not configured", ErrUnavailable)
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
