package auth

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/example/workspace-chat/domain/chat"
	domain "github.com/example/workspace-chat/domain/user"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when the username is already taken.
	ErrUserExists = errors.New("username is already taken")
)

// UserRepository handles user persistence using GORM.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(user *domain.User) error {
	result := r.db.Create(user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) ||
			strings.Contains(result.Error.Error(), "UNIQUE constraint failed") {
			return ErrUserExists
		}
		return result.Error
	}
	return nil
}

// FindByUsername finds a user by username.
func (r *UserRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	result := r.db.First(&user, "username = ?", username)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// UsernameExists checks if a user with the given username exists.
func (r *UserRepository) UsernameExists(username string) (bool, error) {
	var count int64
	result := r.db.Model(&domain.User{}).Where("username = ?", username).Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// FindDisplayNames resolves display names for each username that has an
// account. Usernames without an account are absent from the result.
func (r *UserRepository) FindDisplayNames(usernames []string) ([]chat.RosterEntry, error) {
	if len(usernames) == 0 {
		return nil, nil
	}

	var users []domain.User
	result := r.db.
		Select("username", "display_name").
		Where("username IN ?", usernames).
		Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	entries := make([]chat.RosterEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, chat.RosterEntry{
			Username:    u.Username,
			DisplayName: u.DisplayName,
		})
	}
	return entries, nil
}
