package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chirp/db"
	"chirp/models"

	"gorm.io/gorm"
)

type UserService struct{}

func NewUserService() *UserService {
	return &UserService{}
}

// IdentityUser - поля пользователя из события провайдера аутентификации
type IdentityUser struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

// DisplayName выбирает отображаемое имя: username, иначе имя и фамилия
func (u IdentityUser) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	first := u.FirstName
	if first == "" {
		first = "unknown"
	}
	return strings.TrimSpace(first + " " + u.LastName)
}

// GetByUsername возвращает публичный профиль по имени
func (us *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := db.GetReadOnlyDB(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// CreateFromIdentityEvent заводит пользователя по событию user.created
func (us *UserService) CreateFromIdentityEvent(ctx context.Context, data IdentityUser) (*models.User, error) {
	if data.ID == "" {
		return nil, fmt.Errorf("%w: user id is empty", ErrValidation)
	}

	// Проверяем, не приходило ли это событие раньше
	var alreadyExists int64
	err := db.GetWriteDB(ctx).Model(&models.User{}).Where("id = ?", data.ID).Count(&alreadyExists).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if alreadyExists > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, data.ID)
	}

	now := time.Now()
	user := &models.User{
		ID:              data.ID,
		Username:        data.DisplayName(),
		ProfileImageURL: data.ProfileImageURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = db.GetWriteDB(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Гонка двух одинаковых событий
		return nil, fmt.Errorf("%w: %s", ErrUserExists, data.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}
