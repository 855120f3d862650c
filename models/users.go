package models

import (
	"time"
)

// User - пользователь, заведенный внешним провайдером аутентификации.
// ID принадлежит провайдеру и приходит через webhook, сами мы его не генерируем.
type User struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Username        string    `gorm:"size:255;index" json:"username"`
	ProfileImageURL string    `gorm:"size:1024" json:"profile_image_url"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

type Migration struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:60;uniqueIndex" json:"name"`
	AppliedAt time.Time `gorm:"autoCreateTime" json:"applied_at"`
}
